package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/edgard/soulbot/internal/logger"
	"github.com/edgard/soulbot/internal/soul"
)

const (
	restPathPrefix = "/rest/v1"
	restSchema     = "public"
	maxErrorBody   = 4 << 10
)

// RESTError is a non-2xx answer from the REST endpoint.
type RESTError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RESTError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// restTime accepts the timestamp shapes PostgREST emits for timestamptz and
// timestamp columns.
type restTime time.Time

var restTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func (t *restTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = restTime{}
		return nil
	}
	for _, layout := range restTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = restTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

type restStateRow struct {
	UserID           string            `json:"user_id"`
	BondLevel        float64           `json:"bond_level"`
	EmotionalState   string            `json:"emotional_state"`
	FlirtStyle       string            `json:"flirt_style"`
	Nickname         string            `json:"nickname"`
	IntimacyMode     bool              `json:"slut_mode_active"`
	InteractionCount int               `json:"interaction_count"`
	Preferences      map[string]string `json:"preferences"`
	CreatedAt        restTime          `json:"created_at"`
	LastInteraction  restTime          `json:"last_interaction"`
}

func (r restStateRow) toState() *soul.State {
	return &soul.State{
		UserID:           r.UserID,
		BondLevel:        r.BondLevel,
		EmotionalState:   soul.EmotionalState(r.EmotionalState),
		FlirtStyle:       r.FlirtStyle,
		Nickname:         r.Nickname,
		IntimacyMode:     r.IntimacyMode,
		InteractionCount: r.InteractionCount,
		Preferences:      r.Preferences,
		CreatedAt:        time.Time(r.CreatedAt),
		LastInteraction:  time.Time(r.LastInteraction),
	}
}

type restInteractionRow struct {
	UserID      string   `json:"user_id"`
	UserMessage string   `json:"user_message"`
	AIResponse  string   `json:"ai_response"`
	CreatedAt   restTime `json:"created_at"`
}

// stateUpdate is the PATCH body; the key and created_at are never rewritten.
type stateUpdate struct {
	BondLevel        float64           `json:"bond_level"`
	EmotionalState   string            `json:"emotional_state"`
	FlirtStyle       string            `json:"flirt_style"`
	Nickname         string            `json:"nickname"`
	IntimacyMode     bool              `json:"slut_mode_active"`
	InteractionCount int               `json:"interaction_count"`
	Preferences      map[string]string `json:"preferences"`
	LastInteraction  time.Time         `json:"last_interaction"`
}

// restStore implements Store against a PostgREST (Supabase) endpoint.
type restStore struct {
	baseURL   string
	headers   map[string]string
	transport http.RoundTripper
	timeout   time.Duration
	logger    *slog.Logger
}

// NewRESTStore creates a Store that talks to the PostgREST API under baseURL.
// baseURL may be the project URL or already include /rest/v1. The transport
// and timeout of client are used for every call.
func NewRESTStore(baseURL, apiKey string, client *http.Client, log *slog.Logger) (Store, error) {
	if baseURL == "" {
		return nil, errors.New("rest store base URL is empty")
	}
	if apiKey == "" {
		return nil, errors.New("rest store api key is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid rest store base URL: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.Discard()
	}

	base := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(base, restPathPrefix) {
		base += restPathPrefix
	}
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &restStore{
		baseURL: base,
		headers: map[string]string{
			"apikey":        apiKey,
			"Authorization": "Bearer " + apiKey,
		},
		transport: transport,
		timeout:   client.Timeout,
		logger:    log.With("component", "store", "driver", "rest"),
	}, nil
}

func (s *restStore) Ping(ctx context.Context) error {
	return s.run(ctx, "ping", func(c *postgrest.Client) error {
		_, _, err := c.From(UsersTable).Select("user_id", "", false).Limit(1, "").Execute()
		return err
	})
}

func (s *restStore) GetSoulState(ctx context.Context, userID string) (*soul.State, error) {
	if userID == "" {
		return nil, errors.New("user_id cannot be empty")
	}

	var rows []restStateRow
	err := s.run(ctx, "get soul state", func(c *postgrest.Client) error {
		_, err := c.From(UsersTable).Select("*", "", false).Eq("user_id", userID).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting soul state", "user_id", userID, "error", err)
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toState(), nil
}

func (s *restStore) CreateSoulState(ctx context.Context, st *soul.State) error {
	if err := validateState(st); err != nil {
		return err
	}
	body := *st
	if body.Preferences == nil {
		body.Preferences = map[string]string{}
	}
	err := s.run(ctx, "create soul state", func(c *postgrest.Client) error {
		_, _, err := c.From(UsersTable).Insert(body, false, "", "minimal", "").Execute()
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating soul state", "user_id", st.UserID, "error", err)
		return err
	}
	return nil
}

func (s *restStore) UpdateSoulState(ctx context.Context, st *soul.State) error {
	if err := validateState(st); err != nil {
		return err
	}
	body := stateUpdate{
		BondLevel:        st.BondLevel,
		EmotionalState:   string(st.EmotionalState),
		FlirtStyle:       st.FlirtStyle,
		Nickname:         st.Nickname,
		IntimacyMode:     st.IntimacyMode,
		InteractionCount: st.InteractionCount,
		Preferences:      st.Preferences,
		LastInteraction:  st.LastInteraction.UTC(),
	}
	if body.Preferences == nil {
		body.Preferences = map[string]string{}
	}

	// the representation tells "no such row" apart from success
	var updated []json.RawMessage
	err := s.run(ctx, "update soul state", func(c *postgrest.Client) error {
		_, err := c.From(UsersTable).Update(body, "representation", "").Eq("user_id", st.UserID).ExecuteTo(&updated)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating soul state", "user_id", st.UserID, "error", err)
		return err
	}
	if len(updated) == 0 {
		return fmt.Errorf("update soul state for user %s: %w", st.UserID, ErrNotFound)
	}
	return nil
}

func (s *restStore) SaveInteraction(ctx context.Context, in *soul.Interaction) error {
	if err := validateInteraction(in); err != nil {
		return err
	}
	rec := *in
	rec.CreatedAt = rec.CreatedAt.UTC()
	err := s.run(ctx, "save interaction", func(c *postgrest.Client) error {
		_, _, err := c.From(InteractionsTable).Insert(rec, false, "", "minimal", "").Execute()
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving interaction", "user_id", in.UserID, "error", err)
		return err
	}
	return nil
}

func (s *restStore) GetRecentInteractions(ctx context.Context, userID string, limit int) ([]soul.Interaction, error) {
	if userID == "" {
		return nil, errors.New("user_id cannot be empty")
	}
	limit = ClampLimit(limit)

	var rows []restInteractionRow
	err := s.run(ctx, "get recent interactions", func(c *postgrest.Client) error {
		_, err := c.From(InteractionsTable).
			Select("user_id,user_message,ai_response,created_at", "", false).
			Eq("user_id", userID).
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			Limit(limit, "").
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent interactions", "user_id", userID, "error", err)
		return nil, err
	}

	out := make([]soul.Interaction, len(rows))
	for i, r := range rows {
		out[i] = soul.Interaction{
			UserID:      r.UserID,
			UserMessage: r.UserMessage,
			AIResponse:  r.AIResponse,
			CreatedAt:   time.Time(r.CreatedAt),
		}
	}
	return out, nil
}

// run executes one PostgREST call. Each call gets its own client so the
// request carries ctx; non-2xx answers surface as *RESTError.
func (s *restStore) run(ctx context.Context, op string, call func(c *postgrest.Client) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	c := postgrest.NewClient(s.baseURL, restSchema, s.headers)
	c.Transport.Parent = &restTransport{ctx: ctx, next: s.transport}

	start := time.Now()
	err := call(c)
	s.logger.DebugContext(ctx, "REST call finished", "op", op, "duration", time.Since(start), "error", err)
	if err == nil {
		return nil
	}

	var restErr *RESTError
	if errors.As(err, &restErr) {
		restErr.Op = op
		return restErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// restTransport binds requests to the caller's context and turns error
// statuses into *RESTError before the client flattens them into text.
type restTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t *restTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}

	defer func() { _ = resp.Body.Close() }()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &RESTError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
}
