// Package soul holds the persona state model and the pure functions that
// evolve it: the bond/emotion updater and the system prompt synthesizer.
// Nothing in this package performs I/O.
package soul

import (
	"math"
	"time"
)

// EmotionalState is the persona's simulated mood towards a user.
type EmotionalState string

// Known emotional states.
const (
	Curious      EmotionalState = "curious"
	Interested   EmotionalState = "interested"
	Affectionate EmotionalState = "affectionate"
	Passionate   EmotionalState = "passionate"
	Devoted      EmotionalState = "devoted"
	Caring       EmotionalState = "caring"
	Joyful       EmotionalState = "joyful"
	Romantic     EmotionalState = "romantic"
	Seductive    EmotionalState = "seductive"
	Supportive   EmotionalState = "supportive"
	Playful      EmotionalState = "playful"
)

// Bond limits and per-user defaults for a freshly met user.
const (
	MinBond = 1.0
	MaxBond = 10.0

	DefaultEmotionalState = Curious
	DefaultFlirtStyle     = "sweet and playful"
	DefaultNickname       = "babe"
)

// State is the per-user soul state persisted by the memory store.
// BondLevel keeps two decimals so small per-turn increments accumulate;
// the integer part is what users see.
type State struct {
	UserID           string            `json:"user_id"           db:"user_id"`
	BondLevel        float64           `json:"bond_level"        db:"bond_level"`
	EmotionalState   EmotionalState    `json:"emotional_state"   db:"emotional_state"`
	FlirtStyle       string            `json:"flirt_style"       db:"flirt_style"`
	Nickname         string            `json:"nickname"          db:"nickname"`
	IntimacyMode     bool              `json:"slut_mode_active"  db:"slut_mode_active"`
	InteractionCount int               `json:"interaction_count" db:"interaction_count"`
	CreatedAt        time.Time         `json:"created_at"        db:"created_at"`
	LastInteraction  time.Time         `json:"last_interaction"  db:"last_interaction"`
	Preferences      map[string]string `json:"preferences"       db:"-"`
}

// Interaction is one conversation turn. Records are append-only.
type Interaction struct {
	UserID      string    `json:"user_id"      db:"user_id"`
	UserMessage string    `json:"user_message" db:"user_message"`
	AIResponse  string    `json:"ai_response"  db:"ai_response"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// NewState returns the record created on the first message from an unseen user.
func NewState(userID string, now time.Time) State {
	st := DefaultState(userID)
	st.CreatedAt = now
	st.LastInteraction = now
	return st
}

// DefaultState returns the defaults used when no stored record is available.
// Timestamps are left zero.
func DefaultState(userID string) State {
	return State{
		UserID:         userID,
		BondLevel:      MinBond,
		EmotionalState: DefaultEmotionalState,
		FlirtStyle:     DefaultFlirtStyle,
		Nickname:       DefaultNickname,
		Preferences:    map[string]string{},
	}
}

// Normalize fills missing fields with defaults and clamps the bond level.
// Rows written by older clients may lack any of these columns.
func (s *State) Normalize() {
	if s.BondLevel < MinBond {
		s.BondLevel = MinBond
	}
	if s.BondLevel > MaxBond {
		s.BondLevel = MaxBond
	}
	if s.EmotionalState == "" {
		s.EmotionalState = DefaultEmotionalState
	}
	if s.FlirtStyle == "" {
		s.FlirtStyle = DefaultFlirtStyle
	}
	if s.Nickname == "" {
		s.Nickname = DefaultNickname
	}
	if s.Preferences == nil {
		s.Preferences = map[string]string{}
	}
	if s.InteractionCount < 0 {
		s.InteractionCount = 0
	}
}

// Level returns the whole bond level shown to users, within [1, 10].
func (s State) Level() int {
	return level(s.BondLevel)
}

func level(bond float64) int {
	l := int(math.Floor(bond))
	if l < int(MinBond) {
		return int(MinBond)
	}
	if l > int(MaxBond) {
		return int(MaxBond)
	}
	return l
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
