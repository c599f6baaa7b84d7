package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for key, alias := range envAliases {
		t.Setenv(alias, "")
		t.Setenv(EnvPrefix+"_"+envKey(key), "")
	}
	t.Setenv("SOULBOT_DATABASE_DRIVER", "")
	t.Setenv("SOULBOT_LOGGER_LEVEL", "")
}

func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 8443, cfg.Telegram.WebhookPort)
	assert.False(t, cfg.Webhook())
	assert.Equal(t, time.Second, cfg.Telegram.TypingMinDelay)
	assert.Equal(t, 3*time.Second, cfg.Telegram.TypingMaxDelay)

	assert.Equal(t, ProviderOpenRouter, cfg.Completion.Provider)
	assert.Equal(t, "openai/gpt-4-turbo-preview", cfg.Completion.PrimaryModel)
	assert.Equal(t, "anthropic/claude-3.5-sonnet:beta", cfg.Completion.FallbackModel)
	assert.InDelta(t, 0.95, cfg.Completion.Temperature, 1e-9)
	assert.InDelta(t, 0.9, cfg.Completion.TopP, 1e-9)
	assert.Equal(t, 750, cfg.Completion.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Completion.Timeout)
	assert.Equal(t, 3, cfg.Completion.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Completion.RetryDelay)
	assert.Len(t, cfg.Completion.Fillers, 3)

	assert.Equal(t, DriverREST, cfg.Database.Driver)
	assert.Equal(t, "https://project.supabase.co", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Soul.HistoryLimit)
	assert.Equal(t, "Bonnie", cfg.Soul.Persona)

	require.Contains(t, cfg.Scheduler.Tasks, "sql_maintenance")
	assert.True(t, cfg.Scheduler.Tasks["store_health"].Enabled)
	assert.Contains(t, cfg.Messages.Welcome, "{name}")
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("SOULBOT_TELEGRAM_TOKEN", "999:prefixed")
	t.Setenv("PORT", "9000")

	path := writeConfig(t, `
logger:
  level: debug
  json: true
telegram:
  token: from-file
  webhook_url: https://bot.example.com/hook
completion:
  timeout: 45s
  fillers:
    - "one moment, love"
soul:
  persona: Nova
  history_limit: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.Equal(t, "999:prefixed", cfg.Telegram.Token)
	assert.True(t, cfg.Webhook())
	assert.Equal(t, 9000, cfg.Telegram.WebhookPort)
	assert.Equal(t, 45*time.Second, cfg.Completion.Timeout)
	assert.Equal(t, []string{"one moment, love"}, cfg.Completion.Fillers)
	assert.Equal(t, "Nova", cfg.Soul.Persona)
	assert.Equal(t, 5, cfg.Soul.HistoryLimit)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		yaml    string
		wantErr bool
	}{
		{
			name:    "missing telegram token",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": ""},
			wantErr: true,
		},
		{
			name:    "missing api key",
			env:     map[string]string{"OPENROUTER_API_KEY": ""},
			wantErr: true,
		},
		{
			name:    "rest store without url",
			env:     map[string]string{"SUPABASE_URL": ""},
			wantErr: true,
		},
		{
			name:    "sqlite store needs no url",
			env:     map[string]string{"SUPABASE_URL": "", "SUPABASE_ANON_KEY": "", "SOULBOT_DATABASE_DRIVER": "sqlite"},
			wantErr: false,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"SOULBOT_LOGGER_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "typing max below min",
			yaml:    "telegram:\n  typing_min_delay: 3s\n  typing_max_delay: 1s\n",
			wantErr: true,
		},
		{
			name:    "enabled task without schedule",
			yaml:    "scheduler:\n  tasks:\n    nightly:\n      enabled: true\n",
			wantErr: true,
		},
		{
			name:    "unknown provider",
			yaml:    "completion:\n  provider: llama\n",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			setRequired(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.yaml != "" {
				path = writeConfig(t, tc.yaml)
			}

			_, err := Load(path)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
