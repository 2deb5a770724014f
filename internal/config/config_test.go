package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp keeps a developer's .env out of the test.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)
	for _, key := range []string{"PROXY_URLS", "DB_DRIVER", "SESSION_POLICY", "SUB_COMMENT_DELAY", "MAX_CONCURRENT_PASSES", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "PASS_TIMEOUT", "MONITOR_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "https://edith.xiaohongshu.com", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.SubCommentDelay)
	assert.Equal(t, "random", cfg.SessionPolicy)
	assert.Equal(t, 1, cfg.MaxConcurrentPasses)
	assert.Equal(t, 5*time.Minute, cfg.PassTimeout)
	assert.Equal(t, 30*time.Minute, cfg.MonitorTimeout)
	assert.Empty(t, cfg.ProxyURLs)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	chdirTemp(t)
	// godotenv never overrides a variable that is already set, even to "".
	for _, key := range []string{"PROXY_URLS", "SESSION_POLICY", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	env := "PROXY_URLS=http://u:p@127.0.0.1:3128, socks5://127.0.0.1:1080\nSESSION_POLICY=LRU\nTELEGRAM_BOT_TOKEN=123:abc\nTELEGRAM_CHAT_ID=-1001\n"
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte(env), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://u:p@127.0.0.1:3128", "socks5://127.0.0.1:1080"}, cfg.ProxyURLs)
	assert.Equal(t, "lru", cfg.SessionPolicy)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(-1001), cfg.TelegramChatID)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"proxy scheme", map[string]string{"PROXY_URLS": "ftp://127.0.0.1"}},
		{"driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"policy", map[string]string{"SESSION_POLICY": "round-robin"}},
		{"concurrency", map[string]string{"MAX_CONCURRENT_PASSES": "0"}},
		{"monitor timeout below pass timeout", map[string]string{"PASS_TIMEOUT": "10m", "MONITOR_TIMEOUT": "1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpersFallBack(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_FLOAT", "1.5")

	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.Equal(t, time.Minute, getEnvDuration("X_DUR", time.Minute))
	assert.Equal(t, 1.5, getEnvFloat("X_FLOAT", 2))
}
