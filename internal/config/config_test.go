package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAllProviderKeys(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
	t.Setenv("NVIDIA_API_KEY", "nvapi-key")
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	setAllProviderKeys(t)
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "9001")
	t.Setenv("POSTGRES_DB", "chat_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.App.Port)
	assert.Equal(t, "chat_test", cfg.Postgres.DB)
	assert.Equal(t, "sk-openai", cfg.Provider.OpenAI.APIKey)
	assert.Contains(t, cfg.PostgresDSN(), "dbname=chat_test")
}

func TestLoadFailsOnMissingProviderCredential(t *testing.T) {
	setAllProviderKeys(t)
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("DEEPSEEK_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deepseek")
}

func TestValidateRequiresEveryProviderKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.Provider.OpenAI.APIKey = "a"
	cfg.Provider.Google.APIKey = "b"
	cfg.Provider.DeepSeek.APIKey = "c"
	cfg.Provider.NVIDIA.APIKey = "d"
	require.NoError(t, cfg.Validate())

	cfg.Provider.Google.APIKey = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google")
}
