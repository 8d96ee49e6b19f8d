package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cooklang/internal/logger"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c, err := fromLookup(lookupFrom(nil))
	require.NoError(t, err)
	require.Equal(t, Default(), c)
	require.NoError(t, c.Validate())
	require.Equal(t, logger.LevelNormal, c.Level())
}

func TestFromEnv(t *testing.T) {
	c, err := fromLookup(lookupFrom(map[string]string{
		EnvLogLevel:      "verbose",
		EnvLogFormat:     "json",
		EnvOutput:        "markdown",
		EnvServings:      " 4 ",
		EnvCatalogDir:    "recipes",
		EnvDatabase:      "file:recipes.db",
		EnvTimerTemplate: "${quantity}${unit}",
	}))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	require.Equal(t, logger.LevelVerbose, c.Level())
	require.Equal(t, "json", c.LogFormat)
	require.Equal(t, "markdown", c.Output)
	require.Equal(t, 4, c.Servings)
	require.Equal(t, "recipes", c.CatalogDir)
	require.Equal(t, "file:recipes.db", c.Database)
	require.Equal(t, "${quantity}${unit}", c.TimerTemplate)
	require.Equal(t, "stderr", c.LogFile)
}

func TestFromEnvInvalidServings(t *testing.T) {
	_, err := fromLookup(lookupFrom(map[string]string{EnvServings: "four"}))
	require.Error(t, err)
	require.Contains(t, err.Error(), EnvServings)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"md alias", func(c *Config) { c.Output = "md" }, ""},
		{"quiet level", func(c *Config) { c.LogLevel = "quiet" }, ""},
		{"unknown output", func(c *Config) { c.Output = "pdf" }, "Output"},
		{"blank output", func(c *Config) { c.Output = "" }, "Output"},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel"},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, "LogFormat"},
		{"negative servings", func(c *Config) { c.Servings = -1 }, "Servings"},
		{"bad template", func(c *Config) { c.IngredientTemplate = "${name" }, "IngredientTemplate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
