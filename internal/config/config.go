// Package config holds the CLI settings. Defaults come from COOKLANG_*
// environment variables; flags override them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/hammamikhairi/cooklang/internal/logger"
)

// Environment variable names.
const (
	EnvLogLevel           = "COOKLANG_LOG_LEVEL"
	EnvLogFormat          = "COOKLANG_LOG_FORMAT"
	EnvLogFile            = "COOKLANG_LOG_FILE"
	EnvOutput             = "COOKLANG_OUTPUT"
	EnvServings           = "COOKLANG_SERVINGS"
	EnvCatalogDir         = "COOKLANG_CATALOG_DIR"
	EnvDatabase           = "COOKLANG_DATABASE"
	EnvSearch             = "COOKLANG_SEARCH"
	EnvIngredientTemplate = "COOKLANG_INGREDIENT_TEMPLATE"
	EnvCookwareTemplate   = "COOKLANG_COOKWARE_TEMPLATE"
	EnvTimerTemplate      = "COOKLANG_TIMER_TEMPLATE"
)

// Output formats accepted by the CLI.
var Outputs = []string{"text", "markdown", "md", "html", "json"}

// Config is the resolved CLI configuration.
type Config struct {
	LogLevel  string
	LogFormat string
	// LogFile is a path, or "stderr".
	LogFile string
	Output  string
	// Servings scales every rendered recipe. Zero keeps amounts as written.
	Servings   int
	CatalogDir string
	// Database is a sqlite DSN. Empty keeps the catalog in memory.
	Database string
	Search   string

	IngredientTemplate string
	CookwareTemplate   string
	TimerTemplate      string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  logger.LevelNormal.String(),
		LogFormat: string(logger.FormatText),
		LogFile:   "stderr",
		Output:    "text",
	}
}

// FromEnv returns the defaults overridden by any COOKLANG_* variables set
// in the environment.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	strs := map[string]*string{
		EnvLogLevel:           &c.LogLevel,
		EnvLogFormat:          &c.LogFormat,
		EnvLogFile:            &c.LogFile,
		EnvOutput:             &c.Output,
		EnvCatalogDir:         &c.CatalogDir,
		EnvDatabase:           &c.Database,
		EnvSearch:             &c.Search,
		EnvIngredientTemplate: &c.IngredientTemplate,
		EnvCookwareTemplate:   &c.CookwareTemplate,
		EnvTimerTemplate:      &c.TimerTemplate,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvServings); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvServings, err)
		}
		c.Servings = n
	}
	return c, nil
}

// Level returns the parsed log level.
func (c Config) Level() logger.Level {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.By(func(value any) error {
			if _, err := logger.ParseLevel(value.(string)); err != nil {
				return validation.NewError("cooklang.config.log_level", err.Error())
			}
			return nil
		})),
		validation.Field(&c.LogFormat, validation.In(string(logger.FormatText), string(logger.FormatJSON))),
		validation.Field(&c.Output, validation.Required, validation.In(anySlice(Outputs)...)),
		validation.Field(&c.Servings, validation.Min(0)),
		validation.Field(&c.IngredientTemplate, validation.By(validTemplate)),
		validation.Field(&c.CookwareTemplate, validation.By(validTemplate)),
		validation.Field(&c.TimerTemplate, validation.By(validTemplate)),
	)
}

func validTemplate(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, diags := hclsyntax.ParseTemplate([]byte(s), "template", hcl.InitialPos); diags.HasErrors() {
		return validation.NewError("cooklang.config.template", diags.Error())
	}
	return nil
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
