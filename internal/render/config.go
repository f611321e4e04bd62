package render

import (
	"os"

	"github.com/diogo/sanai/internal/config"
)

// OptionsFromConfig builds render options from a loaded configuration.
// GLAMOUR_STYLE overrides the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}

// LoadOptionsFromConfig loads render options from the user configuration file.
// A config that cannot be read yields the defaults (still honouring GLAMOUR_STYLE).
func LoadOptionsFromConfig() Options {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return OptionsFromConfig(cfg)
}

// LoadOptionsFromConfigWithWidth loads options from config with a specific width.
func LoadOptionsFromConfigWithWidth(width int) Options {
	return LoadOptionsFromConfig().WithWidth(width)
}
