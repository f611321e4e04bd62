// Package config handles configuration loading and saving for sanai.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/diogo/sanai/internal/models"
)

// Audio output modes
const (
	AudioDevice = "device" // play through the sound card
	AudioWAV    = "wav"    // write each utterance to a .wav file
	AudioNone   = "none"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" mapstructure:"style"` // glamour style name or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji" mapstructure:"enable_emoji"`
	PreserveNewLines bool   `json:"preserve_newlines" mapstructure:"preserve_newlines"`
	TableWrap        bool   `json:"table_wrap" mapstructure:"table_wrap"`
}

// LogConfig configures the log file
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // text or json
}

// Config represents the user configuration
type Config struct {
	APIKey            string  `json:"api_key,omitempty" mapstructure:"api_key"`
	Model             string  `json:"model" mapstructure:"model"`
	TTSModel          string  `json:"tts_model" mapstructure:"tts_model"`
	Voice             string  `json:"voice" mapstructure:"voice"`
	Temperature       float64 `json:"temperature" mapstructure:"temperature"`
	SystemInstruction string  `json:"system_instruction" mapstructure:"system_instruction"`
	// TTSEnabled controls whether replies are read aloud when a chat starts.
	TTSEnabled  bool   `json:"tts_enabled" mapstructure:"tts_enabled"`
	AudioOutput string `json:"audio_output" mapstructure:"audio_output"`
	AudioDir    string `json:"audio_dir,omitempty" mapstructure:"audio_dir"`
	// ImageDelay gives the image service time to render before the URL is shown.
	ImageDelay  time.Duration `json:"image_delay" mapstructure:"image_delay"`
	DownloadDir string        `json:"download_dir,omitempty" mapstructure:"download_dir"`
	// HistoryTurns is the number of previous messages sent along as context.
	// Zero sends only the current message.
	HistoryTurns int            `json:"history_turns" mapstructure:"history_turns"`
	// TUITheme names the chat screen palette (see render.PaletteNames).
	TUITheme     string         `json:"tui_theme" mapstructure:"tui_theme"`
	Verbose      bool           `json:"verbose" mapstructure:"verbose"`
	Markdown     MarkdownConfig `json:"markdown" mapstructure:"markdown"`
	Log          LogConfig      `json:"log" mapstructure:"log"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	configDir, _ := GetConfigDir()
	return Config{
		Model:             models.ChatModel,
		TTSModel:          models.TTSModel,
		Voice:             models.TTSVoice,
		Temperature:       models.Temperature,
		SystemInstruction: models.SystemInstruction,
		TTSEnabled:        false,
		AudioOutput:       AudioDevice,
		AudioDir:          filepath.Join(configDir, "audio"),
		ImageDelay:        3500 * time.Millisecond,
		DownloadDir:       filepath.Join(configDir, "images"),
		HistoryTurns:      0,
		TUITheme:          "zinc",
		Verbose:           false,
		Markdown:          DefaultMarkdownConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv("SANAI_HOME"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".sanai"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the API key and the conversation
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path to the log file
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sanai.log"), nil
}

// GetDownloadDir returns the download directory from config, creating it if necessary
func GetDownloadDir(cfg Config) (string, error) {
	dir := cfg.DownloadDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "images")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	return dir, nil
}

// newViper builds a viper instance seeded with the defaults and environment bindings
func newViper(path string) *viper.Viper {
	v := newFileViper(path)
	v.SetEnvPrefix("SANAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// newFileViper sees only the defaults and the file. SetValue writes through it
// so environment overrides never end up on disk.
func newFileViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetConfigPermissions(0o600)

	setValues(DefaultConfig(), v.SetDefault)
	return v
}

// setValues copies every configuration key from cfg using set
func setValues(cfg Config, set func(string, any)) {
	set("api_key", cfg.APIKey)
	set("model", cfg.Model)
	set("tts_model", cfg.TTSModel)
	set("voice", cfg.Voice)
	set("temperature", cfg.Temperature)
	set("system_instruction", cfg.SystemInstruction)
	set("tts_enabled", cfg.TTSEnabled)
	set("audio_output", cfg.AudioOutput)
	set("audio_dir", cfg.AudioDir)
	set("image_delay", cfg.ImageDelay.String())
	set("download_dir", cfg.DownloadDir)
	set("history_turns", cfg.HistoryTurns)
	set("tui_theme", cfg.TUITheme)
	set("verbose", cfg.Verbose)
	set("markdown.style", cfg.Markdown.Style)
	set("markdown.enable_emoji", cfg.Markdown.EnableEmoji)
	set("markdown.preserve_newlines", cfg.Markdown.PreserveNewLines)
	set("markdown.table_wrap", cfg.Markdown.TableWrap)
	set("log.level", cfg.Log.Level)
	set("log.format", cfg.Log.Format)
}

// Keys returns every configuration key accepted by SetValue
func Keys() []string {
	var keys []string
	setValues(DefaultConfig(), func(key string, _ any) {
		keys = append(keys, key)
	})
	return keys
}

func isKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func readInto(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv()
	}

	return cfg, nil
}

// apiKeyFromEnv falls back to the conventional Gemini variables
func apiKeyFromEnv() string {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"} {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// LoadConfig loads the configuration from disk and the environment.
// A missing config file yields the defaults.
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	return readInto(newViper(configPath))
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	v := viper.New()
	v.SetConfigType("json")
	v.SetConfigPermissions(0o600)
	setValues(cfg, v.Set)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetValue updates a single key and persists the result.
// Values are given as strings and converted to the key's type.
func SetValue(key, value string) (Config, error) {
	if !isKnownKey(key) {
		return Config{}, fmt.Errorf("unknown config key: %s", key)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return Config{}, err
	}

	v := newFileViper(configPath)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	v.Set(key, value)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if key == "audio_output" && !validAudioOutput(cfg.AudioOutput) {
		return Config{}, fmt.Errorf("invalid audio_output %q (want %s, %s or %s)", value, AudioDevice, AudioWAV, AudioNone)
	}

	if err := SaveConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validAudioOutput(mode string) bool {
	switch mode {
	case AudioDevice, AudioWAV, AudioNone:
		return true
	default:
		return false
	}
}

// Get returns the value of a key from cfg formatted for display
func Get(cfg Config, key string) (string, bool) {
	var out string
	found := false
	setValues(cfg, func(k string, val any) {
		if k == key {
			out = fmt.Sprint(val)
			found = true
		}
	})
	return out, found
}
