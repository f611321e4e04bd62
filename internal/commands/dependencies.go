package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/diogo/sanai/internal/api"
	"github.com/diogo/sanai/internal/audio"
	"github.com/diogo/sanai/internal/chat"
	"github.com/diogo/sanai/internal/config"
	"github.com/diogo/sanai/internal/logging"
	"github.com/diogo/sanai/internal/tui"
)

// Backend is everything the commands need from the remote services.
// *api.Client implements it.
type Backend interface {
	chat.Generator
	chat.ImageLinker
	audio.Synthesizer
	tui.ImageDownloader
}

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(opts tui.Options) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(opts tui.Options) error {
	return tui.RunChat(opts)
}

// Dependencies holds the collaborators built from the configuration.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Config config.Config
	Log    logrus.FieldLogger

	// Client talks to Gemini and the image service.
	Client Backend

	// Player plays synthesized speech; nil builds one from Config.
	Player audio.Player

	// TUI is the terminal user interface.
	TUI TUIInterface

	closers []func() error
}

// NewDependencies loads the configuration and builds the production collaborators.
// The model flag overrides the configured chat model.
func NewDependencies(model string) (*Dependencies, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if model != "" {
		cfg.Model = model
	}

	deps := &Dependencies{
		Config: cfg,
		TUI:    &DefaultTUI{},
	}

	log, closeLog := newLogger(cfg)
	deps.Log = log
	deps.closers = append(deps.closers, closeLog)

	client, err := api.NewClient(
		api.WithAPIKey(cfg.APIKey),
		api.WithModel(cfg.Model),
		api.WithTTSModel(cfg.TTSModel),
		api.WithVoice(cfg.Voice),
		api.WithSystemInstruction(cfg.SystemInstruction),
		api.WithTemperature(cfg.Temperature),
		api.WithLogger(log),
	)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	deps.Client = client

	return deps, nil
}

// newLogger opens the log file, falling back to a silent logger when it can't
func newLogger(cfg config.Config) (logrus.FieldLogger, func() error) {
	noop := func() error { return nil }

	path, err := config.GetLogPath()
	if err != nil {
		return logging.Discard(), noop
	}

	logCfg := cfg.Log
	if cfg.Verbose {
		logCfg.Level = "debug"
	}

	log, closeFn, err := logging.New(logCfg, path)
	if err != nil {
		return logging.Discard(), noop
	}
	return log, closeFn
}

// Close releases files opened for the dependencies
func (d *Dependencies) Close() {
	for _, fn := range d.closers {
		_ = fn()
	}
	d.closers = nil
}

// NewDispatcher builds the request dispatcher from the configuration
func (d *Dependencies) NewDispatcher() *chat.Dispatcher {
	return chat.NewDispatcher(d.Client, d.Client,
		chat.WithImageDelay(d.Config.ImageDelay),
		chat.WithHistoryTurns(d.Config.HistoryTurns),
		chat.WithLogger(d.Log),
	)
}

// NewSpeaker builds the speech pipeline. enabled sets the initial state.
func (d *Dependencies) NewSpeaker(enabled bool) (*audio.Speaker, error) {
	player := d.Player
	if player == nil {
		p, err := audio.NewPlayer(d.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to open audio output: %w", err)
		}
		player = p
	}

	return audio.NewSpeaker(d.Client, player,
		audio.WithEnabled(enabled),
		audio.WithLogger(d.Log),
	), nil
}
