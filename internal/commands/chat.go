package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/sanai/internal/chat"
	"github.com/diogo/sanai/internal/config"
	"github.com/diogo/sanai/internal/history"
	"github.com/diogo/sanai/internal/render"
	"github.com/diogo/sanai/internal/tui"
)

var chatTTSFlag bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with San AI.

The conversation is saved after every message and restored next time.
Type /attach <path> to send a photo, /img <prompt> to draw a picture,
/copy [n] to copy a code block, /save or /open for the last image,
and /tts or Ctrl+T to toggle speech. Type /exit or press Ctrl+C to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newDependencies(modelFlag)
		if err != nil {
			return err
		}
		defer deps.Close()

		store, err := history.DefaultStore()
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}

		opts, err := chatOptions(cmd, deps, store)
		if err != nil {
			return err
		}
		return deps.TUI.RunChat(opts)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatTTSFlag, "tts", false, "Start with speech enabled")
}

// chatOptions restores the stored conversation and wires the chat screen
func chatOptions(cmd *cobra.Command, deps *Dependencies, store *history.Store) (tui.Options, error) {
	messages, err := store.Load()
	if errors.Is(err, history.ErrCorrupt) {
		fmt.Fprintln(cmd.ErrOrStderr(), formatErrorMessage(err, "Starting a new conversation"))
		deps.Log.WithError(err).Warn("stored conversation was unreadable")
	} else if err != nil {
		return tui.Options{}, fmt.Errorf("failed to load history: %w", err)
	}

	speaker, err := deps.NewSpeaker(deps.Config.TTSEnabled || chatTTSFlag)
	if err != nil {
		// Chat still works without sound.
		deps.Log.WithError(err).Warn("speech disabled")
		speaker = nil
	}

	downloadDir, err := config.GetDownloadDir(deps.Config)
	if err != nil {
		return tui.Options{}, err
	}

	palette, ok := render.PaletteByName(deps.Config.TUITheme)
	if !ok {
		deps.Log.WithField("theme", deps.Config.TUITheme).Warn("unknown tui theme, using default")
	}

	return tui.Options{
		Conversation: chat.NewConversation(messages, store),
		Dispatcher:   deps.NewDispatcher(),
		Speaker:      speaker,
		Images:       deps.Client,
		DownloadDir:  downloadDir,
		ModelName:    deps.Config.Model,
		Render:       render.OptionsFromConfig(deps.Config),
		Palette:      palette,
		Log:          deps.Log,
	}, nil
}
