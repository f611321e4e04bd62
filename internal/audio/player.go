package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/diogo/sanai/internal/config"
	"github.com/diogo/sanai/internal/models"
)

// Player plays one utterance of s16le PCM.
// Play blocks until playback ends or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, pcm []byte) error
}

// NopPlayer discards audio
type NopPlayer struct{}

// Play returns immediately
func (NopPlayer) Play(ctx context.Context, _ []byte) error {
	return ctx.Err()
}

// WAVFilePlayer writes every utterance to a .wav file instead of a sound card
type WAVFilePlayer struct {
	Dir        string
	SampleRate int
	Channels   int

	mu   sync.Mutex
	last string
}

// NewWAVFilePlayer creates a player writing 24 kHz mono files into dir
func NewWAVFilePlayer(dir string) *WAVFilePlayer {
	return &WAVFilePlayer{
		Dir:        dir,
		SampleRate: models.SpeechSampleRate,
		Channels:   models.SpeechChannels,
	}
}

// Play writes pcm as speech_<timestamp>.wav
func (p *WAVFilePlayer) Play(ctx context.Context, pcm []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wav, err := PCMToWAV(pcm, p.Channels, p.SampleRate)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	name := fmt.Sprintf("speech_%s.wav", time.Now().Format("20060102_150405.000"))
	path := filepath.Join(p.Dir, name)
	if err := os.WriteFile(path, wav, 0o600); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	p.mu.Lock()
	p.last = path
	p.mu.Unlock()
	return nil
}

// Last returns the most recently written file
func (p *WAVFilePlayer) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// NewPlayer builds the player selected by cfg.AudioOutput.
// A sound card that cannot be opened is reported; callers may fall back to NopPlayer.
func NewPlayer(cfg config.Config) (Player, error) {
	switch cfg.AudioOutput {
	case config.AudioNone:
		return NopPlayer{}, nil
	case config.AudioWAV:
		dir := cfg.AudioDir
		if dir == "" {
			base, err := config.GetConfigDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(base, "audio")
		}
		return NewWAVFilePlayer(dir), nil
	case config.AudioDevice, "":
		return NewOtoPlayer(models.SpeechSampleRate, models.SpeechChannels)
	default:
		return nil, fmt.Errorf("unknown audio output: %s", cfg.AudioOutput)
	}
}
