package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
	otoRate int
)

func sharedContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = fmt.Errorf("failed to open audio device: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
		otoRate = sampleRate
	})

	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("audio device already opened at %d Hz", otoRate)
	}
	return otoCtx, nil
}

// pollInterval is how often playback completion is checked
const pollInterval = 20 * time.Millisecond

// OtoPlayer plays through the default sound card
type OtoPlayer struct {
	ctx *oto.Context
}

// NewOtoPlayer opens the sound card for s16le PCM
func NewOtoPlayer(sampleRate, channels int) (*OtoPlayer, error) {
	ctx, err := sharedContext(sampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &OtoPlayer{ctx: ctx}, nil
}

// Play plays pcm and returns when it has been heard or ctx is cancelled
func (p *OtoPlayer) Play(ctx context.Context, pcm []byte) error {
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	defer func() { _ = player.Close() }()

	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
