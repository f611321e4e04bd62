package audio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diogo/sanai/internal/logging"
	"github.com/diogo/sanai/internal/render"
)

// DefaultSpeechTimeout bounds synthesis plus playback of one utterance
const DefaultSpeechTimeout = 2 * time.Minute

// Synthesizer turns text into base64 s16le PCM
type Synthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) (string, error)
}

// Speaker reads replies aloud, one utterance at a time.
// A new utterance cancels the one in progress, and only the newest
// utterance may clear the speaking flag when it finishes.
type Speaker struct {
	synth   Synthesizer
	player  Player
	timeout time.Duration
	log     logrus.FieldLogger

	mu       sync.Mutex
	enabled  bool
	speaking bool
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	onChange func(speaking bool)
}

// SpeakerOption configures a Speaker
type SpeakerOption func(*Speaker)

// WithTimeout bounds each utterance
func WithTimeout(d time.Duration) SpeakerOption {
	return func(s *Speaker) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) SpeakerOption {
	return func(s *Speaker) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEnabled sets the initial enabled state
func WithEnabled(enabled bool) SpeakerOption {
	return func(s *Speaker) {
		s.enabled = enabled
	}
}

// NewSpeaker creates a disabled Speaker unless WithEnabled(true) is given
func NewSpeaker(synth Synthesizer, player Player, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		synth:   synth,
		player:  player,
		timeout: DefaultSpeechTimeout,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnStateChange registers fn to be called whenever the speaking flag changes.
// fn runs on whichever goroutine changed the flag, including callers of Speak,
// Stop and SetEnabled, so it must not block. Calls from different goroutines
// are not ordered; read Speaking for the current state.
func (s *Speaker) OnStateChange(fn func(speaking bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Enabled reports whether replies are read aloud
func (s *Speaker) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Speaking reports whether an utterance is being synthesized or played
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// SetEnabled switches speech on or off. Switching off stops playback.
func (s *Speaker) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	if !enabled {
		s.Stop()
	}
}

// Toggle flips the enabled state and returns the new value
func (s *Speaker) Toggle() bool {
	enabled := !s.Enabled()
	s.SetEnabled(enabled)
	return enabled
}

// Speak starts reading text aloud in the background.
// It does nothing when disabled or when nothing speakable remains.
func (s *Speaker) Speak(text string) {
	clean := strings.TrimSpace(render.CleanForSpeech(text))

	s.mu.Lock()
	if !s.enabled || clean == "" {
		s.mu.Unlock()
		return
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	notify := s.setSpeakingLocked(true)
	s.mu.Unlock()

	notify()
	go s.run(ctx, gen, clean, done)
}

// Wait blocks until the current utterance, if any, has finished
func (s *Speaker) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// SpeakAndWait reads text aloud and returns when playback is over
func (s *Speaker) SpeakAndWait(text string) {
	s.Speak(text)
	s.Wait()
}

// Stop cancels the current utterance and clears the speaking flag
func (s *Speaker) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	notify := s.setSpeakingLocked(false)
	s.mu.Unlock()

	notify()
}

func (s *Speaker) run(ctx context.Context, gen uint64, text string, done chan struct{}) {
	defer close(done)
	defer s.finish(gen)

	log := s.log.WithField("chars", len(text))

	b64, err := s.synth.SynthesizeSpeech(ctx, text)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.WithError(err).Warn("speech synthesis failed")
		}
		return
	}

	pcm, err := DecodeBase64PCM(b64)
	if err != nil {
		log.WithError(err).Warn("speech audio unusable")
		return
	}

	if err := s.player.Play(ctx, pcm); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Warn("speech playback failed")
		return
	}
	log.Debug("speech finished")
}

// finish clears the flag if gen is still the newest utterance
func (s *Speaker) finish(gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	notify := s.setSpeakingLocked(false)
	s.mu.Unlock()

	notify()
}

// setSpeakingLocked updates the flag and returns the callback to run after unlocking
func (s *Speaker) setSpeakingLocked(speaking bool) func() {
	if s.speaking == speaking || s.onChange == nil {
		s.speaking = speaking
		return func() {}
	}
	s.speaking = speaking
	fn := s.onChange
	return func() { fn(speaking) }
}
