package audio

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAudio = base64.StdEncoding.EncodeToString([]byte{1, 0, 2, 0, 3, 0, 4, 0})

type fakeSynth struct {
	mu    sync.Mutex
	audio string
	err   error
	texts []string
}

func (f *fakeSynth) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.audio, f.err
}

func (f *fakeSynth) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

// blockingPlayer plays until released or cancelled
type blockingPlayer struct {
	mu      sync.Mutex
	started chan struct{}
	release chan struct{}
	plays   int
	stopped int
}

func newBlockingPlayer() *blockingPlayer {
	return &blockingPlayer{
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
	}
}

func (p *blockingPlayer) Play(ctx context.Context, _ []byte) error {
	p.mu.Lock()
	p.plays++
	p.mu.Unlock()
	p.started <- struct{}{}

	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		p.mu.Lock()
		p.stopped++
		p.mu.Unlock()
		return ctx.Err()
	}
}

func (p *blockingPlayer) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-p.started:
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not start")
	}
}

type stateRecorder struct {
	mu     sync.Mutex
	states []bool
}

func (r *stateRecorder) record(speaking bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, speaking)
}

func (r *stateRecorder) get() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.states...)
}

func TestSpeaker_DisabledDoesNothing(t *testing.T) {
	synth := &fakeSynth{audio: testAudio}
	s := NewSpeaker(synth, NopPlayer{})

	s.SpeakAndWait("halo")

	assert.False(t, s.Enabled())
	assert.False(t, s.Speaking())
	assert.Empty(t, synth.calls())
}

func TestSpeaker_EmptyTextDoesNothing(t *testing.T) {
	synth := &fakeSynth{audio: testAudio}
	s := NewSpeaker(synth, NopPlayer{}, WithEnabled(true))

	s.SpeakAndWait("   ")
	s.SpeakAndWait("[tautan](https://x.test)")

	assert.Empty(t, synth.calls())
}

func TestSpeaker_SpeaksCleanText(t *testing.T) {
	synth := &fakeSynth{audio: testAudio}
	player := NewWAVFilePlayer(t.TempDir())
	rec := &stateRecorder{}
	s := NewSpeaker(synth, player, WithEnabled(true))
	s.OnStateChange(rec.record)

	s.SpeakAndWait("Ini **penting**:\n```go\nx := 1\n```")

	require.Equal(t, []string{"Ini penting:\n[Kode]"}, synth.calls())
	assert.NotEmpty(t, player.Last())
	assert.False(t, s.Speaking())
	assert.Equal(t, []bool{true, false}, rec.get())
}

func TestSpeaker_SynthesisErrorClearsFlag(t *testing.T) {
	synth := &fakeSynth{err: errors.New("quota")}
	s := NewSpeaker(synth, NopPlayer{}, WithEnabled(true))

	s.SpeakAndWait("halo")

	assert.False(t, s.Speaking())
}

func TestSpeaker_BadAudioClearsFlag(t *testing.T) {
	synth := &fakeSynth{audio: "%%%"}
	s := NewSpeaker(synth, NopPlayer{}, WithEnabled(true))

	s.SpeakAndWait("halo")

	assert.False(t, s.Speaking())
}

func TestSpeaker_NewUtteranceReplacesOld(t *testing.T) {
	synth := &fakeSynth{audio: testAudio}
	player := newBlockingPlayer()
	rec := &stateRecorder{}
	s := NewSpeaker(synth, player, WithEnabled(true))
	s.OnStateChange(rec.record)

	s.Speak("pertama")
	player.waitStarted(t)

	s.Speak("kedua")
	player.waitStarted(t)

	// the first utterance was cancelled but must not clear the flag
	assert.Eventually(t, func() bool {
		player.mu.Lock()
		defer player.mu.Unlock()
		return player.stopped == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.Speaking())

	close(player.release)
	s.Wait()

	assert.False(t, s.Speaking())
	assert.Equal(t, []string{"pertama", "kedua"}, synth.calls())
	assert.Equal(t, []bool{true, false}, rec.get())
}

func TestSpeaker_StopCancelsPlayback(t *testing.T) {
	player := newBlockingPlayer()
	s := NewSpeaker(&fakeSynth{audio: testAudio}, player, WithEnabled(true))

	s.Speak("halo")
	player.waitStarted(t)
	require.True(t, s.Speaking())

	s.Stop()
	assert.False(t, s.Speaking())

	s.Wait()
	player.mu.Lock()
	assert.Equal(t, 1, player.stopped)
	player.mu.Unlock()
}

func TestSpeaker_DisableStopsPlayback(t *testing.T) {
	player := newBlockingPlayer()
	s := NewSpeaker(&fakeSynth{audio: testAudio}, player, WithEnabled(true))

	s.Speak("halo")
	player.waitStarted(t)

	s.SetEnabled(false)
	s.Wait()

	assert.False(t, s.Speaking())
	assert.False(t, s.Enabled())
}

func TestSpeaker_Toggle(t *testing.T) {
	s := NewSpeaker(&fakeSynth{}, NopPlayer{})

	assert.True(t, s.Toggle())
	assert.True(t, s.Enabled())
	assert.False(t, s.Toggle())
}

func TestSpeaker_Timeout(t *testing.T) {
	player := newBlockingPlayer()
	s := NewSpeaker(&fakeSynth{audio: testAudio}, player, WithEnabled(true), WithTimeout(20*time.Millisecond))

	s.SpeakAndWait("halo")

	assert.False(t, s.Speaking())
}
