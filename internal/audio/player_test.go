package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/sanai/internal/config"
)

func TestWAVFilePlayer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	player := NewWAVFilePlayer(dir)

	require.NoError(t, player.Play(context.Background(), make([]byte, 96)))

	path := player.Last()
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "speech_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Len(t, data, 44+96)
}

func TestWAVFilePlayer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	player := NewWAVFilePlayer(t.TempDir())
	assert.ErrorIs(t, player.Play(ctx, make([]byte, 4)), context.Canceled)
	assert.Empty(t, player.Last())
}

func TestNopPlayer(t *testing.T) {
	assert.NoError(t, NopPlayer{}.Play(context.Background(), []byte{0, 0}))
}

func TestNewPlayer(t *testing.T) {
	t.Setenv("SANAI_HOME", t.TempDir())

	cfg := config.DefaultConfig()

	cfg.AudioOutput = config.AudioNone
	p, err := NewPlayer(cfg)
	require.NoError(t, err)
	assert.IsType(t, NopPlayer{}, p)

	cfg.AudioOutput = config.AudioWAV
	cfg.AudioDir = ""
	p, err = NewPlayer(cfg)
	require.NoError(t, err)
	wav, ok := p.(*WAVFilePlayer)
	require.True(t, ok)
	assert.Equal(t, "audio", filepath.Base(wav.Dir))

	cfg.AudioOutput = "speaker"
	_, err = NewPlayer(cfg)
	assert.Error(t, err)
}
