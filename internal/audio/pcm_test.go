package audio

import (
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64PCM(t *testing.T) {
	raw := []byte{0x01, 0x00, 0xff, 0x7f, 0x00, 0x80}

	pcm, err := DecodeBase64PCM(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, pcm)

	samples := Samples(pcm)
	assert.Equal(t, []int16{1, 32767, -32768}, samples)
}

func TestDecodeBase64PCM_OddLength(t *testing.T) {
	pcm, err := DecodeBase64PCM(base64.StdEncoding.EncodeToString([]byte{1, 0, 2}))
	require.NoError(t, err)
	assert.Len(t, pcm, 2)
}

func TestDecodeBase64PCM_SingleByte(t *testing.T) {
	pcm, err := DecodeBase64PCM(base64.StdEncoding.EncodeToString([]byte{7}))
	assert.Error(t, err)
	assert.Nil(t, pcm)
}

func TestDecodeBase64PCM_Invalid(t *testing.T) {
	_, err := DecodeBase64PCM("!!not base64!!")
	assert.Error(t, err)

	_, err = DecodeBase64PCM("")
	assert.Error(t, err)
}

func TestPCMToFloat32(t *testing.T) {
	out := PCMToFloat32([]int16{0, 16384, -32768, 32767})

	assert.Equal(t, float32(0), out[0])
	assert.Equal(t, float32(0.5), out[1])
	assert.Equal(t, float32(-1), out[2])
	assert.InDelta(t, 0.99997, out[3], 1e-5)
}

func TestPCMDuration(t *testing.T) {
	assert.Equal(t, time.Second, PCMDuration(48000, 1, 24000))
	assert.Equal(t, 500*time.Millisecond, PCMDuration(48000, 2, 48000))
	assert.Equal(t, time.Duration(0), PCMDuration(100, 0, 24000))
}

func TestPCMToWAV(t *testing.T) {
	pcm := make([]byte, 480)

	wav, err := PCMToWAV(pcm, 1, 24000)
	require.NoError(t, err)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "PCM format")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "channels")
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]), "byte rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestPCMToWAV_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		pcm      []byte
		channels int
		rate     int
	}{
		{"empty", nil, 1, 24000},
		{"channels", []byte{0, 0}, 3, 24000},
		{"rate", []byte{0, 0}, 1, 0},
		{"misaligned stereo", []byte{0, 0}, 2, 24000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PCMToWAV(tt.pcm, tt.channels, tt.rate)
			assert.Error(t, err)
		})
	}
}
