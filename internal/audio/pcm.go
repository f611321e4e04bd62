// Package audio decodes synthesized speech and plays it back.
package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const bytesPerSample = 2 // signed 16-bit

// DecodeBase64PCM decodes the base64 payload of a speech response into raw
// signed 16-bit little-endian PCM. A dangling odd byte is dropped.
func DecodeBase64PCM(b64 string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("invalid audio payload: %w", err)
	}
	pcm = pcm[:len(pcm)-len(pcm)%bytesPerSample]
	if len(pcm) == 0 {
		return nil, errors.New("audio payload is empty")
	}
	return pcm, nil
}

// Samples reinterprets s16le PCM as samples
func Samples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/bytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample:]))
	}
	return samples
}

// PCMToFloat32 scales samples to [-1, 1)
func PCMToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// PCMDuration is the playback time of n bytes of s16le PCM
func PCMDuration(n, channels, sampleRate int) time.Duration {
	if channels <= 0 || sampleRate <= 0 {
		return 0
	}
	frames := n / (bytesPerSample * channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// PCMToWAV wraps s16le PCM in a canonical 44-byte WAV header
func PCMToWAV(pcm []byte, channels, sampleRate int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, errors.New("PCM data is empty")
	}
	if channels <= 0 || channels > 2 {
		return nil, errors.New("only mono (1) or stereo (2) channels supported")
	}
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if len(pcm)%(bytesPerSample*channels) != 0 {
		return nil, errors.New("PCM data length doesn't match channel count")
	}

	const (
		bitsPerSample  = 16
		audioFormatPCM = 1
		fmtChunkSize   = 16
	)

	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(fmtChunkSize))
	_ = binary.Write(buf, binary.LittleEndian, uint16(audioFormatPCM))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes(), nil
}
