package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanForSpeech(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Halo, apa kabar?", "Halo, apa kabar?"},
		{"bold", "Ini **penting** sekali", "Ini penting sekali"},
		{"code block", "Coba ini:\n```go\nfmt.Println()\n```\nSelesai.", "Coba ini:\n[Kode]\nSelesai."},
		{"two code blocks", "```a```x```b```", "[Kode]x[Kode]"},
		{"link", "Lihat [dokumen](https://go.dev) ya", "Lihat  ya"},
		{"inline code kept", "pakai `ls`", "pakai `ls`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanForSpeech(tt.input))
		})
	}
}

func TestCleanForSpeech_Truncates(t *testing.T) {
	long := strings.Repeat("é", 1000)

	out := CleanForSpeech(long)

	assert.Equal(t, 800, utf8.RuneCountInString(out))
	assert.True(t, utf8.ValidString(out))
}
