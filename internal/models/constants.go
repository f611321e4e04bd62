// Package models contains data types and constants shared across sanai.
package models

// Endpoints for the remote services
const (
	EndpointGemini = "https://generativelanguage.googleapis.com/v1beta"
	EndpointImage  = "https://image.pollinations.ai/prompt/"
)

// Remote model and voice defaults
const (
	ChatModel   = "gemini-3-flash-preview"
	TTSModel    = "gemini-2.5-flash-preview-tts"
	TTSVoice    = "Zephyr"
	Temperature = 0.7

	// TTS output is raw signed 16-bit little-endian mono PCM
	SpeechSampleRate = 24000
	SpeechChannels   = 1

	// MaxSpeechRunes caps the text sent for synthesis
	MaxSpeechRunes = 800
)

// Image generation parameters
const (
	ImageModel  = "flux"
	ImageWidth  = 1024
	ImageHeight = 1024
	ImageSeeds  = 999999
)

// AssistantName is shown in the header and used as the persona name
const AssistantName = "San AI"

// SystemInstruction is the default persona sent with every chat request
const SystemInstruction = `Nama Anda adalah San AI. Anda adalah asisten AI yang cerdas, cepat, dan membantu.
- Berikan jawaban yang jelas, singkat, dan padat.
- Gunakan Bahasa Indonesia yang natural.
- Selalu letakkan kode pemrograman, perintah terminal, atau teks teknis penting di dalam blok kode (markdown backticks).
- Jangan terlalu banyak basa-basi, langsung ke poin utamanya.`

// User-facing fallback texts
const (
	TextEmptyReply     = "Maaf, terjadi kesalahan koneksi."
	TextRequestFailed  = "Maaf, koneksi terputus."
	DefaultChatPrompt  = "Halo"
	DefaultImagePrompt = "Pemandangan indah"
	ImageReplyFormat   = "Ini adalah gambar untuk: **%s**"
	CodePlaceholder    = "[Kode]"
)

// ImageTriggers are the substrings that turn an input into an image request
var ImageTriggers = []string{"/img", "/foto", "/gambar", "buatkan gambar"}
