package chat

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apierrors "github.com/diogo/sanai/internal/errors"
)

// MaxAttachmentSize is the largest image accepted for inline upload
const MaxAttachmentSize = 20 * 1024 * 1024

// Attachment is an image sent along with the next message
type Attachment struct {
	Name     string
	MimeType string
	Size     int
	DataURI  string
}

// LoadAttachment reads an image file and encodes it as a data URI
func LoadAttachment(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxAttachmentSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", apierrors.ErrTooLarge, filepath.Base(path), info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return NewAttachment(filepath.Base(path), data)
}

// NewAttachment builds an attachment from raw bytes, sniffing the MIME type
func NewAttachment(name string, data []byte) (*Attachment, error) {
	if len(data) > MaxAttachmentSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", apierrors.ErrTooLarge, name, len(data))
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s is %s", apierrors.ErrNotImage, name, mt.String())
	}

	return &Attachment{
		Name:     name,
		MimeType: mt.String(),
		Size:     len(data),
		DataURI:  "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// dataURI returns the attachment's data URI, or "" for a nil attachment
func (a *Attachment) dataURI() string {
	if a == nil {
		return ""
	}
	return a.DataURI
}
