package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apierrors "github.com/diogo/sanai/internal/errors"
	"github.com/diogo/sanai/internal/models"
)

// ImageURL builds the image service URL that renders prompt with the given seed.
// The service generates the picture lazily when the URL is first fetched.
func (c *Client) ImageURL(prompt string, seed int) string {
	return fmt.Sprintf("%s%s?model=%s&seed=%d&nologo=true&width=%d&height=%d",
		c.imageURL,
		url.PathEscape(prompt),
		models.ImageModel,
		seed,
		models.ImageWidth,
		models.ImageHeight,
	)
}

// DownloadImage saves an image reference to dir and returns the absolute path.
// Remote URLs are fetched; data URIs are decoded in place.
func (c *Client) DownloadImage(ctx context.Context, imageURL, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apierrors.NewDownloadError("failed to create directory: "+err.Error(), imageURL)
	}

	var (
		data        []byte
		contentType string
		title       string
	)

	if strings.HasPrefix(imageURL, "data:") {
		mimeType, payload, err := ParseDataURI(imageURL)
		if err != nil {
			return "", apierrors.NewDownloadError(err.Error(), "data URI")
		}
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", apierrors.NewDownloadError("invalid base64 payload", "data URI")
		}
		contentType = mimeType
		title = "attachment"
	} else {
		var err error
		data, contentType, err = c.fetchImage(ctx, imageURL)
		if err != nil {
			return "", err
		}
		title = promptFromImageURL(imageURL)
	}

	destPath := filepath.Join(dir, generateFilename(title, contentType))
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", apierrors.NewDownloadError("failed to save file: "+err.Error(), imageURL)
	}

	c.log.WithField("path", destPath).WithField("bytes", len(data)).Info("image saved")

	absPath, err := filepath.Abs(destPath)
	if err != nil {
		return destPath, nil
	}
	return absPath, nil
}

func (c *Client) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", apierrors.NewDownloadError("failed to create request: "+err.Error(), imageURL)
	}
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", transportError(ctx, "download image", imageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != fhttp.StatusOK {
		return nil, "", apierrors.NewDownloadErrorWithStatus(imageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apierrors.NewDownloadError("failed to read response: "+err.Error(), imageURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		// a missing or generic header falls back to the bytes themselves
		contentType = mimetype.Detect(body).String()
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", apierrors.NewDownloadError("response is not an image: "+contentType, imageURL)
	}
	return body, contentType, nil
}

// promptFromImageURL recovers the prompt segment of an image service URL
func promptFromImageURL(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	return filepath.Base(u.Path)
}

// maxTitleRunes caps the prompt part of a saved image name
const maxTitleRunes = 50

// generateFilename names a saved image after its prompt. The random suffix
// keeps two saves within the same second apart.
func generateFilename(title, contentType string) string {
	ext := ".jpg"
	switch {
	case strings.Contains(contentType, "png"):
		ext = ".png"
	case strings.Contains(contentType, "gif"):
		ext = ".gif"
	case strings.Contains(contentType, "webp"):
		ext = ".webp"
	}

	stamp := time.Now().Format("20060102_150405") + "_" + uuid.NewString()[:8]
	safe := truncateRunes(sanitizeFilename(title), maxTitleRunes)
	if safe == "" || safe == "." || safe == "/" {
		return fmt.Sprintf("image_%s%s", stamp, ext)
	}
	return fmt.Sprintf("%s_%s%s", safe, stamp, ext)
}

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\s]+`)

// sanitizeFilename removes invalid characters from filenames
func sanitizeFilename(name string) string {
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
