// Package attach turns local files into attachment metadata. File content is
// only read to sniff the MIME type and never leaves this package.
package attach

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/models"
)

// sniffLen is the number of bytes http.DetectContentType considers
const sniffLen = 512

// FromPath stats path and describes it as an attachment
func FromPath(path string) (models.Attachment, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return models.Attachment{}, apierrors.NewValidationError("path", "file path is required")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Attachment{}, apierrors.NewNotFoundError("file", path)
		}
		return models.Attachment{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return models.Attachment{}, apierrors.NewValidationError("path", path+" is a directory")
	}

	mimeType, err := DetectMIME(path)
	if err != nil {
		return models.Attachment{}, err
	}

	return models.NewAttachment(filepath.Base(path), info.Size(), mimeType), nil
}

// DetectMIME resolves the MIME type of path from its extension, falling back
// to sniffing the first bytes of the file.
func DetectMIME(path string) (string, error) {
	if mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); mimeType != "" {
		return stripParams(mimeType), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if n == 0 {
		return "application/octet-stream", nil
	}

	return stripParams(http.DetectContentType(buf[:n])), nil
}

func stripParams(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx > 0 {
		return strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
