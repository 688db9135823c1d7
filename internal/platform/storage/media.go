package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported file type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Media stores uploaded files under a base directory.
type Media struct {
	BaseDir string
}

func NewMedia(baseDir string) *Media {
	return &Media{BaseDir: baseDir}
}

// SaveImage sniffs the content type of r, rejects anything that is not an
// image, and writes it to folder under a random name. The returned path is
// relative to BaseDir.
func (m *Media) SaveImage(folder string, r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	dir := filepath.Join(m.BaseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	_, err = out.Write(head)
	if err == nil {
		_, err = io.Copy(out, r)
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return filepath.ToSlash(filepath.Join(folder, name)), nil
}

// Open returns the file at a path previously returned by SaveImage.
func (m *Media) Open(rel string) (*os.File, error) {
	clean := filepath.Clean("/" + rel)
	if strings.Contains(clean, "..") {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(m.BaseDir, clean))
}

func (m *Media) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	clean := filepath.Clean("/" + rel)
	err := os.Remove(filepath.Join(m.BaseDir, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
