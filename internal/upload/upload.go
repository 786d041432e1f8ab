// Package upload stores listing images on the local filesystem.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Upload errors.
var (
	ErrUnsupportedType = errors.New("only png, jpg, jpeg and gif images are allowed")
	ErrTooLarge        = errors.New("image exceeds maximum upload size")
	ErrInvalidRef      = errors.New("invalid image reference")
)

// allowedExtensions is the image allow-list, matched case-insensitively.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

const maxBaseNameLength = 100

// Store writes uploaded images under a single directory.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates dir if needed. maxSize <= 0 disables the size check.
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// AllowedExtension reports whether name has an allowed image extension.
func AllowedExtension(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// SanitizeFilename reduces a client-supplied name to its base name made of
// letters, digits, dot, underscore and hyphen.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	clean := strings.TrimLeft(b.String(), ".")
	if len(clean) > maxBaseNameLength {
		ext := filepath.Ext(clean)
		clean = clean[:maxBaseNameLength-len(ext)] + ext
	}
	return clean
}

// Save copies r to a new file named after originalName and returns the
// stored reference. The reference is unique per call.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	if !AllowedExtension(originalName) {
		return "", ErrUnsupportedType
	}

	clean := SanitizeFilename(originalName)
	if !AllowedExtension(clean) {
		return "", ErrUnsupportedType
	}
	ref := strings.ToLower(ulid.Make().String()) + "_" + clean

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op after rename
	}()

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	n, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		return "", ErrTooLarge
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, ref)); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	return ref, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *Store) Remove(ref string) error {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return ErrInvalidRef
	}

	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
