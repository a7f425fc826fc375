package clipboard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

const importName = "clipboard.json"

// ReadAll returns the clipboard's text content.
func ReadAll() (string, error) {
	return clipboard.ReadAll()
}

// WriteAll puts text on the clipboard.
func WriteAll(text string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	return clipboard.WriteAll(text)
}

// ImportFile is a vocabulary file materialized from the clipboard. The
// session removes it when it ends unless Keep was called first.
type ImportFile struct {
	Path string
	keep bool
}

// Import writes the clipboard's content to clipboard.json under dir and
// returns a handle to the new file.
func Import(dir string) (*ImportFile, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("clipboard is empty")
	}

	path := filepath.Join(dir, importName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write clipboard file: %w", err)
	}
	return &ImportFile{Path: path}, nil
}

// Keep leaves the file on disk after the session.
func (f *ImportFile) Keep() {
	f.keep = true
}

// Remove deletes the file unless it was kept. Removing twice is fine.
func (f *ImportFile) Remove() error {
	if f == nil || f.keep {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove clipboard file: %w", err)
	}
	return nil
}
