package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulasonat/EnglishLearningApp/internal/vocab"
)

const nameSuffix = "_filtered"

// Exporter writes review results next to the source vocabulary file.
type Exporter struct {
	// Overwrite replaces an existing export instead of picking a free name.
	Overwrite bool
}

// TargetPath returns the default export path for a vocabulary file.
func TargetPath(srcPath string) string {
	ext := filepath.Ext(srcPath)
	return strings.TrimSuffix(srcPath, ext) + nameSuffix + ".json"
}

// Export writes entries as indented JSON and returns the path it wrote.
// An empty list still produces a valid JSON array.
func (e Exporter) Export(entries []vocab.Entry, srcPath string) (string, error) {
	if entries == nil {
		entries = []vocab.Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	data = append(data, '\n')

	target := TargetPath(srcPath)
	if !e.Overwrite {
		target = freeName(target)
	}

	if err := writeFileAtomic(target, data, 0o644); err != nil {
		return "", err
	}
	return target, nil
}

// freeName resolves collisions by appending _1, _2, ... before the
// extension, falling back to a timestamp when everything is taken.
func freeName(target string) string {
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return target
	}

	ext := filepath.Ext(target)
	base := strings.TrimSuffix(target, ext)

	const maxAttempts = 1000
	for i := 1; i <= maxAttempts; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
	return fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext)
}

// writeFileAtomic writes data through a temp file in the target directory
// so a crash never leaves a half-written export behind.
func writeFileAtomic(destPath string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(destPath)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	_ = os.Chmod(tmpName, perm)

	if err := os.Rename(tmpName, destPath); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}
