package clipboard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestImportFileRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, importName)
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &ImportFile{Path: path}
	if err := f.Remove(); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after Remove")
	}

	// removing again is a no-op
	if err := f.Remove(); err != nil {
		t.Errorf("second Remove error: %v", err)
	}
}

func TestImportFileKeep(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, importName)
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &ImportFile{Path: path}
	f.Keep()
	if err := f.Remove(); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("kept file was removed")
	}
}

func TestImportRoundTrip(t *testing.T) {
	const payload = `[{"word":"serendipity","definition":"a fortunate accident"}]`
	if err := WriteAll(payload); err != nil {
		t.Skipf("no clipboard available: %v", err)
	}

	f, err := Import(t.TempDir())
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	defer func() { _ = f.Remove() }()

	data, err := os.ReadFile(f.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != payload {
		t.Errorf("imported content differs: %q", string(data))
	}
	if filepath.Base(f.Path) != importName {
		t.Errorf("unexpected import name: %s", f.Path)
	}
}
