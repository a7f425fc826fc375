package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulasonat/EnglishLearningApp/internal/vocab"
)

func sampleEntries() []vocab.Entry {
	return []vocab.Entry{
		{Word: "serendipity", Definition: "a fortunate accident"},
		{Word: "ephemeral", Definition: "lasting a very short time"},
	}
}

func TestTargetPath(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "words.json", want: "words_filtered.json"},
		{src: "/data/movie.words.json", want: "/data/movie.words_filtered.json"},
		{src: "noext", want: "noext_filtered.json"},
	}

	for _, tt := range tests {
		if got := TargetPath(tt.src); got != tt.want {
			t.Errorf("TargetPath(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestExportRoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "words.json")

	path, err := Exporter{}.Export(sampleEntries(), src)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if path != filepath.Join(dir, "words_filtered.json") {
		t.Errorf("unexpected export path: %s", path)
	}

	list, err := vocab.Load(path)
	if err != nil {
		t.Fatalf("exported file does not load back: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", list.Len())
	}
	if list.Entries[0].Word != "serendipity" {
		t.Errorf("entry order changed: %q", list.Entries[0].Word)
	}
}

func TestExportOmitsKnownField(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "words.json")

	path, err := Exporter{}.Export(sampleEntries(), src)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if strings.Contains(string(data), "\"known\"") {
		t.Error("export must not carry the known flag")
	}
}

func TestExportEmptyList(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "words.json")

	path, err := Exporter{}.Export(nil, src)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected empty JSON array, got %q", string(data))
	}
}

func TestExportAvoidsClobbering(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "words.json")
	existing := filepath.Join(dir, "words_filtered.json")
	if err := os.WriteFile(existing, []byte("precious"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := Exporter{}.Export(sampleEntries(), src)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if path != filepath.Join(dir, "words_filtered_1.json") {
		t.Errorf("expected suffixed name, got %s", path)
	}

	kept, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(kept) != "precious" {
		t.Error("existing export was clobbered")
	}

	// a second collision moves to _2
	path2, err := Exporter{}.Export(sampleEntries(), src)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if path2 != filepath.Join(dir, "words_filtered_2.json") {
		t.Errorf("expected _2 suffix, got %s", path2)
	}
}

func TestExportOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "words.json")
	existing := filepath.Join(dir, "words_filtered.json")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := Exporter{Overwrite: true}.Export(sampleEntries(), src)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if path != existing {
		t.Errorf("overwrite must reuse the default name, got %s", path)
	}

	list, err := vocab.Load(path)
	if err != nil {
		t.Fatalf("overwritten export does not load: %v", err)
	}
	if list.Len() != 2 {
		t.Errorf("expected 2 entries after overwrite, got %d", list.Len())
	}
}

func TestExportLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "words.json")

	if _, err := (Exporter{}).Export(sampleEntries(), src); err != nil {
		t.Fatalf("Export error: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}
