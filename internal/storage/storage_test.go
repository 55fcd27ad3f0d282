package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dotprompt/dotprompt/internal/models"
)

const greetingPrompt = `[METADATA]
@format_version 0.0.1
@name Greeting
@description Says hello

[DEFAULTS]
@who world

[CONTENT]
hello {who}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "greeting.prompt", greetingPrompt)

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got, _ := doc.Metadata().Get("name"); got != "Greeting" {
		t.Errorf("Metadata name = %q", got)
	}
	if doc.Content() != "hello {who}" {
		t.Errorf("Content = %q", doc.Content())
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "missing.prompt")); err == nil {
		t.Error("Expected error for missing file")
	}

	broken := writeFile(t, dir, "broken.prompt", "[METADATA]\n@format_version 0.0.1\n")
	if _, err := LoadFile(broken); err == nil {
		t.Error("Expected parse error for broken file")
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	metadata := models.NewOrderedMap()
	metadata.Set(models.VersionKey, models.FormatVersion)
	doc := models.NewDocument(metadata, nil, "body text")

	path := filepath.Join(dir, "nested", "deep", "saved.prompt")
	if err := SaveFile(doc, path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile after save failed: %v", err)
	}
	if loaded.Content() != "body text" {
		t.Errorf("Content = %q", loaded.Content())
	}
}

func TestStorageDefaultRoot(t *testing.T) {
	t.Setenv("DOTPROMPT_DIR", "")
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	s, err := NewStorage("")
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if s.GetBaseDir() != filepath.Join(tmpHome, ".dotprompt") {
		t.Errorf("Default root = %q", s.GetBaseDir())
	}
}

func TestStorageEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOTPROMPT_DIR", dir)

	s, err := NewStorage("")
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if s.GetBaseDir() != dir {
		t.Errorf("Root = %q, want %q", s.GetBaseDir(), dir)
	}
}

func TestListPrompts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.prompt", greetingPrompt)
	writeFile(t, dir, "a.prompt", greetingPrompt)
	writeFile(t, dir, "notes.txt", "not a prompt")
	writeFile(t, dir, "broken.prompt", "no sections here")

	s, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	entries, err := s.ListPrompts()
	if err != nil {
		t.Fatalf("ListPrompts failed: %v", err)
	}

	// The broken file is skipped, the .txt ignored; results sort by name.
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "a" || entries[1].Name != "b" {
		t.Errorf("Unexpected order: %s, %s", entries[0].Name, entries[1].Name)
	}
	if entries[0].Title != "Greeting" {
		t.Errorf("Title = %q, want metadata name", entries[0].Title)
	}
	if entries[0].Description != "Says hello" {
		t.Errorf("Description = %q", entries[0].Description)
	}
}

func TestListPromptsMissingRoot(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	entries, err := s.ListPrompts()
	if err != nil {
		t.Fatalf("Missing root must not be an error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestSaveAndDeletePrompt(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}

	metadata := models.NewOrderedMap()
	metadata.Set(models.VersionKey, models.FormatVersion)
	doc := models.NewDocument(metadata, nil, "x")

	if err := s.SavePrompt("test", doc); err != nil {
		t.Fatalf("SavePrompt failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test.prompt")); err != nil {
		t.Fatalf("Prompt file not written: %v", err)
	}

	if err := s.DeletePrompt("test"); err != nil {
		t.Fatalf("DeletePrompt failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test.prompt")); !os.IsNotExist(err) {
		t.Error("Prompt file still exists after delete")
	}
}
