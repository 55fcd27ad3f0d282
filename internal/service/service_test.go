package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dotprompt/dotprompt/internal/builder"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func seedPrompt(t *testing.T, svc *Service, name, title, content string, defaults map[string]string) {
	t.Helper()
	cfg := builder.Config{
		Metadata: []builder.Entry{{Key: "name", Value: title}},
		Content:  content,
	}
	for key, value := range defaults {
		cfg.Defaults = append(cfg.Defaults, builder.Entry{Key: key, Value: value})
	}
	doc, err := builder.Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := svc.SavePrompt(name, doc); err != nil {
		t.Fatalf("SavePrompt failed: %v", err)
	}
}

func TestServiceListAndGet(t *testing.T) {
	svc := newTestService(t)
	seedPrompt(t, svc, "greet", "Greeting", "hello {who}", map[string]string{"who": "world"})
	seedPrompt(t, svc, "review", "Code Review", "review this: {code}", nil)

	entries, err := svc.ListPrompts()
	if err != nil {
		t.Fatalf("ListPrompts failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 prompts, got %d", len(entries))
	}

	entry, err := svc.GetPrompt("greet")
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if entry.Title != "Greeting" {
		t.Errorf("Title = %q", entry.Title)
	}

	if _, err := svc.GetPrompt("nope"); err == nil {
		t.Error("Expected error for unknown prompt")
	}
}

func TestServiceSearch(t *testing.T) {
	svc := newTestService(t)
	seedPrompt(t, svc, "greet", "Greeting", "hello", nil)
	seedPrompt(t, svc, "review", "Code Review", "review", nil)

	results, err := svc.SearchPrompts("rev")
	if err != nil {
		t.Fatalf("SearchPrompts failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected at least one match for 'rev'")
	}
	if results[0].Name != "review" {
		t.Errorf("Best match = %q, want 'review'", results[0].Name)
	}

	all, err := svc.SearchPrompts("")
	if err != nil {
		t.Fatalf("SearchPrompts with empty query failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Empty query must return everything, got %d", len(all))
	}
}

func TestServiceRenderPrompt(t *testing.T) {
	svc := newTestService(t)
	seedPrompt(t, svc, "greet", "Greeting", "hello {who}", map[string]string{"who": "world"})

	out, err := svc.RenderPrompt("greet", nil)
	if err != nil {
		t.Fatalf("RenderPrompt failed: %v", err)
	}
	if out != "hello world" {
		t.Errorf("Render = %q", out)
	}

	out, err = svc.RenderPrompt("greet", map[string]string{"who": "there"})
	if err != nil {
		t.Fatalf("RenderPrompt failed: %v", err)
	}
	if out != "hello there" {
		t.Errorf("Render with vars = %q", out)
	}
}

func TestServiceRenderFile(t *testing.T) {
	svc := newTestService(t)
	path := filepath.Join(t.TempDir(), "standalone.prompt")
	text := "[METADATA]\n@format_version 0.0.1\n[CONTENT]\nping {x}\n"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := svc.RenderFile(path, map[string]string{"x": "pong"})
	if err != nil {
		t.Fatalf("RenderFile failed: %v", err)
	}
	if out != "ping pong" {
		t.Errorf("Render = %q", out)
	}
}

func TestServiceValidateFile(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.prompt")
	os.WriteFile(good, []byte("[METADATA]\n@format_version 0.0.1\n[CONTENT]\nx\n"), 0644)
	report, err := svc.ValidateFile(good)
	if err != nil {
		t.Fatalf("ValidateFile failed: %v", err)
	}
	if !report.Valid {
		t.Errorf("Expected valid report, got %v", report.Errors)
	}

	bad := filepath.Join(dir, "bad.prompt")
	os.WriteFile(bad, []byte("[METADATA]\n@format_version 0.0.1\n"), 0644)
	report, err = svc.ValidateFile(bad)
	if err != nil {
		t.Fatalf("ValidateFile must not error on invalid documents: %v", err)
	}
	if report.Valid {
		t.Error("Expected invalid report")
	}

	if _, err := svc.ValidateFile(filepath.Join(dir, "missing.prompt")); err == nil {
		t.Error("Expected I/O error for missing file")
	}
}

func TestParseVarFlags(t *testing.T) {
	vars, err := ParseVarFlags([]string{"a=1", "b=x=y", "c="})
	if err != nil {
		t.Fatalf("ParseVarFlags failed: %v", err)
	}
	if vars["a"] != "1" || vars["b"] != "x=y" || vars["c"] != "" {
		t.Errorf("Unexpected vars: %v", vars)
	}

	for _, bad := range []string{"novalue", "=empty"} {
		if _, err := ParseVarFlags([]string{bad}); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
