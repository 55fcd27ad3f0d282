// Package service ties the engine packages together for the CLI and TUI:
// library listing and search, lookups by name, rendering, and validation.
package service

import (
	"fmt"
	"strings"

	"github.com/dotprompt/dotprompt/internal/errors"
	"github.com/dotprompt/dotprompt/internal/models"
	"github.com/dotprompt/dotprompt/internal/renderer"
	"github.com/dotprompt/dotprompt/internal/storage"
	"github.com/dotprompt/dotprompt/internal/validation"

	"github.com/sahilm/fuzzy"
)

// Service provides prompt library operations over a storage root.
type Service struct {
	storage *storage.Storage
}

// NewService creates a service for the library at dir. An empty dir resolves
// through DOTPROMPT_DIR and then ~/.dotprompt.
func NewService(dir string) (*Service, error) {
	store, err := storage.NewStorage(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return &Service{storage: store}, nil
}

// InitLibrary creates the library directory.
func (s *Service) InitLibrary() error {
	return s.storage.InitLibrary()
}

// BaseDir returns the library root path.
func (s *Service) BaseDir() string {
	return s.storage.GetBaseDir()
}

// ListPrompts returns all parseable prompts in the library, sorted by name.
func (s *Service) ListPrompts() ([]*storage.Entry, error) {
	return s.storage.ListPrompts()
}

// SearchPrompts fuzzy-matches query against prompt names, titles, and
// descriptions. An empty query returns the whole library.
func (s *Service) SearchPrompts(query string) ([]*storage.Entry, error) {
	entries, err := s.ListPrompts()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return entries, nil
	}

	var searchStrings []string
	for _, e := range entries {
		searchStrings = append(searchStrings, fmt.Sprintf("%s %s %s", e.Name, e.Title, e.Description))
	}
	matches := fuzzy.Find(query, searchStrings)

	var results []*storage.Entry
	for _, match := range matches {
		results = append(results, entries[match.Index])
	}
	return results, nil
}

// GetPrompt returns a library prompt by its file name (without extension).
func (s *Service) GetPrompt(name string) (*storage.Entry, error) {
	entries, err := s.ListPrompts()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, errors.NotFoundError(fmt.Sprintf("prompt '%s'", name))
}

// SavePrompt stores a document in the library under name.
func (s *Service) SavePrompt(name string, doc *models.Document) error {
	return s.storage.SavePrompt(name, doc)
}

// DeletePrompt removes a library prompt by name.
func (s *Service) DeletePrompt(name string) error {
	return s.storage.DeletePrompt(name)
}

// RenderPrompt renders a library prompt with the supplied variables.
func (s *Service) RenderPrompt(name string, vars map[string]string) (string, error) {
	entry, err := s.GetPrompt(name)
	if err != nil {
		return "", err
	}
	return renderer.Render(entry.Doc, vars), nil
}

// RenderFile parses and renders a .prompt file at an arbitrary path.
func (s *Service) RenderFile(path string, vars map[string]string) (string, error) {
	doc, err := storage.LoadFile(path)
	if err != nil {
		return "", err
	}
	return renderer.Render(doc, vars), nil
}

// ValidateFile validates a .prompt file and returns the report. I/O failures
// are the only way this returns an error; malformed documents come back as
// invalid reports.
func (s *Service) ValidateFile(path string) (*models.Report, error) {
	text, err := storage.ReadText(path)
	if err != nil {
		return nil, err
	}
	return validation.ValidateText(text), nil
}

// ParseVarFlags turns k=v pairs from the command line into a variable map.
func ParseVarFlags(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.NewAppError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("invalid variable %q, expected key=value", pair))
		}
		vars[key] = value
	}
	return vars, nil
}
