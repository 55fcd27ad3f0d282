// Package storage is the file-system shim around the parsing engine: it
// reads and writes .prompt files and lists the prompt library directory.
// The engine itself never touches the file system.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dotprompt/dotprompt/internal/models"
	"github.com/dotprompt/dotprompt/internal/parser"
)

// Ext is the file extension for prompt documents.
const Ext = ".prompt"

// Entry is one prompt in the library listing.
type Entry struct {
	Name        string // file name without extension
	Path        string // path relative to the library root
	Title       string // @name metadata when present, else Name
	Description string // @description metadata, first line
	Doc         *models.Document
}

// Storage handles all file system operations for a prompt library.
type Storage struct {
	rootPath string
}

// NewStorage creates a storage instance rooted at rootPath. When rootPath is
// empty the DOTPROMPT_DIR environment variable is consulted, then
// ~/.dotprompt.
func NewStorage(rootPath string) (*Storage, error) {
	if rootPath == "" {
		rootPath = os.Getenv("DOTPROMPT_DIR")
	}
	if rootPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		rootPath = filepath.Join(homeDir, ".dotprompt")
	}
	return &Storage{rootPath: rootPath}, nil
}

// InitLibrary creates the library directory.
func (s *Storage) InitLibrary() error {
	if err := os.MkdirAll(s.rootPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.rootPath, err)
	}
	return nil
}

// GetBaseDir returns the root path of the library.
func (s *Storage) GetBaseDir() string {
	return s.rootPath
}

// LoadPrompt loads and parses a .prompt file relative to the library root.
func (s *Storage) LoadPrompt(path string) (*models.Document, error) {
	return LoadFile(filepath.Join(s.rootPath, path))
}

// SavePrompt serializes a document under the library root. The .prompt
// extension is appended when name does not already carry it.
func (s *Storage) SavePrompt(name string, doc *models.Document) error {
	if !strings.HasSuffix(name, Ext) {
		name += Ext
	}
	return SaveFile(doc, filepath.Join(s.rootPath, name))
}

// DeletePrompt removes a prompt file from the library.
func (s *Storage) DeletePrompt(name string) error {
	if !strings.HasSuffix(name, Ext) {
		name += Ext
	}
	if err := os.Remove(filepath.Join(s.rootPath, name)); err != nil {
		return fmt.Errorf("failed to delete prompt file: %w", err)
	}
	return nil
}

// ListPrompts walks the library root for .prompt files, parses each, and
// returns entries sorted by name. Files that fail to parse are skipped with
// a warning on stderr so one broken file does not hide the rest.
func (s *Storage) ListPrompts() ([]*Entry, error) {
	var entries []*Entry
	err := filepath.Walk(s.rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), Ext) {
			return nil
		}
		doc, err := LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", path, err)
			return nil
		}
		rel, err := filepath.Rel(s.rootPath, path)
		if err != nil {
			rel = path
		}
		entries = append(entries, newEntry(rel, doc))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func newEntry(rel string, doc *models.Document) *Entry {
	name := strings.TrimSuffix(filepath.Base(rel), Ext)
	entry := &Entry{Name: name, Path: rel, Title: name, Doc: doc}
	metadata := doc.Metadata()
	if title, ok := metadata.Get("name"); ok && title != "" {
		entry.Title = title
	}
	if desc, ok := metadata.Get("description"); ok {
		entry.Description = strings.SplitN(desc, "\n", 2)[0]
	}
	return entry
}

// ReadText reads a file as UTF-8 text.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return string(data), nil
}

// LoadFile reads and parses a .prompt file at an arbitrary path.
func LoadFile(path string) (*models.Document, error) {
	text, err := ReadText(path)
	if err != nil {
		return nil, err
	}
	doc, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// SaveFile serializes a document to an arbitrary path, creating parent
// directories as needed. Output ends with a trailing newline.
func SaveFile(doc *models.Document, path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(doc.Text()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write prompt file: %w", err)
	}
	return nil
}
