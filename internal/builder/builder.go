// Package builder constructs documents programmatically. Instead of a
// mutable fluent chain, callers fill in an explicit Config value and Build
// turns it into an immutable document; serialization back to .prompt text is
// Document.Text.
package builder

import (
	"fmt"
	"strings"

	"github.com/dotprompt/dotprompt/internal/errors"
	"github.com/dotprompt/dotprompt/internal/models"
	"github.com/dotprompt/dotprompt/internal/parser"
)

// Entry is one key-value pair. Slices of entries keep section order explicit
// and deterministic.
type Entry struct {
	Key   string
	Value string
}

// Config describes a document to build. The zero value plus Content is the
// minimal useful configuration; the version field is seeded automatically
// when absent.
type Config struct {
	Metadata []Entry
	Defaults []Entry
	Content  string
}

// Build validates the configuration and produces a document. Content must be
// non-empty after trimming; keys must be well-formed and unique within their
// section.
func Build(cfg Config) (*models.Document, error) {
	content := strings.TrimSpace(cfg.Content)
	if content == "" {
		return nil, errors.NewAppError(errors.ErrCodeInvalidInput, "document content must not be empty")
	}

	metadata, err := buildSection("[METADATA]", cfg.Metadata)
	if err != nil {
		return nil, err
	}
	if !metadata.Has(models.VersionKey) && !metadata.Has(models.VersionKeyAlias) {
		// Seed the mandatory version field, keeping it first in the section.
		seeded := models.NewOrderedMap()
		seeded.Set(models.VersionKey, models.FormatVersion)
		for _, key := range metadata.Keys() {
			value, _ := metadata.Get(key)
			seeded.Set(key, value)
		}
		metadata = seeded
	}

	defaults, err := buildSection("[DEFAULTS]", cfg.Defaults)
	if err != nil {
		return nil, err
	}

	return models.NewDocument(metadata, defaults, content), nil
}

// Text builds the document and serializes it to canonical .prompt text.
func Text(cfg Config) (string, error) {
	doc, err := Build(cfg)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

func buildSection(section string, entries []Entry) (*models.OrderedMap, error) {
	m := models.NewOrderedMap()
	for _, entry := range entries {
		if !parser.IsValidName(entry.Key) {
			return nil, errors.NewAppError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("invalid key %q in %s", entry.Key, section))
		}
		if m.Has(entry.Key) {
			return nil, errors.NewAppError(errors.ErrCodeDuplicateKey,
				fmt.Sprintf("duplicate key @%s in %s", entry.Key, section))
		}
		m.Set(entry.Key, strings.TrimSpace(entry.Value))
	}
	return m, nil
}
