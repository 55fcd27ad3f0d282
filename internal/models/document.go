// Package models defines the immutable document model for parsed .prompt
// sources, the ordered key-value mapping backing its metadata and defaults
// sections, and the validation report structure.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// VersionKey is the canonical mandatory metadata key.
	VersionKey = "format_version"
	// VersionKeyAlias is accepted in place of VersionKey with a warning.
	VersionKeyAlias = "dotprompt_format_version"
	// FormatVersion is the current .prompt format revision.
	FormatVersion = "0.0.1"
)

// Document is the parsed representation of one .prompt source: an ordered
// metadata mapping, an ordered defaults mapping, and the raw content text.
// A Document is created once (by parse, the builder, or JSON import) and is
// immutable afterwards; accessors return copies.
type Document struct {
	metadata *OrderedMap
	defaults *OrderedMap
	content  string
	warnings []Issue
}

// NewDocument constructs a Document from its three parts. The maps are
// cloned, so later mutation of the arguments does not affect the Document.
// Nil maps are treated as empty.
func NewDocument(metadata, defaults *OrderedMap, content string) *Document {
	if metadata == nil {
		metadata = NewOrderedMap()
	}
	if defaults == nil {
		defaults = NewOrderedMap()
	}
	return &Document{
		metadata: metadata.Clone(),
		defaults: defaults.Clone(),
		content:  content,
	}
}

// WithWarnings returns a copy of the Document carrying the parse-time
// warnings collected while it was built. Used by the parser only.
func (d *Document) WithWarnings(warnings []Issue) *Document {
	clone := *d
	clone.warnings = append([]Issue(nil), warnings...)
	return &clone
}

// Metadata returns a copy of the metadata mapping.
func (d *Document) Metadata() *OrderedMap {
	return d.metadata.Clone()
}

// Defaults returns a copy of the defaults mapping.
func (d *Document) Defaults() *OrderedMap {
	return d.defaults.Clone()
}

// Content returns the content section text.
func (d *Document) Content() string {
	return d.content
}

// Warnings returns the non-fatal issues recorded while parsing this
// document, in source order. Empty for documents built programmatically.
func (d *Document) Warnings() []Issue {
	return append([]Issue(nil), d.warnings...)
}

// Version returns the document's format version and the metadata key it was
// declared under (VersionKey, VersionKeyAlias, or "" when absent).
func (d *Document) Version() (value, key string) {
	if v, ok := d.metadata.Get(VersionKey); ok {
		return v, VersionKey
	}
	if v, ok := d.metadata.Get(VersionKeyAlias); ok {
		return v, VersionKeyAlias
	}
	return "", ""
}

// Text serializes the document back to canonical .prompt text. Multi-line
// values are emitted in the `@key >` continuation form. Comments from the
// original source are not preserved.
func (d *Document) Text() string {
	var b strings.Builder
	b.WriteString("[METADATA]\n")
	b.WriteString(serializeSection(d.metadata))
	if d.defaults.Len() > 0 {
		b.WriteString("\n\n[DEFAULTS]\n")
		b.WriteString(serializeSection(d.defaults))
	}
	b.WriteString("\n\n[CONTENT]\n")
	b.WriteString(d.content)
	return b.String()
}

// MetadataText returns only the [METADATA] section as text.
func (d *Document) MetadataText() string {
	return "[METADATA]\n" + serializeSection(d.metadata)
}

// DefaultsText returns only the [DEFAULTS] section as text, or "" when the
// document has no defaults.
func (d *Document) DefaultsText() string {
	if d.defaults.Len() == 0 {
		return ""
	}
	return "[DEFAULTS]\n" + serializeSection(d.defaults)
}

// ContentText returns only the [CONTENT] section as text.
func (d *Document) ContentText() string {
	return "[CONTENT]\n" + d.content
}

func serializeSection(section *OrderedMap) string {
	var lines []string
	for _, key := range section.Keys() {
		value, _ := section.Get(key)
		if strings.Contains(value, "\n") {
			lines = append(lines, "@"+key+" >")
			for _, line := range strings.Split(value, "\n") {
				lines = append(lines, "  "+line)
			}
		} else {
			lines = append(lines, "@"+key+" "+value)
		}
	}
	return strings.Join(lines, "\n")
}

// documentJSON is the interchange shape shared by JSON and YAML encoding.
type documentJSON struct {
	Metadata *OrderedMap `json:"metadata" yaml:"metadata"`
	Defaults *OrderedMap `json:"defaults" yaml:"defaults"`
	Content  string      `json:"content" yaml:"content"`
}

// MarshalJSON emits the document as a JSON object with metadata, defaults
// (null when empty), and content fields.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{Metadata: d.metadata, Content: d.content}
	if d.defaults.Len() > 0 {
		out.Defaults = d.defaults
	}
	return json.Marshal(out)
}

// MarshalYAML emits the same shape as MarshalJSON for YAML encoders.
func (d *Document) MarshalYAML() (interface{}, error) {
	out := map[string]interface{}{
		"metadata": d.metadata,
		"content":  d.content,
	}
	if d.defaults.Len() > 0 {
		out["defaults"] = d.defaults
	} else {
		out["defaults"] = nil
	}
	return out, nil
}

// ParseJSON builds a Document from its JSON interchange form. Metadata and
// content must be present, and metadata must carry the version field.
func ParseJSON(data []byte) (*Document, error) {
	var raw struct {
		Metadata *OrderedMap     `json:"metadata"`
		Defaults *OrderedMap     `json:"defaults"`
		Content  json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid document JSON: %w", err)
	}
	if raw.Metadata == nil {
		return nil, fmt.Errorf("invalid document JSON: missing 'metadata'")
	}
	if raw.Content == nil {
		return nil, fmt.Errorf("invalid document JSON: missing 'content'")
	}
	var content string
	if err := json.Unmarshal(raw.Content, &content); err != nil {
		return nil, fmt.Errorf("invalid document JSON: 'content' must be a string: %w", err)
	}
	if !raw.Metadata.Has(VersionKey) && !raw.Metadata.Has(VersionKeyAlias) {
		return nil, fmt.Errorf("invalid document JSON: metadata is missing %q", VersionKey)
	}
	return NewDocument(raw.Metadata, raw.Defaults, content), nil
}
