// Package renderer turns a document's content into final prompt text.
//
// Rendering is three ordered transformations over the whole content string:
// comment removal, {{literal}} brace reduction, and {variable} substitution.
// The last two share one left-to-right scan so that text produced by brace
// reduction can never be picked up again as a placeholder, and substituted
// values are never re-expanded. Rendering is total: unresolved placeholders
// pass through verbatim.
package renderer

import (
	"sort"
	"strings"

	"github.com/dotprompt/dotprompt/internal/models"
	"github.com/dotprompt/dotprompt/internal/parser"
)

// Renderer renders one document. It borrows the document read-only; a
// Renderer may be used from multiple goroutines.
type Renderer struct {
	defaults *models.OrderedMap
	content  string
}

// NewRenderer creates a renderer for the given document.
func NewRenderer(doc *models.Document) *Renderer {
	return &Renderer{
		defaults: doc.Defaults(),
		content:  doc.Content(),
	}
}

// Render produces the final prompt text. External values take precedence
// over the document's defaults; placeholders resolved by neither are left
// verbatim. Identical document and vars always yield identical output.
func (r *Renderer) Render(vars map[string]string) string {
	text, _ := parser.StripComments(r.content)
	return r.substitute(text, vars)
}

// Render is a convenience wrapper over NewRenderer(doc).Render(vars).
func Render(doc *models.Document, vars map[string]string) string {
	return NewRenderer(doc).Render(vars)
}

// ListVariables returns the sorted set of placeholder names referenced in
// the document's content. Literal-brace text is not a reference and is not
// included.
func ListVariables(doc *models.Document) []string {
	text, _ := parser.StripComments(doc.Content())
	set := make(map[string]bool)
	scan(text, func(name string) (string, bool) {
		set[name] = true
		return "", false
	})
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VariableInfo describes one placeholder and its default, if any.
type VariableInfo struct {
	Name         string `json:"name" yaml:"name"`
	HasDefault   bool   `json:"has_default" yaml:"has_default"`
	DefaultValue string `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

// VariablesInfo returns, for every placeholder in the content, whether the
// document declares a default for it and what that default is. Sorted by
// name.
func VariablesInfo(doc *models.Document) []VariableInfo {
	defaults := doc.Defaults()
	names := ListVariables(doc)
	info := make([]VariableInfo, 0, len(names))
	for _, name := range names {
		value, ok := defaults.Get(name)
		info = append(info, VariableInfo{Name: name, HasDefault: ok, DefaultValue: value})
	}
	return info
}

// substitute reduces literal braces and resolves placeholders in one pass.
func (r *Renderer) substitute(text string, vars map[string]string) string {
	return scan(text, func(name string) (string, bool) {
		if value, ok := vars[name]; ok {
			return value, true
		}
		if value, ok := r.defaults.Get(name); ok {
			return value, true
		}
		return "", false
	})
}

// scan walks text left to right. A {{text}} span is emitted as {text} with
// its interior untouched. A {name} span whose name is key-syntax valid is
// handed to resolve; when resolve declines, the placeholder stays verbatim.
// Substituted values are appended to the output without rescanning, which
// makes substitution non-recursive and guarantees termination.
func scan(text string, resolve func(name string) (string, bool)) string {
	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			b.WriteString(text[i:])
			break
		}
		open += i
		b.WriteString(text[i:open])

		if strings.HasPrefix(text[open:], "{{") {
			end := strings.Index(text[open+2:], "}}")
			if end < 0 {
				// Unbalanced literal brace: leave the rest untouched.
				b.WriteString(text[open:])
				break
			}
			b.WriteByte('{')
			b.WriteString(text[open+2 : open+2+end])
			b.WriteByte('}')
			i = open + 2 + end + 2
			continue
		}

		end := strings.IndexByte(text[open+1:], '}')
		if end < 0 {
			b.WriteString(text[open:])
			break
		}
		name := text[open+1 : open+1+end]
		if parser.IsValidName(name) {
			if value, ok := resolve(name); ok {
				b.WriteString(value)
			} else {
				b.WriteString(text[open : open+1+end+1])
			}
			i = open + 1 + end + 1
			continue
		}
		// Not a placeholder; emit the brace and keep scanning after it.
		b.WriteByte('{')
		i = open + 1
	}
	return b.String()
}
