// Package parser turns raw .prompt text into the immutable document model.
//
// Parsing is a deterministic, line-oriented state machine: each physical line
// is comment-stripped and classified, then fed through the section state
// machine that enforces [METADATA] -> [DEFAULTS] (optional) -> [CONTENT]
// order and builds the ordered key-value mappings. Structural problems are
// fatal and abort Parse; malformed entry lines and unterminated comments are
// collected as warnings on the resulting document instead.
package parser

import (
	"strings"

	"github.com/dotprompt/dotprompt/internal/errors"
	"github.com/dotprompt/dotprompt/internal/models"
)

// Result is the best-effort outcome of a parse. Fatal errors do not stop the
// scan, so a Result can carry both partial section data and the full list of
// structural errors; the validator uses this to diagnose broken sources.
type Result struct {
	Metadata   *models.OrderedMap
	Defaults   *models.OrderedMap
	Content    string
	HasContent bool
	Warnings   []models.Issue
	Errors     []*errors.AppError
}

// Document converts the result into an immutable Document. Only valid when
// Errors is empty and HasContent is true.
func (r *Result) Document() *models.Document {
	return models.NewDocument(r.Metadata, r.Defaults, r.Content).WithWarnings(r.Warnings)
}

// Parse parses .prompt text into a Document. The first structural error is
// returned as an *errors.AppError; non-fatal problems are recorded as
// warnings on the document.
func Parse(text string) (*models.Document, error) {
	result := Scan(text)
	if len(result.Errors) > 0 {
		return nil, result.Errors[0]
	}
	return result.Document(), nil
}

// Scan runs the full line-oriented state machine over text and returns
// everything it found, continuing past structural errors. Most callers want
// Parse; the validator uses Scan directly for best-effort diagnostics.
func Scan(text string) *Result {
	s := &scanState{
		result: &Result{
			Metadata: models.NewOrderedMap(),
			Defaults: models.NewOrderedMap(),
		},
	}

	normalized := NormalizeNewlines(text)
	if strings.TrimSpace(normalized) == "" {
		s.fatal(errors.ParseError(errors.ErrCodeEmptyDocument, 0, "document is empty"))
		return s.result
	}

	lines := splitLines(normalized)
	for i, raw := range lines {
		lineNo := i + 1
		if s.section == sectionContent {
			s.contentLine(raw, lineNo)
			continue
		}
		clean, unterminated := stripLineComments(raw)
		if unterminated {
			s.warn(errors.ErrCodeUnterminatedComment, lineNo, "comment opened with (% is never closed")
		}
		s.consume(classify(strings.TrimSpace(clean), lineNo))
	}
	s.flushEntry()
	s.finishContent()

	if !s.seen(sectionContent) {
		s.fatal(errors.ParseError(errors.ErrCodeMissingContentSection, 0, "missing required section [CONTENT]"))
	}
	s.result.HasContent = s.seen(sectionContent)
	return s.result
}

type sectionID int

const (
	sectionNone sectionID = iota
	sectionMetadata
	sectionDefaults
	sectionContent
)

func sectionFor(header string) sectionID {
	switch header {
	case headerMetadata:
		return sectionMetadata
	case headerDefaults:
		return sectionDefaults
	default:
		return sectionContent
	}
}

type scanState struct {
	result  *Result
	section sectionID
	opened  map[sectionID]bool

	// Multi-line entry accumulation (`@key >` form).
	pendingKey     string
	pendingSection sectionID
	pendingLine    int
	pendingParts   []string

	contentLines     []string
	contentFirstLine int
	preambleFlagged  bool
}

func (s *scanState) fatal(err *errors.AppError) {
	s.result.Errors = append(s.result.Errors, err)
}

func (s *scanState) warn(code errors.ErrorCode, line int, message string) {
	s.result.Warnings = append(s.result.Warnings, models.Issue{Code: code, Message: message, Line: line})
}

func (s *scanState) seen(id sectionID) bool {
	return s.opened[id]
}

func (s *scanState) markSeen(id sectionID) {
	if s.opened == nil {
		s.opened = make(map[sectionID]bool)
	}
	s.opened[id] = true
}

// consume advances the state machine by one classified line. Only called
// outside the content section.
func (s *scanState) consume(tok token) {
	switch tok.kind {
	case lineBlank:
		return

	case lineHeader:
		s.flushEntry()
		s.openSection(sectionFor(tok.section), tok)

	case lineUnknownHeader:
		s.fatal(errors.ParseError(errors.ErrCodeUnknownSection, tok.line, "unknown section header %s", tok.text))

	case lineEntry:
		if !s.inEntrySection(tok.line) {
			return
		}
		s.flushEntry()
		if tok.value == ">" {
			s.pendingKey = tok.key
			s.pendingSection = s.section
			s.pendingLine = tok.line
			s.pendingParts = nil
			return
		}
		s.insertEntry(s.section, tok.key, tok.value, tok.line)

	case lineOther:
		if !s.inEntrySection(tok.line) {
			return
		}
		if s.pendingKey != "" && !strings.HasPrefix(tok.text, "@") {
			s.pendingParts = append(s.pendingParts, tok.text)
			return
		}
		s.warn(errors.ErrCodeMalformedEntry, tok.line, "invalid line in "+s.sectionName()+": "+tok.text)
	}
}

// inEntrySection reports whether an entry or continuation line arrived inside
// [METADATA] or [DEFAULTS]. Text before the first section header is a fatal
// error, reported once.
func (s *scanState) inEntrySection(line int) bool {
	if s.section == sectionMetadata || s.section == sectionDefaults {
		return true
	}
	if !s.preambleFlagged {
		s.preambleFlagged = true
		s.fatal(errors.ParseError(errors.ErrCodeContentBeforeMetadata, line, "content before the [METADATA] header"))
	}
	return false
}

func (s *scanState) sectionName() string {
	if s.section == sectionDefaults {
		return headerDefaults
	}
	return headerMetadata
}

func (s *scanState) openSection(id sectionID, tok token) {
	if s.seen(id) {
		s.fatal(errors.ParseError(errors.ErrCodeDuplicateSection, tok.line, "duplicate section %s", tok.section))
		return
	}
	switch id {
	case sectionMetadata:
		if s.section != sectionNone {
			s.fatal(errors.ParseError(errors.ErrCodeInvalidSectionOrder, tok.line, "[METADATA] must be the first section"))
		}
	case sectionDefaults:
		if !s.seen(sectionMetadata) || s.seen(sectionContent) {
			s.fatal(errors.ParseError(errors.ErrCodeInvalidSectionOrder, tok.line, "[DEFAULTS] must appear between [METADATA] and [CONTENT]"))
		}
	case sectionContent:
		if !s.seen(sectionMetadata) {
			s.fatal(errors.ParseError(errors.ErrCodeInvalidSectionOrder, tok.line, "[CONTENT] must follow [METADATA]"))
		}
		s.contentFirstLine = tok.line + 1
	}
	s.markSeen(id)
	s.section = id
}

func (s *scanState) insertEntry(id sectionID, key, value string, line int) {
	target := s.result.Metadata
	section := headerMetadata
	if id == sectionDefaults {
		target = s.result.Defaults
		section = headerDefaults
	}
	if target.Has(key) {
		s.fatal(errors.ParseError(errors.ErrCodeDuplicateKey, line, "duplicate key @%s in %s", key, section))
		return
	}
	target.Set(key, value)
}

// flushEntry completes a pending multi-line entry: continuation lines are
// already trimmed, and join with \n into the value.
func (s *scanState) flushEntry() {
	if s.pendingKey == "" {
		return
	}
	key, line, section := s.pendingKey, s.pendingLine, s.pendingSection
	value := strings.Join(s.pendingParts, "\n")
	s.pendingKey = ""
	s.pendingParts = nil
	s.insertEntry(section, key, value, line)
}

// contentLine handles a raw line inside [CONTENT]. Content is kept verbatim,
// except that the three known section headers stay recognizable so duplicates
// are still rejected.
func (s *scanState) contentLine(raw string, lineNo int) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == headerMetadata || trimmed == headerDefaults || trimmed == headerContent {
		s.openSection(sectionFor(trimmed), token{kind: lineHeader, line: lineNo, section: trimmed})
		return
	}
	s.contentLines = append(s.contentLines, raw)
}

// finishContent assembles the content section, stripping comment spans
// (which may cross newlines) while preserving all remaining text verbatim.
func (s *scanState) finishContent() {
	if !s.seen(sectionContent) {
		return
	}
	joined := strings.Join(s.contentLines, "\n")
	clean, unterminatedAt := StripComments(joined)
	if unterminatedAt >= 0 {
		line := s.contentFirstLine + strings.Count(joined[:unterminatedAt], "\n")
		s.warn(errors.ErrCodeUnterminatedComment, line, "comment opened with (% is never closed")
	}
	s.result.Content = clean
}
