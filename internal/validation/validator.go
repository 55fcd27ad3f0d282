// Package validation checks .prompt sources for structural and semantic
// problems and reports them without ever failing itself.
//
// ValidateText accepts raw text and degrades gracefully: when the source has
// fatal structural errors the report carries them as error entries alongside
// whatever warnings could still be gathered, and Valid is false. It never
// panics and never returns an error. ValidateDocument runs the semantic
// checks over an already parsed document.
package validation

import (
	"strings"

	"github.com/dotprompt/dotprompt/internal/errors"
	"github.com/dotprompt/dotprompt/internal/models"
	"github.com/dotprompt/dotprompt/internal/parser"
	"github.com/dotprompt/dotprompt/internal/renderer"
)

// ValidateText validates raw .prompt text and returns a fresh report.
// Valid is true iff no errors were found; warnings never affect validity.
func ValidateText(text string) *models.Report {
	report := models.NewReport()
	result := parser.Scan(text)

	for _, err := range result.Errors {
		report.AddError(models.IssueFromError(err))
	}
	for _, warning := range result.Warnings {
		report.AddWarning(warning)
	}
	if len(result.Errors) == 1 && result.Errors[0].Code == errors.ErrCodeEmptyDocument {
		return report
	}

	checkSemantics(report, result.Document())
	return report
}

// ValidateDocument validates an already parsed document, replaying its
// parse-time warnings and running the semantic checks.
func ValidateDocument(doc *models.Document) *models.Report {
	report := models.NewReport()
	for _, warning := range doc.Warnings() {
		report.AddWarning(warning)
	}
	checkSemantics(report, doc)
	return report
}

func checkSemantics(report *models.Report, doc *models.Document) {
	checkVersionField(report, doc)
	checkVariables(report, doc)
	checkLiteralBraces(report, doc)
}

// checkVersionField enforces the mandatory version metadata key. The alias
// spelling is accepted with a warning.
func checkVersionField(report *models.Report, doc *models.Document) {
	_, key := doc.Version()
	switch key {
	case models.VersionKey:
	case models.VersionKeyAlias:
		report.AddWarning(models.Issue{
			Code:    errors.ErrCodeVersionFieldAlias,
			Message: "metadata uses @" + models.VersionKeyAlias + "; the canonical key is @" + models.VersionKey,
		})
	default:
		report.AddError(models.Issue{
			Code:    errors.ErrCodeMissingVersionField,
			Message: "missing required field @" + models.VersionKey + " in [METADATA]",
		})
	}
}

// checkVariables warns about placeholders with no default (they pass through
// at render time unless the caller supplies a value) and about defaults that
// no placeholder references.
func checkVariables(report *models.Report, doc *models.Document) {
	defaults := doc.Defaults()
	referenced := make(map[string]bool)
	for _, name := range renderer.ListVariables(doc) {
		referenced[name] = true
		if !defaults.Has(name) {
			report.AddWarning(models.Issue{
				Code:    errors.ErrCodeUnresolvedVariable,
				Message: "variable {" + name + "} has no default value",
			})
		}
	}
	for _, key := range defaults.Keys() {
		if !referenced[key] {
			report.AddWarning(models.Issue{
				Code:    errors.ErrCodeUnusedDefault,
				Message: "default @" + key + " is never referenced in [CONTENT]",
			})
		}
	}
}

// checkLiteralBraces warns about a {{ with no closing }}. Rendering leaves
// the text unchanged, so this is informational only.
func checkLiteralBraces(report *models.Report, doc *models.Document) {
	text, _ := parser.StripComments(doc.Content())
	for i := 0; i < len(text); {
		open := strings.Index(text[i:], "{{")
		if open < 0 {
			return
		}
		open += i
		close := strings.Index(text[open+2:], "}}")
		if close < 0 {
			report.AddWarning(models.Issue{
				Code:    errors.ErrCodeUnbalancedLiteral,
				Message: "literal brace {{ is never closed",
			})
			return
		}
		i = open + 2 + close + 2
	}
}
