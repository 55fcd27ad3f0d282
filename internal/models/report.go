package models

import (
	"fmt"

	"github.com/dotprompt/dotprompt/internal/errors"
)

// Issue is a single diagnostic: a stable code, a human-readable message, and
// the 1-based source line it refers to (0 when no line applies).
type Issue struct {
	Code    errors.ErrorCode `json:"code" yaml:"code"`
	Message string           `json:"message" yaml:"message"`
	Line    int              `json:"line,omitempty" yaml:"line,omitempty"`
}

// String formats the issue for terminal output.
func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", i.Code, i.Message, i.Line)
	}
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// IssueFromError converts an application error into a report issue.
func IssueFromError(err *errors.AppError) Issue {
	return Issue{Code: err.Code, Message: err.Message, Line: err.Line}
}

// Report is the result of validating a .prompt source. Valid is true iff
// Errors is empty; warnings never affect validity. A report is built fresh
// per validation call.
type Report struct {
	Valid    bool    `json:"valid" yaml:"valid"`
	Errors   []Issue `json:"errors" yaml:"errors"`
	Warnings []Issue `json:"warnings" yaml:"warnings"`
}

// NewReport returns an empty, valid report.
func NewReport() *Report {
	return &Report{Valid: true, Errors: []Issue{}, Warnings: []Issue{}}
}

// AddError appends an error and marks the report invalid.
func (r *Report) AddError(issue Issue) {
	r.Errors = append(r.Errors, issue)
	r.Valid = false
}

// AddWarning appends a warning. Warnings never affect Valid.
func (r *Report) AddWarning(issue Issue) {
	r.Warnings = append(r.Warnings, issue)
}
