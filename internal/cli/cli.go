// Package cli implements the dotprompt command line interface. Commands
// operate either on explicit .prompt file paths or on names in the prompt
// library, and print plain, JSON, or YAML output.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/dotprompt/dotprompt/internal/errors"
	"github.com/dotprompt/dotprompt/internal/models"
	"github.com/dotprompt/dotprompt/internal/renderer"
	"github.com/dotprompt/dotprompt/internal/service"
	"github.com/dotprompt/dotprompt/internal/storage"
	"github.com/dotprompt/dotprompt/internal/ui"
)

// CLI handles command line operations.
type CLI struct {
	svc *service.Service
}

// NewCLI creates a new CLI instance.
func NewCLI(svc *service.Service) *CLI {
	return &CLI{svc: svc}
}

// ExecuteCommand dispatches a CLI command with its arguments.
func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "render":
		return c.renderCommand(rest)
	case "validate", "check":
		return c.validateCommand(rest)
	case "show":
		return c.showCommand(rest)
	case "vars", "variables":
		return c.varsCommand(rest)
	case "fmt":
		return c.fmtCommand(rest)
	case "list", "ls":
		return c.listCommand(rest)
	case "search":
		return c.searchCommand(rest)
	case "browse":
		return c.browseCommand(rest)
	case "init":
		return c.initCommand()
	case "help":
		return c.printUsage()
	default:
		return errors.CommandNotFoundError(command)
	}
}

func (c *CLI) renderCommand(args []string) error {
	positional, flags := parseArgs(args)
	if len(positional) != 1 {
		return errors.InvalidCommandError("render", "expected exactly one file or prompt name")
	}
	vars, err := service.ParseVarFlags(flags["var"])
	if err != nil {
		return err
	}

	doc, err := c.loadDocument(positional[0])
	if err != nil {
		return err
	}
	output := renderer.Render(doc, vars)

	if flags.has("pretty") {
		rendered, err := renderMarkdown(output)
		if err != nil {
			return err
		}
		output = rendered
	}
	fmt.Println(output)
	return nil
}

func (c *CLI) validateCommand(args []string) error {
	positional, flags := parseArgs(args)
	if len(positional) != 1 {
		return errors.InvalidCommandError("validate", "expected exactly one file path")
	}
	path := positional[0]

	report, err := c.svc.ValidateFile(path)
	if err != nil {
		return err
	}

	format := flags.value("output", "text")
	if format != "text" {
		if err := printMarshaled(report, format); err != nil {
			return err
		}
	} else {
		printReport(path, report)
	}
	if !report.Valid {
		return errors.NewAppError(errors.ErrCodeInvalidInput, fmt.Sprintf("%s is not a valid .prompt file", path))
	}
	return nil
}

// printReport writes a styled, human-readable validation report.
func printReport(path string, report *models.Report) {
	if report.Valid {
		fmt.Println(ui.StyleSuccess.Render("✓") + " " + path + " is valid")
	} else {
		fmt.Println(ui.StyleError.Render("✗") + " " + path + " has errors")
	}
	for _, issue := range report.Errors {
		fmt.Println("  " + ui.StyleError.Render("error") + "   " + issue.String())
	}
	for _, issue := range report.Warnings {
		fmt.Println("  " + ui.StyleWarning.Render("warning") + " " + issue.String())
	}
}

func (c *CLI) showCommand(args []string) error {
	positional, flags := parseArgs(args)
	if len(positional) != 1 {
		return errors.InvalidCommandError("show", "expected exactly one file or prompt name")
	}
	doc, err := c.loadDocument(positional[0])
	if err != nil {
		return err
	}

	format := flags.value("output", "text")
	if format != "text" {
		return printMarshaled(doc, format)
	}

	fmt.Println(ui.StyleTitle.Render("Metadata"))
	printSection(doc.Metadata())
	if doc.Defaults().Len() > 0 {
		fmt.Println(ui.StyleTitle.Render("Defaults"))
		printSection(doc.Defaults())
	}
	if vars := renderer.ListVariables(doc); len(vars) > 0 {
		fmt.Println(ui.StyleTitle.Render("Variables"))
		fmt.Println("  " + strings.Join(vars, ", "))
	}
	fmt.Println(ui.StyleTitle.Render("Content"))
	fmt.Println(doc.Content())
	return nil
}

func printSection(section *models.OrderedMap) {
	for _, key := range section.Keys() {
		value, _ := section.Get(key)
		if strings.Contains(value, "\n") {
			value = strings.ReplaceAll(value, "\n", "\n    ")
		}
		fmt.Printf("  %s: %s\n", ui.StyleMuted.Render(key), value)
	}
}

func (c *CLI) varsCommand(args []string) error {
	positional, flags := parseArgs(args)
	if len(positional) != 1 {
		return errors.InvalidCommandError("vars", "expected exactly one file or prompt name")
	}
	doc, err := c.loadDocument(positional[0])
	if err != nil {
		return err
	}
	info := renderer.VariablesInfo(doc)

	format := flags.value("output", "text")
	if format != "text" {
		return printMarshaled(info, format)
	}
	if len(info) == 0 {
		fmt.Println("no variables")
		return nil
	}
	for _, v := range info {
		if v.HasDefault {
			fmt.Printf("  {%s} default: %s\n", v.Name, v.DefaultValue)
		} else {
			fmt.Printf("  {%s} %s\n", v.Name, ui.StyleWarning.Render("no default"))
		}
	}
	return nil
}

func (c *CLI) fmtCommand(args []string) error {
	positional, flags := parseArgs(args)
	if len(positional) != 1 {
		return errors.InvalidCommandError("fmt", "expected exactly one file path")
	}
	path := positional[0]

	doc, err := storage.LoadFile(path)
	if err != nil {
		return err
	}
	if flags.has("write") {
		return storage.SaveFile(doc, path)
	}
	fmt.Println(doc.Text())
	return nil
}

func (c *CLI) listCommand(args []string) error {
	_, flags := parseArgs(args)
	entries, err := c.svc.ListPrompts()
	if err != nil {
		return err
	}
	return c.printEntries(entries, flags.value("output", "text"))
}

func (c *CLI) searchCommand(args []string) error {
	positional, flags := parseArgs(args)
	if len(positional) == 0 {
		return errors.InvalidCommandError("search", "expected a query")
	}
	entries, err := c.svc.SearchPrompts(strings.Join(positional, " "))
	if err != nil {
		return err
	}
	return c.printEntries(entries, flags.value("output", "text"))
}

func (c *CLI) printEntries(entries []*storage.Entry, format string) error {
	if format != "text" {
		type listed struct {
			Name        string `json:"name" yaml:"name"`
			Title       string `json:"title" yaml:"title"`
			Description string `json:"description,omitempty" yaml:"description,omitempty"`
			Path        string `json:"path" yaml:"path"`
		}
		out := make([]listed, 0, len(entries))
		for _, e := range entries {
			out = append(out, listed{Name: e.Name, Title: e.Title, Description: e.Description, Path: e.Path})
		}
		return printMarshaled(out, format)
	}
	if len(entries) == 0 {
		fmt.Println("no prompts found in " + c.svc.BaseDir())
		return nil
	}
	for _, e := range entries {
		line := "  " + e.Name
		if e.Title != e.Name {
			line += "  " + ui.StyleMuted.Render(e.Title)
		}
		if e.Description != "" {
			line += "  " + ui.StyleMuted.Render("— "+e.Description)
		}
		fmt.Println(line)
	}
	return nil
}

func (c *CLI) browseCommand(args []string) error {
	_, flags := parseArgs(args)
	entries, err := c.svc.ListPrompts()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.NotFoundError("any prompt in " + c.svc.BaseDir())
	}
	selected, err := ui.Browse(entries)
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}
	output := renderer.Render(selected.Doc, nil)
	if flags.has("pretty") {
		if output, err = renderMarkdown(output); err != nil {
			return err
		}
	}
	fmt.Println(output)
	return nil
}

func (c *CLI) initCommand() error {
	if err := c.svc.InitLibrary(); err != nil {
		return err
	}
	fmt.Println("Initialized prompt library at " + c.svc.BaseDir())
	return nil
}

// loadDocument resolves an argument as a file path first and as a library
// prompt name second.
func (c *CLI) loadDocument(arg string) (*models.Document, error) {
	if strings.HasSuffix(arg, storage.Ext) || strings.ContainsRune(arg, os.PathSeparator) {
		return storage.LoadFile(arg)
	}
	if _, err := os.Stat(arg); err == nil {
		return storage.LoadFile(arg)
	}
	entry, err := c.svc.GetPrompt(arg)
	if err != nil {
		return nil, err
	}
	return entry.Doc, nil
}

func renderMarkdown(text string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

func printMarshaled(v interface{}, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		return errors.InvalidCommandError("--output", "expected text, json, or yaml")
	}
	return nil
}

// argFlags maps a flag name to the values it was given. Boolean flags store
// a single "true".
type argFlags map[string][]string

func (f argFlags) has(name string) bool {
	_, ok := f[name]
	return ok
}

func (f argFlags) value(name, fallback string) string {
	if values, ok := f[name]; ok && len(values) > 0 {
		return values[0]
	}
	return fallback
}

// boolFlags are flags that never take a value.
var boolFlags = map[string]bool{
	"pretty": true,
	"write":  true,
}

// parseArgs splits command arguments into positional arguments and flags.
// Flags accept both --name value and --name=value forms, and repeat (--var
// a=1 --var b=2 accumulates).
func parseArgs(args []string) ([]string, argFlags) {
	var positional []string
	flags := make(argFlags)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			positional = append(positional, arg)
			continue
		}
		name := strings.TrimPrefix(arg, "--")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			flags[name[:eq]] = append(flags[name[:eq]], name[eq+1:])
			continue
		}
		if boolFlags[name] || i+1 >= len(args) {
			flags[name] = append(flags[name], "true")
			continue
		}
		flags[name] = append(flags[name], args[i+1])
		i++
	}
	return positional, flags
}

func (c *CLI) printUsage() error {
	fmt.Println(`dotprompt - parse, render, and validate .prompt files

USAGE:
    dotprompt [--dir <path>] <command> [arguments]

COMMANDS:
    render <file|name> [--var k=v]... [--pretty]   Render a prompt
    validate <file> [--output text|json|yaml]      Validate a .prompt file
    show <file|name> [--output text|json|yaml]     Show parsed document
    vars <file|name> [--output text|json|yaml]     List variables and defaults
    fmt <file> [--write]                           Reformat to canonical text
    list [--output text|json|yaml]                 List library prompts
    search <query>                                 Fuzzy-search the library
    browse [--pretty]                              Interactive prompt picker
    init                                           Create the library directory
    help                                           Show this help

The prompt library lives in --dir, $DOTPROMPT_DIR, or ~/.dotprompt.`)
	return nil
}
