// Package scaffold generates a runnable debugrun module skeleton.
package scaffold

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/txtar"
)

const (
	harnessModulePath = "github.com/mouse-blink/debugrun"
	goVersion         = "1.25.1"
	defaultPrefix     = "Test"
)

//go:embed templates.txt
var defaultTemplates []byte

var templates = parseTemplates()

func parseTemplates() *template.Template {
	archive := txtar.Parse(defaultTemplates)

	root := template.New("scaffold").Funcs(template.FuncMap{
		"join": strings.Join,
	})

	for _, file := range archive.Files {
		template.Must(root.New(file.Name).Parse(string(file.Data)))
	}

	return root
}

// FormatError is returned when a generated file fails gofmt.
type FormatError struct {
	OriginalError error
	Source        string // the unformatted source code
	LineNum       int
	Column        int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formatting error at line %d:%d: %v", e.LineNum, e.Column, e.OriginalError)
}

func (e *FormatError) Unwrap() error {
	return e.OriginalError
}

// Options control what Generate writes.
type Options struct {
	// Name is the module name, used for the go.mod module path and the
	// harness name.
	Name string
	// Dir is the target directory. Defaults to Name.
	Dir string
	// Tests are the stub names to generate, one function each.
	Tests []string
	// Prefix overrides the default "Test" name prefix.
	Prefix string
	// ReplacePath, when set, adds a replace directive pointing the
	// harness dependency at a local checkout.
	ReplacePath string
}

type mainData struct {
	Name    string
	Prefix  string // empty when the default prefix is in use
	Funcs   []string
	Harness string
}

type modData struct {
	ModulePath  string
	GoVersion   string
	Harness     string
	ReplacePath string
}

// Generate writes main.go and go.mod for a fresh debugrun module and
// returns the paths it wrote.
func Generate(opts Options) ([]string, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("scaffold: module name is required")
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	stubs := opts.Tests
	if len(stubs) == 0 {
		stubs = []string{"example"}
	}

	funcs := make([]string, 0, len(stubs))
	seen := make(map[string]bool)

	for _, raw := range stubs {
		name := stubName(prefix, raw)
		if seen[name] {
			continue
		}

		seen[name] = true
		funcs = append(funcs, name)
	}

	data := mainData{
		Name:    opts.Name,
		Funcs:   funcs,
		Harness: harnessModulePath,
	}
	if prefix != defaultPrefix {
		data.Prefix = prefix
	}

	mainSrc, err := render("main.tmpl", data)
	if err != nil {
		return nil, err
	}

	formatted, err := format.Source(mainSrc)
	if err != nil {
		// go/format errors look like "7:3: expected declaration".
		var lineNum, colNum int
		_, _ = fmt.Sscanf(err.Error(), "%d:%d:", &lineNum, &colNum)

		return nil, &FormatError{
			OriginalError: err,
			Source:        string(mainSrc),
			LineNum:       lineNum,
			Column:        colNum,
		}
	}

	modSrc, err := render("gomod.tmpl", modData{
		ModulePath:  opts.Name,
		GoVersion:   goVersion,
		Harness:     harnessModulePath,
		ReplacePath: opts.ReplacePath,
	})
	if err != nil {
		return nil, err
	}

	dir := opts.Dir
	if dir == "" {
		dir = opts.Name
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create module directory: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{"main.go", formatted},
		{"go.mod", modSrc},
	}

	written := make([]string, 0, len(files))

	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if err := os.WriteFile(path, file.data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}

		written = append(written, path)
	}

	return written, nil
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}

	return buf.Bytes(), nil
}

// stubName turns a raw stub name like "user-login" into a prefixed
// identifier like "TestUserLogin".
func stubName(prefix, raw string) string {
	caser := cases.Title(language.English)

	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})

	var b strings.Builder
	b.WriteString(prefix)

	for _, part := range parts {
		b.WriteString(caser.String(part))
	}

	return b.String()
}
