package review

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed default_template.md
var defaultTemplate string

// Template renders the per-file review prompt. The template text is
// plain prose with two placeholders, {FILE_PATH} and {FILE_CONTENT},
// substituted per file.
type Template struct {
	text string
}

// LoadTemplate reads the prompt template from path. An empty path
// selects the embedded default; a path that cannot be read is an
// error, the caller asked for that file explicitly.
func LoadTemplate(path string) (*Template, error) {
	if path == "" {
		return &Template{text: defaultTemplate}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}

	return &Template{text: string(data)}, nil
}

// Render substitutes the file placeholders into the template.
func (t *Template) Render(path, content string) string {
	r := strings.NewReplacer(
		"{FILE_PATH}", path,
		"{FILE_CONTENT}", content,
	)
	return r.Replace(t.text)
}
