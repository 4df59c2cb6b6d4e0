// Package templates loads the prompt templates of the agents and the translator.
package templates

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"studiodesk/pkg/errors"
)

// Prompt IDs shipped in the embedded assets
const (
	AgentSupport      = "agents/support"
	AgentDashboard    = "agents/dashboard"
	PromptTranslate   = "prompts/translate"
	PromptFinalAnswer = "prompts/final_answer"
)

// Required lists the prompts the service cannot start without
func Required() []string {
	return []string{AgentSupport, AgentDashboard, PromptTranslate, PromptFinalAnswer}
}

//go:embed assets/**/*.tmpl
var embeddedFS embed.FS

var funcs = template.FuncMap{
	"join":    strings.Join,
	"upper":   strings.ToUpper,
	"trim":    strings.TrimSpace,
	"bullets": bullets,
}

// bullets renders items as a markdown list
func bullets(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "- " + strings.Join(items, "\n- ")
}

// Template is one parsed prompt
type Template struct {
	ID     string
	parsed *template.Template
}

// Render executes the template. Missing keys are errors, not "<no value>".
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.parsed.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "render template %s", t.ID)
	}
	return buf.String(), nil
}

// Registry resolves templates by ID, the slash path without the .tmpl extension
type Registry struct {
	fsys      fs.FS
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry loads every template under dir
func NewRegistry(dir string) (*Registry, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve template dir")
	}
	return NewRegistryFromFS(os.DirFS(abs))
}

// NewRegistryFromFS loads every template of fsys
func NewRegistryFromFS(fsys fs.FS) (*Registry, error) {
	r := &Registry{fsys: fsys, templates: map[string]*Template{}}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".tmpl" {
			return err
		}
		return r.load(p)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Get returns the registry over the embedded assets. It panics when they fail to parse.
func Get() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedFS, "assets")
		if err != nil {
			defaultErr = errors.Wrap(err, "prepare embedded templates")
			return
		}
		defaultRegistry, defaultErr = NewRegistryFromFS(sub)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultRegistry
}

// GetTemplate returns the template id. Files added after construction are loaded on first use.
func (r *Registry) GetTemplate(id string) (*Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[id]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	p := id + ".tmpl"
	if _, err := fs.Stat(r.fsys, p); err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "template %s", id)
	}
	if err := r.load(p); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates[id], nil
}

// MustHave fails when any of ids is missing. Called at startup so a broken asset set aborts boot.
func (r *Registry) MustHave(ids ...string) error {
	var errs errors.MultiError
	for _, id := range ids {
		if _, err := r.GetTemplate(id); err != nil {
			errs.Add(err)
		}
	}
	return errs.ToError()
}

// Render executes template id with data
func (r *Registry) Render(id string, data any) (string, error) {
	tmpl, err := r.GetTemplate(id)
	if err != nil {
		return "", err
	}
	return tmpl.Render(data)
}

// List returns the loaded template IDs in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) load(p string) error {
	id := strings.TrimSuffix(strings.TrimPrefix(p, "/"), ".tmpl")

	content, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return errors.Wrapf(err, "read template %s", id)
	}
	parsed, err := template.New(id).Funcs(funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return errors.Wrapf(err, "parse template %s", id)
	}

	r.mu.Lock()
	r.templates[id] = &Template{ID: id, parsed: parsed}
	r.mu.Unlock()
	return nil
}
