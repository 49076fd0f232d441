package themes

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// RendererOption configures the html/template renderer.
type RendererOption func(*htmlRenderer)

// WithBaseURL sets the site base used by the absURL helper.
func WithBaseURL(base string) RendererOption {
	return func(r *htmlRenderer) {
		r.baseURL = strings.TrimSpace(base)
	}
}

// WithTemplateFuncs merges additional functions into the parse-time FuncMap.
func WithTemplateFuncs(funcs template.FuncMap) RendererOption {
	return func(r *htmlRenderer) {
		for name, fn := range funcs {
			r.funcs[name] = fn
		}
	}
}

// NewHTMLRenderer returns a TemplateRenderer backed by html/template.
// Every .html and .tmpl file under fsys is parsed once, on first use.
func NewHTMLRenderer(fsys fs.FS, opts ...RendererOption) interfaces.TemplateRenderer {
	r := &htmlRenderer{
		fsys:  fsys,
		funcs: template.FuncMap{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type htmlRenderer struct {
	fsys    fs.FS
	baseURL string

	mu     sync.RWMutex
	funcs  template.FuncMap
	global any
	parsed bool

	once sync.Once
	tpl  *template.Template
	err  error
}

func (r *htmlRenderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
		r.mu.Lock()
		r.parsed = true
		funcs := r.funcMap()
		r.mu.Unlock()

		if r.fsys == nil {
			r.err = fmt.Errorf("themes: renderer filesystem required")
			return
		}

		var files []string
		err := fs.WalkDir(r.fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			ext := strings.ToLower(path.Ext(p))
			if ext != ".html" && ext != ".tmpl" {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			r.err = err
			return
		}
		if len(files) == 0 {
			r.err = fmt.Errorf("themes: no templates found")
			return
		}

		r.tpl, r.err = template.New("theme").Funcs(funcs).ParseFS(r.fsys, files...)
	})
	return r.tpl, r.err
}

func (r *htmlRenderer) funcMap() template.FuncMap {
	funcs := template.FuncMap{
		"safeHTML":   func(value any) template.HTML { return toHTML(value) },
		"formatDate": formatDate,
		"absURL":     func(p string) string { return absURL(r.baseURL, p) },
		"joinTags":   joinTags,
		"global": func() any {
			r.mu.RLock()
			defer r.mu.RUnlock()
			return r.global
		},
	}
	for name, fn := range r.funcs {
		funcs[name] = fn
	}
	return funcs
}

func (r *htmlRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *htmlRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}

	resolved := strings.TrimSpace(name)
	if tpl.Lookup(resolved) == nil && path.Ext(resolved) == "" {
		resolved += ".html"
	}
	if tpl.Lookup(resolved) == nil {
		return "", fmt.Errorf("themes: template %q not found", name)
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.ExecuteTemplate(writer, resolved, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func (r *htmlRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	r.mu.RLock()
	funcs := r.funcMap()
	r.mu.RUnlock()

	tpl, err := template.New("inline").Funcs(funcs).Parse(content)
	if err != nil {
		return "", err
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.Execute(writer, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

// RegisterFilter adds a template function callable as {{name value arg}}.
// Filters must be registered before the first render.
func (r *htmlRenderer) RegisterFilter(name string, fn func(any, any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return fmt.Errorf("themes: filter name and function required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.parsed {
		return fmt.Errorf("themes: templates already parsed")
	}
	r.funcs[name] = fn
	return nil
}

// GlobalContext stores data exposed to templates through the global helper.
func (r *htmlRenderer) GlobalContext(data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = data
	return nil
}

func toHTML(value any) template.HTML {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}

func formatDate(value any, layout ...string) string {
	format := "January 2, 2006"
	if len(layout) > 0 && strings.TrimSpace(layout[0]) != "" {
		format = layout[0]
	}
	switch v := value.(type) {
	case time.Time:
		return v.Format(format)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(format)
	case string:
		return v
	default:
		return ""
	}
}

func joinTags(tags []string, sep ...string) string {
	separator := ", "
	if len(sep) > 0 && sep[0] != "" {
		separator = sep[0]
	}
	return strings.Join(tags, separator)
}

func absURL(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return strings.TrimSpace(base)
	}
	if strings.Contains(p, "://") {
		return p
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}
