package interfaces

import (
	"io"
)

// TemplateRenderer abstracts the layout rendering backend. The default
// implementation wraps html/template; hosts can supply their own engine as
// long as it honours the optional writer sink.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
