package generator

import (
	"path"
	"strings"
)

// buildOutputPath maps a site route onto a relative file path inside the
// output directory. Directory style routes gain an index.html; routes
// that already name a file keep their extension.
func buildOutputPath(route string) string {
	trimmed := strings.TrimSpace(route)
	clean := strings.Trim(trimmed, " \t\r\n/")
	if clean == "" {
		return "index.html"
	}
	if !strings.HasSuffix(trimmed, "/") && path.Ext(clean) != "" {
		return path.Clean(clean)
	}
	return path.Join(clean, "index.html")
}

// normalizeRoute folds a route into the canonical keyed form used by the
// build manifest: leading slash, trailing slash on directories, no
// duplicate separators.
func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	hadTrailing := strings.HasSuffix(route, "/")
	clean := path.Clean("/" + strings.TrimPrefix(route, "/"))
	if clean == "/" {
		return "/"
	}
	if hadTrailing || path.Ext(clean) == "" {
		return clean + "/"
	}
	return clean
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.Trim(base, "/"), rel)
}
