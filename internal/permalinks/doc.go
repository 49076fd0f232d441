// Package permalinks expands permalink patterns into site-relative
// paths and resolves listing URLs through go-urlkit route groups.
package permalinks
