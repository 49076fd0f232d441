// Package lint validates post files before they reach the build: front matter
// delimiters, required fields, date formats, permalink shape, site registry
// membership, and an optional JSON schema over the raw front matter.
package lint
