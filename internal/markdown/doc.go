// Package markdown implements the Markdown ingestion pipeline: front matter
// extraction, HTML rendering through goldmark, filesystem discovery, and
// import/sync against the post store.
package markdown
