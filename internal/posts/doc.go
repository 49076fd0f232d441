// Package posts manages blog post records and their publishing
// lifecycle. Listings resolve each record's externally visible state
// from the stored status plus the publish and unpublish timestamps.
package posts
