package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PostUUID derives the identifier for a post from its slug so repeated
// imports of the same file converge on one record.
func PostUUID(slug string) uuid.UUID {
	return UUID("go-press:post:" + strings.ToLower(strings.TrimSpace(slug)))
}

// AuthorUUID derives a stable actor identifier from an author name so
// file-based imports attribute records consistently across runs.
func AuthorUUID(name string) uuid.UUID {
	return UUID("go-press:author:" + strings.ToLower(strings.TrimSpace(name)))
}

// ThemeUUID derives the identifier for a theme from its filesystem path.
func ThemeUUID(themePath string) uuid.UUID {
	return UUID("go-press:theme:" + strings.TrimSpace(themePath))
}

// LayoutUUID derives the identifier for a layout within a theme.
func LayoutUUID(themeID uuid.UUID, name string) uuid.UUID {
	return UUID("go-press:layout:" + themeID.String() + ":" + strings.ToLower(strings.TrimSpace(name)))
}

// TagUUID derives the identifier for a tag archive page.
func TagUUID(tag string) uuid.UUID {
	return UUID("go-press:tag:" + strings.ToLower(strings.TrimSpace(tag)))
}

// JobUUID derives the identifier for a scheduler job key.
func JobUUID(key string) uuid.UUID {
	return UUID("go-press:job:" + strings.TrimSpace(key))
}
