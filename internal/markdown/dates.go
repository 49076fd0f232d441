package markdown

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// DateLayouts enumerates the accepted front matter date formats, most
// specific first. All variants are ISO-8601 shaped; freeform dates are
// rejected so published timestamps stay sortable.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a front matter date value. Layouts without an explicit
// offset are interpreted in UTC.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("parse date: empty value")
	}

	for _, layout := range DateLayouts {
		if ts, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date: unrecognized format %q", trimmed)
}

// IsValidDate reports whether value parses under one of the accepted layouts.
func IsValidDate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}

// Checksum returns the SHA-256 digest of the source bytes. The sync pipeline
// uses it to skip unchanged files.
func Checksum(source []byte) []byte {
	sum := sha256.Sum256(source)
	return sum[:]
}

// ChecksumHex returns the hex-encoded checksum for storage columns.
func ChecksumHex(source []byte) string {
	return hex.EncodeToString(Checksum(source))
}
