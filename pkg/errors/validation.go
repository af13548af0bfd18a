package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// relationIDRegex matches OSM element ids: positive decimal integers.
var relationIDRegex = regexp.MustCompile(`^[1-9][0-9]{0,14}$`)

// ValidateRelationID validates an OSM relation id before it is placed into an
// Overpass query. Only plain decimal ids are accepted so a crafted id cannot
// alter the query text.
func ValidateRelationID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "relation id cannot be empty")
	}
	if !relationIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid relation id: %q", id)
	}
	return nil
}

// ValidateRelationIDs validates every id and rejects an empty list.
func ValidateRelationIDs(ids []string) error {
	if len(ids) == 0 {
		return New(ErrCodeInvalidInput, "no relation ids given")
	}
	for _, id := range ids {
		if err := ValidateRelationID(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuery validates a free-text place search query.
//
// Validation rules:
//   - Query cannot be empty or blank
//   - Maximum length of 256 characters
//   - No control characters
func ValidateQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return New(ErrCodeInvalidInput, "search query cannot be empty")
	}

	const maxQueryLength = 256
	if len(q) > maxQueryLength {
		return New(ErrCodeInvalidInput, "search query too long (max %d characters)", maxQueryLength)
	}

	for _, r := range q {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search query contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateOutputName validates a download file name given by a client.
// It must be a simple basename without path components.
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "file name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return New(ErrCodeInvalidInput, "file name cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "invalid file name: %q", name)
	}
	return nil
}
