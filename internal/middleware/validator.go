package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Input validation and sanitization utilities

const maxFileNameLen = 255

var userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.@-]{1,64}$`)

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// SanitizeFileName keeps only the base name of a client-supplied file name.
func SanitizeFileName(name string) string {
	name = SanitizeString(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	if len(name) > maxFileNameLen {
		name = name[len(name)-maxFileNameLen:]
	}
	return name
}

// ValidateUserID validates the authenticated user id format
func ValidateUserID(user string) error {
	if user == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if !userIDPattern.MatchString(user) {
		return fmt.Errorf("invalid user ID format (alphanumeric, dash, underscore, dot, @ only, max 64 chars)")
	}
	return nil
}

// ValidateJobID accepts the UUIDs the service hands out.
func ValidateJobID(id string) error {
	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	if matched, _ := regexp.MatchString(pattern, id); !matched {
		return fmt.Errorf("invalid job ID format")
	}
	return nil
}

// ParseLimit reads an optional pagination limit. Empty means 0, which the
// repositories treat as "everything".
func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	if n > 1000 {
		return 1000, nil // max limit
	}
	return n, nil
}

// ParseOffset reads an optional non-negative offset.
func ParseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid offset: %q", raw)
	}
	return n, nil
}
