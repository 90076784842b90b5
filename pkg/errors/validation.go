package errors

import (
	"strings"
	"unicode"
)

// ValidateFileName validates a source file name for safety.
// It ensures the name is a simple basename without path components.
func ValidateFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "file name cannot contain path separators: %q", name)
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "file name cannot be %q", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains invalid control characters: %q", name)
		}
	}

	return nil
}

// ValidateIconID validates an icon identifier.
//
// Identifiers become registry keys and archive file names
// ({id}_s24.{ext}), so the rules are conservative:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateIconID(id string) error {
	if id == "" {
		return New(ErrCodeMalformedName, "icon id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeMalformedName, "icon id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeMalformedName, "icon id contains invalid control characters: %q", id)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeMalformedName, "icon id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a configured directory or file path.
// Absolute and relative paths are both accepted; only empty paths and
// control characters are rejected.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
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

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
