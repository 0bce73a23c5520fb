package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// hexColorRegex matches 6-digit hex colors with a leading hash.
var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateHexColor validates a CSS-style hex color string (e.g. "#d4a017").
// Brand kits and CLI overrides pass colors straight through to renderers, so
// a malformed value would only surface as broken output; validating up front
// gives a readable error instead.
func ValidateHexColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidBrand, "color cannot be empty")
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidBrand, "invalid hex color: %q (expected #rrggbb)", color)
	}
	return nil
}

// ValidateFontFamily validates a font family name for safe pass-through to
// SVG attributes and system font lookup.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No quotes or angle brackets (SVG attribute injection)
//   - Maximum length of 128 characters
func ValidateFontFamily(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBrand, "font family cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidBrand, "font family too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBrand, "font family contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, `"'<>&`) {
		return New(ErrCodeInvalidBrand, "font family contains invalid characters")
	}

	return nil
}

// ValidatePath validates a local file path supplied on the command line or in
// an API request. It prevents path traversal and ensures reasonable length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
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
