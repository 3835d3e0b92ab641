package security

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
)

// GenerateOpaqueToken returns a secure random URL-safe token, used for
// refresh tokens and CSRF protection.
func GenerateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ValidateContentType ensures the request has an accepted content type.
// Parameters such as charset or multipart boundaries are ignored.
func ValidateContentType(contentType string) bool {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	validTypes := map[string]bool{
		"application/json":                  true,
		"application/x-www-form-urlencoded": true,
		"multipart/form-data":               true,
	}
	return validTypes[strings.TrimSpace(contentType)]
}

// SanitizeHeaders removes sensitive headers before a request is logged.
func SanitizeHeaders(headers http.Header) http.Header {
	sensitiveHeaders := []string{
		"Authorization",
		"Cookie",
		"Set-Cookie",
		"X-CSRF-Token",
	}

	for _, header := range sensitiveHeaders {
		headers.Del(header)
	}
	return headers
}
