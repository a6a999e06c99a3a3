// Package logging provides logging utilities including sensitive data filtering.
// The pipeline handles kubeconfigs, AWS credentials, and registry tokens;
// this package contains hooks and utilities for zerolog that keep that
// material out of log files.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns contains compiled regular expressions for detecting
// credential material that can pass through the pipeline: kubeconfig
// embedded keys, AWS credentials, registry auth, and generic secrets.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Kubeconfig embedded certificate and key data (client-key-data: <base64>)
	regexp.MustCompile(`(?i)(client-key-data|client-certificate-data|certificate-authority-data)\s*[:=]\s*["']?[a-zA-Z0-9+/=]{16,}["']?`),

	// Kubeconfig and service-account bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),

	// AWS access key identifiers
	regexp.MustCompile(`(?:AKIA|ASIA)[0-9A-Z]{16}`),

	// AWS secret keys assigned in config or env form
	regexp.MustCompile(`(?i)aws_secret_access_key\s*[:=]\s*["']?[a-zA-Z0-9+/=]{20,}["']?`),

	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_) used for registry auth
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// Docker config auth entries ("auth": "<base64>")
	regexp.MustCompile(`(?i)"auth"\s*:\s*"[a-zA-Z0-9+/=]{16,}"`),

	// Authorization headers carrying opaque tokens
	regexp.MustCompile(`(?i)authorization\s*[:=]\s*["']?[a-zA-Z0-9._-]{20,}["']?`),

	// Generic secret patterns (secret, password, credential with values)
	regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// SSH/TLS private keys
	regexp.MustCompile(`-----BEGIN[A-Z ]*PRIVATE KEY-----`),

	// Long opaque token assignments
	regexp.MustCompile(`(?i)(token|auth)\s*[:=]\s*["']?[a-zA-Z0-9+/=._-]{32,}["']?`),
}

// sensitiveFieldNames contains field names whose values should always be
// redacted. Case-insensitive matching is performed, both exact and as
// separator-delimited words (so "db_password" matches "password" while
// "secretariat" does not match "secret").
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"kubeconfig",
	"awsconfig",
	"aws_access_key_id",
	"aws_secret_access_key",
	"aws_session_token",
	"registry_password",
	"registry_token",
	"registry_auth",
	"token",
	"auth_token",
	"authtoken",
	"auth-token",
	"password",
	"passwd",
	"secret",
	"credential",
	"credentials",
	"private_key",
	"privatekey",
	"private-key",
	"access_token",
	"accesstoken",
	"access-token",
	"refresh_token",
	"refreshtoken",
	"refresh-token",
	"bearer",
	"authorization",
	"github_token",
	"client_key_data",
	"client_certificate_data",
}

// sensitiveFieldSet provides O(1) exact-match lookup for field names.
var sensitiveFieldSet = func() map[string]struct{} { //nolint:gochecknoglobals // Derived lookup table
	set := make(map[string]struct{}, len(sensitiveFieldNames))
	for _, name := range sensitiveFieldNames {
		set[name] = struct{}{}
	}
	return set
}()

// fieldSeparators are the characters treated as word boundaries in field names.
var fieldSeparators = []string{"_", "-"} //nolint:gochecknoglobals // Shared by boundary matching

// SensitiveDataHook is a zerolog hook that flags log entries carrying
// credential material. Zerolog hooks cannot rewrite the message, so the
// hook marks the entry; actual filtering happens at call sites via
// SafeValue and at the file boundary via FilteringWriter.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook for filtering sensitive data.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData checks if a string contains any sensitive data patterns.
// Returns true if any sensitive pattern is found.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue filters sensitive data from a string value.
// It replaces any matches of sensitive patterns with [REDACTED].
// This function should be used when logging potentially sensitive values.
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName checks if a field name indicates sensitive data.
// Exact names match directly; compound names match when a sensitive word
// appears as a separator-delimited component.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	if _, ok := sensitiveFieldSet[lowerName]; ok {
		return true
	}
	for _, sensitive := range sensitiveFieldNames {
		if matchesSensitivePattern(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// matchesSensitivePattern reports whether fieldName contains the sensitive
// word either exactly or as a separator-delimited component. Partial word
// matches do not count: "passwords" and "secretariat" are not sensitive.
func matchesSensitivePattern(fieldName, sensitive string) bool {
	if fieldName == "" || sensitive == "" {
		return false
	}
	if fieldName == sensitive {
		return true
	}
	return containsWordBoundary(fieldName, sensitive, fieldSeparators)
}

// containsWordBoundary reports whether word appears in name delimited by one
// of the given separators: as a prefix ("password_hash"), a suffix
// ("db_password"), or an infix ("my_password_field"). An exact match is not
// a boundary match.
func containsWordBoundary(name, word string, seps []string) bool {
	if name == "" || word == "" || name == word {
		return false
	}
	for _, sep := range seps {
		if strings.HasPrefix(name, word+sep) {
			return true
		}
		if strings.HasSuffix(name, sep+word) {
			return true
		}
		for _, trailing := range seps {
			if strings.Contains(name, sep+word+trailing) {
				return true
			}
		}
	}
	return false
}

// RedactIfSensitive returns [REDACTED] if the field name indicates sensitive
// data, otherwise returns the original value filtered for embedded secrets.
func RedactIfSensitive(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// SafeValue returns a filtered value for a field, redacting sensitive data.
// This is a convenience wrapper for adding filtered string fields to log events.
//
// Usage:
//
//	log.Info().Str("endpoint", logging.SafeValue("endpoint", endpoint)).Msg("probing deployment")
func SafeValue(fieldName, value string) string {
	return RedactIfSensitive(fieldName, value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// This is used to wrap log file writers so credential material is never
// written to disk, even when it appears inside message or field values.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
// All data written through this writer will have sensitive patterns redacted.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	_, err = fw.w.Write([]byte(filtered))
	if err != nil {
		return 0, err
	}
	// Return original length so callers don't think there was a short write
	return len(p), nil
}
