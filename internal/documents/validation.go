package documents

import "strings"

// Validator checks an upload's declared media type and size before any
// byte of the file is processed. It never touches storage.
type Validator struct {
	allowed  map[string]struct{}
	maxBytes int64
}

// NewValidator builds a Validator from the configured allow-list and limit.
func NewValidator(allowedTypes []string, maxBytes int64) *Validator {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		if trimmed := normalizeMediaType(t); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	return &Validator{allowed: allowed, maxBytes: maxBytes}
}

// MaxBytes returns the configured size ceiling.
func (v *Validator) MaxBytes() int64 { return v.maxBytes }

// Validate applies the rules in order: allow-list, non-emptiness, size cap.
// A nil return means the upload is accepted.
func (v *Validator) Validate(mediaType string, size int64) *ValidationError {
	if _, ok := v.allowed[normalizeMediaType(mediaType)]; !ok {
		return &ValidationError{Reason: ReasonUnsupportedType}
	}
	if size <= 0 {
		return &ValidationError{Reason: ReasonEmpty}
	}
	if size > v.maxBytes {
		return &ValidationError{Reason: ReasonTooLarge}
	}
	return nil
}

func normalizeMediaType(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
}
