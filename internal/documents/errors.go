package documents

import "errors"

var (
	ErrNotFound = errors.New("document not found")
	// ErrExtractionFailed means every strategy was exhausted on a document
	// with no recoverable text, under the fail-closed policy.
	ErrExtractionFailed = errors.New("no extractable text")
	// ErrOCRUnavailable means extraction was exhausted because a remote
	// recognition dependency timed out or misbehaved.
	ErrOCRUnavailable = errors.New("recognition service unavailable")
)

// RejectReason is a machine-distinguishable upload rejection cause.
type RejectReason string

const (
	ReasonUnsupportedType RejectReason = "unsupported-type"
	ReasonTooLarge        RejectReason = "too-large"
	ReasonEmpty           RejectReason = "empty"
)

// ValidationError carries the rejection reason so handlers can map it to a
// client-visible error without string matching.
type ValidationError struct {
	Reason RejectReason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonUnsupportedType:
		return "unsupported file type"
	case ReasonTooLarge:
		return "file exceeds the maximum allowed size"
	case ReasonEmpty:
		return "uploaded file is empty"
	default:
		return "invalid upload"
	}
}

const (
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeExtraction  = "EXTRACTION_FAILED"
	ErrorCodeOCRGateway  = "OCR_UNAVAILABLE"
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodePersistence = "STORAGE_ERROR"
)
