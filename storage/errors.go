package storage

import "fmt"

// UploadErrorCode classifies why a file could not be accepted.
type UploadErrorCode int

const (
	UploadMissing UploadErrorCode = iota + 1
	UploadTooLarge
	UploadUnsupportedType
)

// UploadError is a client-side upload failure. Internal I/O faults are returned as plain errors.
type UploadError struct {
	Code  UploadErrorCode
	Field string
	Msg   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %s", e.Field, e.Msg)
}
