package gallery

// Error codes for gallery operations.
const (
	// CodeInvalidFormat is returned when added bytes are not a decodable animated image.
	CodeInvalidFormat = "INVALID_FORMAT"

	// CodeDuplicateID is returned when the clock-derived id of a new asset is already taken.
	CodeDuplicateID = "DUPLICATE_ID"

	// CodeIOFailure is returned when reading, writing or deleting a backing file fails.
	CodeIOFailure = "IO_FAILURE"

	// CodeRollbackFailed is returned when a failed add could not remove the
	// thumbnail it had already written.
	CodeRollbackFailed = "ROLLBACK_FAILED"

	// CodeReadOnly is returned when a library-backed collection is asked to mutate.
	CodeReadOnly = "READ_ONLY"
)
