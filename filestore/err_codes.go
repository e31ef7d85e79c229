package filestore

// Error codes shared by every FileStore backend.
const (
	// CodeFileNotFound means nothing is stored under the key.
	CodeFileNotFound = "FILE_NOT_FOUND"

	// CodeUnsupportedContentType means the sniffed content is not an accepted image.
	CodeUnsupportedContentType = "UNSUPPORTED_CONTENT_TYPE"

	// CodeFileTooLarge means the content exceeds the caller's size limit.
	CodeFileTooLarge = "FILE_TOO_LARGE"

	// CodeInvalidPath means the key is empty or escapes its root.
	CodeInvalidPath = "INVALID_PATH"
)
