package uploadsrv

const (
	// CodeOwnerMismatch is returned when a token is used for another owner.
	CodeOwnerMismatch = "OWNER_MISMATCH"

	// CodeMissingFile is returned when an upload carries no file field.
	CodeMissingFile = "MISSING_FILE"

	// CodeBadCredentials is returned by the token endpoint.
	CodeBadCredentials = "BAD_CREDENTIALS"
)
