package asset

// Source is where an asset's bytes live. The set of variants is closed:
// FileBacked, LibraryBacked and Ephemeral.
type Source interface {
	isSource()
}

// FileBacked is an asset persisted as a data file with a thumbnail counterpart.
type FileBacked struct {
	DataPath  string
	ThumbPath string
}

// Handle is an opaque reference to an item in a photo library.
type Handle string

// LibraryBacked is an asset owned by a photo library and fetched on demand.
type LibraryBacked struct {
	Handle Handle
}

// Ephemeral is an asset that only exists in memory, such as an unsaved preview.
type Ephemeral struct {
	Bytes []byte
}

func (FileBacked) isSource()    {}
func (LibraryBacked) isSource() {}
func (Ephemeral) isSource()     {}

// Kind names a source variant for logs.
func Kind(s Source) string {
	switch s.(type) {
	case FileBacked:
		return "file"
	case LibraryBacked:
		return "library"
	case Ephemeral:
		return "ephemeral"
	default:
		return "unknown"
	}
}
