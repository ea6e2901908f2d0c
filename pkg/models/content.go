package models

// EntryType distinguishes files from directories in a listing.
type EntryType string

const (
	EntryFile EntryType = "file"
	EntryDir  EntryType = "dir"
)

// ContentFile is a file read from the backing store together with the
// revision it was read at.
type ContentFile struct {
	Path     string `json:"path"`
	Content  []byte `json:"-"`
	Revision string `json:"revision"`
}

// Text returns the content as a string.
func (f *ContentFile) Text() string {
	return string(f.Content)
}

// DirectoryEntry is one item of a directory listing. Revision and FetchURL are
// only set for files.
type DirectoryEntry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Type     EntryType `json:"type"`
	Revision string    `json:"revision,omitempty"`
	FetchURL string    `json:"fetch_url,omitempty"`
}

func (e DirectoryEntry) IsDir() bool {
	return e.Type == EntryDir
}

// Commit is the outcome of a successful write or delete.
type Commit struct {
	Revision  string `json:"revision,omitempty"` // new revision of the path, empty after delete
	CommitSHA string `json:"commit,omitempty"`
	Message   string `json:"message"`
}
