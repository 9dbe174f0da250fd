package sawchat

import (
	"net/url"
	"path"
)

// MimeCSV is the only artifact type the agent produces.
const MimeCSV = "text/csv"

// DefaultArtifactName is used when a download URL has no usable file name.
const DefaultArtifactName = "download.csv"

// Artifact is a file produced by the agent alongside an answer. It lives
// only long enough to be offered to the user.
type Artifact struct {
	Filename string
	MimeType string
	Data     []byte
}

// FilenameFromURL returns the trailing path segment of a download URL,
// ignoring any query string or fragment.
func FilenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return DefaultArtifactName
	}
	name := path.Base(u.Path)
	switch name {
	case "", ".", "/":
		return DefaultArtifactName
	}
	return name
}
