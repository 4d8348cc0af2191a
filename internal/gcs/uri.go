package gcs

import (
	"fmt"
	"path"
	"strings"
)

const scheme = "gs://"

// ParseURI splits gs://bucket/path/to/object into bucket and object name.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, scheme) {
		return "", "", fmt.Errorf("ParseURI: invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("ParseURI: invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// JoinURI appends object path elements to a gs:// prefix.
func JoinURI(prefix string, elem ...string) string {
	rest := strings.TrimPrefix(prefix, scheme)
	return scheme + path.Join(append([]string{rest}, elem...)...)
}

// Filename returns the last element of the object path,
// e.g. "gs://bucket/folder/user_001.json" -> "user_001.json".
func Filename(uri string) string {
	parts := strings.SplitN(strings.TrimPrefix(uri, scheme), "/", 2)
	if len(parts) < 2 {
		return parts[0]
	}
	return path.Base(parts[1])
}
