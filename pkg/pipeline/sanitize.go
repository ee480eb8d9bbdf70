package pipeline

import (
	"net/url"
	"regexp"
	"strings"
)

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._/\-]`)

// SanitizePath turns a transferred file's local path into the relative path
// the catalog stores: a leading download directory is removed, the path is
// URL-decoded, and every character outside [A-Za-z0-9._/-] becomes "_".
// tmpPath is only removed as a whole leading directory; occurrences elsewhere
// in the path are kept.
func SanitizePath(localPath, tmpPath string) string {
	p := localPath
	if dir := strings.TrimRight(tmpPath, "/"); dir != "" && strings.HasPrefix(p, dir+"/") {
		p = p[len(dir):]
	}

	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	p = unsafePathChars.ReplaceAllString(p, "_")

	return strings.TrimPrefix(p, "/")
}

// localPath is the on-disk location of a transferred file. The transfer
// service reports destination paths URL-encoded.
func localPath(destinationPath string) string {
	if decoded, err := url.PathUnescape(destinationPath); err == nil {
		return decoded
	}

	return destinationPath
}
