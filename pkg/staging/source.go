package staging

import (
	"fmt"
	"net/url"
	"strings"
)

// Source is the managed transfer location a completed staging request points at.
type Source struct {
	URL      string
	Endpoint string
	Path     string
}

// ParseSource extracts the embedded transfer URL from a completed poll response.
// The URL runs from the first "https:" to the end of the text and carries the
// source endpoint and path in its origin_id and origin_path query parameters.
func ParseSource(text string) (Source, error) {
	idx := strings.Index(text, "https:")
	if idx < 0 {
		return Source{}, fmt.Errorf("no transfer url in staging response")
	}

	raw := strings.TrimSpace(text[idx:])
	u, err := url.Parse(raw)
	if err != nil {
		return Source{}, fmt.Errorf("unable to parse transfer url %q: %w", raw, err)
	}

	q := u.Query()
	src := Source{URL: raw, Endpoint: q.Get("origin_id"), Path: q.Get("origin_path")}
	switch {
	case src.Endpoint == "":
		return Source{}, fmt.Errorf("transfer url %q has no origin_id", raw)
	case src.Path == "":
		return Source{}, fmt.Errorf("transfer url %q has no origin_path", raw)
	}

	return src, nil
}
