package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	uploadSuccessMessage = "Successfully uploaded datafile"
	notFoundMessage      = "could not be found"
)

// Files lists the datafiles the catalog already holds. Subpaths[i] is the
// relative path of the file stored at Fullpaths[i].
type Files struct {
	Subpaths  []string `json:"subpaths"`
	Fullpaths []string `json:"fullpaths"`
}

// UnmarshalJSON accepts an empty list, which the catalog returns when nothing
// has been uploaded yet.
func (f *Files) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || (len(trimmed) > 0 && trimmed[0] == '[') {
		*f = Files{}
		return nil
	}

	type files Files
	var v files
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*f = Files(v)
	return nil
}

// Known returns a map from relative path to full path.
func (f Files) Known() map[string]string {
	known := make(map[string]string, len(f.Subpaths))
	for i, subpath := range f.Subpaths {
		if i < len(f.Fullpaths) {
			known[subpath] = f.Fullpaths[i]
		}
	}

	return known
}

// ID is a catalog identifier that may be sent as a JSON number or string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*id = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*id = ID(n.String())
	}

	return nil
}

// Details is the catalog's answer for a sample or experiment lookup.
type Details struct {
	ID     ID                  `json:"id"`
	Files  Files               `json:"files"`
	Errors map[string][]string `json:"errors"`
}

// NotFound reports whether the catalog said the named entity does not exist.
func (d Details) NotFound(entity string) bool {
	msgs := d.Errors[entity]
	return len(msgs) == 1 && msgs[0] == notFoundMessage
}

func (d Details) errorText() string {
	var parts []string
	for entity, msgs := range d.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", entity, strings.Join(msgs, ", ")))
	}

	return strings.Join(parts, "; ")
}

// Target is where a new datafile is attached. Exactly one field is set.
type Target struct {
	SampleID     string
	ExperimentID string
}

func (t Target) String() string {
	if t.SampleID != "" {
		return "sample " + t.SampleID
	}

	return "experiment " + t.ExperimentID
}

type PostResult struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

type sampleBarcodes struct {
	SampleBarcodes string `json:"sample_barcodes"`
}
