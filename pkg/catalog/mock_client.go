package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/glbrc/seqsync/pkg/syncerr"
)

// MockClient is an in-memory catalog. Posted files are recorded and become
// visible to later lookups, so repeated runs see their own uploads.
type MockClient struct {
	mu sync.Mutex

	Err     error
	PostErr error
	// FailPostAfter makes every post after the first N fail. Zero disables it.
	FailPostAfter int

	Samples map[string]Files
	// Experiments maps an experiment id to the samples it holds.
	Experiments     map[string][]string
	ExperimentFiles map[string]Files

	Posts   []Post
	Lookups []string
}

type Post struct {
	Target  Target
	RelPath string
}

func NewMockClient() *MockClient {
	return &MockClient{
		Samples:         make(map[string]Files),
		Experiments:     make(map[string][]string),
		ExperimentFiles: make(map[string]Files),
	}
}

func (c *MockClient) GetSampleFiles(_ context.Context, sampleID string) (Details, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lookups = append(c.Lookups, "sample:"+sampleID)
	if c.Err != nil {
		return Details{}, c.Err
	}

	files, ok := c.Samples[sampleID]
	if !ok {
		return Details{}, syncerr.Row("catalog sample details", fmt.Errorf("%w: sample %s", ErrNotFound, sampleID))
	}

	return Details{ID: ID(sampleID), Files: files}, nil
}

func (c *MockClient) GetExperimentFiles(_ context.Context, experimentID string) (Details, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lookups = append(c.Lookups, "experiment:"+experimentID)
	if c.Err != nil {
		return Details{}, c.Err
	}

	if _, ok := c.Experiments[experimentID]; !ok {
		return Details{}, syncerr.Row("catalog experiment details", fmt.Errorf("%w: experiment %s", ErrNotFound, experimentID))
	}

	return Details{ID: ID(experimentID), Files: c.ExperimentFiles[experimentID]}, nil
}

func (c *MockClient) GetExperimentFilesForSamples(_ context.Context, sampleIDs []string) (Details, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lookups = append(c.Lookups, "samples:"+strings.Join(sampleIDs, ","))
	if c.Err != nil {
		return Details{}, c.Err
	}

	found := ""
	for _, sampleID := range sampleIDs {
		experimentID := c.experimentFor(sampleID)
		if experimentID == "" {
			return Details{}, syncerr.Row("catalog experiment details", fmt.Errorf("%w: sample %s", ErrNotFound, sampleID))
		}

		if found != "" && found != experimentID {
			return Details{}, syncerr.Row("catalog experiment details", ErrMultipleExperiments)
		}

		found = experimentID
	}

	return Details{ID: ID(found), Files: c.ExperimentFiles[found]}, nil
}

func (c *MockClient) experimentFor(sampleID string) string {
	for experimentID, samples := range c.Experiments {
		for _, s := range samples {
			if s == sampleID {
				return experimentID
			}
		}
	}

	return ""
}

func (c *MockClient) PostFile(_ context.Context, target Target, relPath string) (PostResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PostErr != nil {
		return PostResult{}, c.PostErr
	}

	if c.FailPostAfter > 0 && len(c.Posts) >= c.FailPostAfter {
		return PostResult{}, syncerr.File("catalog post", fmt.Errorf("%w: (HTTP Status: 500) upload failed", ErrCatalogAPI))
	}

	c.Posts = append(c.Posts, Post{Target: target, RelPath: relPath})

	var key, fullPath string
	if target.SampleID != "" {
		key = target.SampleID
		fullPath = path.Join("samples", key, relPath)
		files := c.Samples[key]
		files.Subpaths = append(files.Subpaths, relPath)
		files.Fullpaths = append(files.Fullpaths, fullPath)
		c.Samples[key] = files
	} else {
		key = target.ExperimentID
		fullPath = path.Join("experiments", key, relPath)
		files := c.ExperimentFiles[key]
		files.Subpaths = append(files.Subpaths, relPath)
		files.Fullpaths = append(files.Fullpaths, fullPath)
		c.ExperimentFiles[key] = files
	}

	return PostResult{Message: uploadSuccessMessage, Path: fullPath}, nil
}
