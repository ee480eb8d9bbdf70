package staging

import (
	"context"
	"fmt"

	"github.com/glbrc/seqsync/pkg/syncerr"
)

// MockClient serves canned staging responses. Responses maps a staging handle
// to the poll body the provider would return for it.
type MockClient struct {
	Err        error
	ProjectIDs map[string]string
	Handles    map[string]string
	Responses  map[string]string

	Resolved  []string
	Requested []string
	Polled    []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		ProjectIDs: make(map[string]string),
		Handles:    make(map[string]string),
		Responses:  make(map[string]string),
	}
}

func (c *MockClient) SignOn(_ context.Context, _, _ string) error {
	return c.Err
}

func (c *MockClient) ResolveProjectID(_ context.Context, datasetID string) (string, error) {
	c.Resolved = append(c.Resolved, datasetID)
	if c.Err != nil {
		return "", c.Err
	}

	portalID, ok := c.ProjectIDs[datasetID]
	if !ok {
		return "", syncerr.Rowf("staging resolve portal id", "no portal id for %s", datasetID)
	}

	return portalID, nil
}

func (c *MockClient) RequestStaging(_ context.Context, portalID string) (string, error) {
	c.Requested = append(c.Requested, portalID)
	if c.Err != nil {
		return "", c.Err
	}

	handle, ok := c.Handles[portalID]
	if !ok {
		handle = fmt.Sprintf("https://staging.example.org/request/%s", portalID)
	}

	if s, ok := MatchSentinel(handle); ok {
		return "", syncerr.Fatalf("staging request", "%s", s.Reason)
	}

	return handle, nil
}

func (c *MockClient) PollStaging(_ context.Context, handle string) (PollResult, error) {
	c.Polled = append(c.Polled, handle)
	if c.Err != nil {
		return PollResult{}, c.Err
	}

	text := c.Responses[handle]
	result := PollResult{Status: ClassifyPoll(text), Text: text}
	if result.Status == StatusReady {
		src, err := ParseSource(text)
		if err != nil {
			return PollResult{}, syncerr.Row("staging poll", err)
		}
		result.Source = src
	}

	return result, nil
}
