package staging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/syncerr"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultPortalURL = "https://genome.jgi.doe.gov"
	DefaultSignOnURL = "https://signon.jgi.doe.gov/signon/create"

	portalIDPath = "/portal/ext-api/genome-admin/getPortalIdByParameter"
	requestPath  = "/portal/ext-api/downloads/globus/request"
)

// Client is a session with the staging provider. The sign on cookie is kept in
// the resty client's cookie jar and sent on every later call.
type Client struct {
	r          *resty.Client
	signOnURL  string
	globusUser string
}

type ClientOption func(*Client)

func WithPortalURL(url string) ClientOption {
	return func(c *Client) {
		c.r.SetBaseURL(url)
	}
}

func WithSignOnURL(url string) ClientOption {
	return func(c *Client) {
		c.signOnURL = url
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.r.SetTimeout(timeout)
	}
}

// NewClient creates a client that requests staging on behalf of globusUser.
func NewClient(globusUser string, opts ...ClientOption) *Client {
	c := &Client{
		r:          resty.New().SetBaseURL(DefaultPortalURL).SetTimeout(10 * time.Second),
		signOnURL:  DefaultSignOnURL,
		globusUser: globusUser,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SignOn opens a provider session. Any failure here is fatal since no later
// call can succeed without it.
func (c *Client) SignOn(ctx context.Context, user, password string) error {
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"login": user, "password": password}).
		Post(c.signOnURL)

	if err != nil {
		return syncerr.Fatal("staging sign on", err)
	}

	if resp.IsError() {
		return syncerr.Fatalf("staging sign on", "(HTTP Status: %d) sign on refused", resp.StatusCode())
	}

	return nil
}

// ResolveProjectID looks up the provider's portal identifier for a dataset.
func (c *Client) ResolveProjectID(ctx context.Context, datasetID string) (string, error) {
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"parameterName": "jgiProjectId", "parameterValue": datasetID}).
		Get(portalIDPath)

	if err != nil {
		return "", syncerr.Fatal("staging resolve portal id", err)
	}

	if resp.IsError() {
		return "", syncerr.Rowf("staging resolve portal id", "(HTTP Status: %d) %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	portalID := strings.TrimSpace(resp.String())
	if portalID == "" {
		return "", syncerr.Rowf("staging resolve portal id", "no portal id for %s", datasetID)
	}

	return portalID, nil
}

// RequestStaging asks the provider to stage a portal's data for the transfer
// user and returns the staging handle. Outage sentinels are fatal.
func (c *Client) RequestStaging(ctx context.Context, portalID string) (string, error) {
	body := fmt.Sprintf("portal=%s&globusName=%s&sendMail=False", portalID, c.globusUser)
	resp, err := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(body).
		Post(requestPath)

	if err != nil {
		return "", syncerr.Fatal("staging request", err)
	}

	handle := strings.TrimSpace(resp.String())
	if s, ok := MatchSentinel(handle); ok {
		return "", syncerr.Fatalf("staging request", "%s (phrases %s)", s.Reason, PhraseTableVersion)
	}

	if resp.IsError() {
		return "", syncerr.Rowf("staging request", "(HTTP Status: %d) %s", resp.StatusCode(), handle)
	}

	if handle == "" {
		return "", syncerr.Rowf("staging request", "empty staging handle for portal %s", portalID)
	}

	return handle, nil
}

// PollResult is the interpreted state of a staging request.
type PollResult struct {
	Status PollStatus
	Text   string
	Source Source
}

// PollStaging fetches the staging handle and interprets the response. A ready
// result always carries a parsed Source.
func (c *Client) PollStaging(ctx context.Context, handle string) (PollResult, error) {
	if !strings.Contains(handle, "http") {
		return PollResult{}, syncerr.Rowf("staging poll", "staging handle %q is not a url", handle)
	}

	resp, err := c.r.R().SetContext(ctx).Get(handle)
	if err != nil {
		return PollResult{}, syncerr.Fatal("staging poll", err)
	}

	text := resp.String()
	log.WithField("handle", handle).Debugf("staging poll response: %s", text)

	result := PollResult{Status: ClassifyPoll(text), Text: text}
	if result.Status != StatusReady {
		return result, nil
	}

	if result.Source, err = ParseSource(text); err != nil {
		return PollResult{}, syncerr.Row("staging poll", err)
	}

	return result, nil
}
