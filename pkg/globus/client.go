package globus

import (
	"context"
	"fmt"
	"time"

	"github.com/glbrc/seqsync/pkg/syncerr"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultTransferURL = "https://transfer.api.globusonline.org/v0.10"
	DefaultAuthURL     = "https://auth.globus.org"
	transferScope      = "urn:globus:auth:scope:transfer.api.globus.org:all"
)

// Client talks to the Globus Transfer API as a confidential client.
type Client struct {
	transfer     *resty.Client
	auth         *resty.Client
	clientID     string
	clientSecret string
	token        string
}

type ClientOption func(*clientOptions)

type clientOptions struct {
	transferURL string
	authURL     string
	timeout     time.Duration
}

func WithTransferURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.transferURL = url
	}
}

func WithAuthURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.authURL = url
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// CreateConfidentialClient creates a client for the given Globus client id and
// secret, and authenticates it.
func CreateConfidentialClient(clientID, clientSecret string, opts ...ClientOption) (*Client, error) {
	o := clientOptions{
		transferURL: DefaultTransferURL,
		authURL:     DefaultAuthURL,
		timeout:     10 * time.Second,
	}

	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		transfer:     resty.New().SetBaseURL(o.transferURL).SetTimeout(o.timeout),
		auth:         resty.New().SetBaseURL(o.authURL).SetTimeout(o.timeout),
		clientID:     clientID,
		clientSecret: clientSecret,
	}

	if err := c.Authenticate(context.Background()); err != nil {
		return nil, err
	}

	return c, nil
}

// Authenticate requests a transfer token using the client credentials grant.
func (c *Client) Authenticate(ctx context.Context) error {
	var token tokenResponse
	resp, err := c.auth.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      transferScope,
		}).
		SetResult(&token).
		Post("/v2/oauth2/token")

	if err := c.checkResponse("authenticate", resp, err); err != nil {
		return syncerr.Fatal("globus authenticate", err)
	}

	if token.AccessToken == "" {
		return syncerr.Fatalf("globus authenticate", "no access token returned")
	}

	c.token = token.AccessToken
	c.transfer.SetAuthToken(c.token)

	return nil
}

// Whoami introspects the client's transfer token. An inactive token means the
// login has to be redone before any transfer can be submitted.
func (c *Client) Whoami(ctx context.Context) (LoginStatus, error) {
	var status LoginStatus
	resp, err := c.auth.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetFormData(map[string]string{"token": c.token}).
		SetResult(&status).
		Post("/v2/oauth2/token/introspect")

	return status, c.checkResponse("whoami", resp, err)
}

// GetTaskList lists tasks owned by the client, filtered with the Globus filter
// syntax, eg "status:ACTIVE".
func (c *Client) GetTaskList(ctx context.Context, filter string, limit int) (TaskList, error) {
	var tasks TaskList
	req := c.transfer.R().SetContext(ctx).SetResult(&tasks)
	if filter != "" {
		req.SetQueryParam("filter", filter)
	}

	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}

	resp, err := req.Get("/task_list")

	return tasks, c.checkResponse("task list", resp, err)
}

// ActiveTaskCount returns the number of tasks currently in the ACTIVE state.
func (c *Client) ActiveTaskCount(ctx context.Context) (int, error) {
	tasks, err := c.GetTaskList(ctx, "status:"+TaskStatusActive, 1000)
	if err != nil {
		return 0, err
	}

	if tasks.Total > len(tasks.Tasks) {
		return tasks.Total, nil
	}

	return len(tasks.Tasks), nil
}

func (c *Client) EndpointIsActivated(ctx context.Context, endpointID string) (bool, error) {
	var ep endpoint
	resp, err := c.transfer.R().
		SetContext(ctx).
		SetPathParam("endpoint", endpointID).
		SetResult(&ep).
		Get("/endpoint/{endpoint}")

	if err := c.checkResponse("endpoint is activated", resp, err); err != nil {
		return false, err
	}

	return ep.Activated, nil
}

// ActivateEndpoint activates endpointID with MyProxy credentials.
func (c *Client) ActivateEndpoint(ctx context.Context, endpointID string, creds MyProxyCredentials) (ActivationResult, error) {
	var reqs activationRequirements
	resp, err := c.transfer.R().
		SetContext(ctx).
		SetPathParam("endpoint", endpointID).
		SetResult(&reqs).
		Get("/endpoint/{endpoint}/activation_requirements")

	if err := c.checkResponse("activation requirements", resp, err); err != nil {
		return ActivationResult{}, err
	}

	lifetime := creds.LifetimeHours
	if lifetime <= 0 {
		lifetime = DefaultMyProxyLifetimeH
	}

	var myproxy []activationRequirement
	for _, r := range reqs.Requirements {
		if r.Type != myProxyRequirement {
			continue
		}

		switch r.Name {
		case "username":
			r.Value = &creds.Username
		case "passphrase":
			r.Value = &creds.Password
		case "lifetime_in_hours":
			v := fmt.Sprintf("%d", lifetime)
			r.Value = &v
		}

		myproxy = append(myproxy, r)
	}

	reqs.Requirements = myproxy

	var result ActivationResult
	resp, err = c.transfer.R().
		SetContext(ctx).
		SetPathParam("endpoint", endpointID).
		SetBody(reqs).
		SetResult(&result).
		Post("/endpoint/{endpoint}/activate")

	return result, c.checkResponse("activate endpoint", resp, err)
}

// SubmitTransfer submits a transfer task. The returned result carries the
// service's acceptance code, which the caller must check.
func (c *Client) SubmitTransfer(ctx context.Context, s TransferSubmission) (TransferSubmissionResult, error) {
	var id submissionID
	resp, err := c.transfer.R().SetContext(ctx).SetResult(&id).Get("/submission_id")
	if err := c.checkResponse("submission id", resp, err); err != nil {
		return TransferSubmissionResult{}, err
	}

	doc := transferDocument{
		DataType:            transferDataType,
		SubmissionID:        id.Value,
		SourceEndpoint:      s.SourceEndpoint,
		DestinationEndpoint: s.DestinationEndpoint,
		Label:               s.Label,
		PreserveTimestamp:   s.PreserveMtime,
		Items: []transferItem{
			{
				DataType:        transferItemDataType,
				SourcePath:      s.SourcePath,
				DestinationPath: s.DestinationPath,
				Recursive:       s.Recursive,
			},
		},
	}

	if !s.Deadline.IsZero() {
		doc.Deadline = s.Deadline.Format(time.RFC3339)
	}

	var result TransferSubmissionResult
	resp, err = c.transfer.R().
		SetContext(ctx).
		SetBody(doc).
		SetResult(&result).
		Post("/transfer")

	return result, c.checkResponse("submit transfer", resp, err)
}

func (c *Client) GetTask(ctx context.Context, taskID string) (Task, error) {
	var task Task
	resp, err := c.transfer.R().
		SetContext(ctx).
		SetPathParam("task", taskID).
		SetResult(&task).
		Get("/task/{task}")

	return task, c.checkResponse("task show", resp, err)
}

// GetTaskSuccessfulTransfers returns one page of the files a task transferred,
// starting at marker.
func (c *Client) GetTaskSuccessfulTransfers(ctx context.Context, taskID string, marker int) (TransferItems, error) {
	var transfers TransferItems
	req := c.transfer.R().
		SetContext(ctx).
		SetPathParam("task", taskID).
		SetResult(&transfers)

	if marker != 0 {
		req.SetQueryParam("marker", fmt.Sprintf("%d", marker))
	}

	resp, err := req.Get("/task/{task}/successful_transfers")

	return transfers, c.checkResponse("successful transfers", resp, err)
}

// ListSuccessfulTransfers pages through every successful transfer for a task.
func (c *Client) ListSuccessfulTransfers(ctx context.Context, taskID string) ([]TransferItem, error) {
	var (
		all    []TransferItem
		marker int
	)

	for {
		page, err := c.GetTaskSuccessfulTransfers(ctx, taskID, marker)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Transfers...)
		if page.NextMarker == 0 || page.NextMarker == marker {
			return all, nil
		}

		marker = page.NextMarker
	}
}

// checkResponse turns transport failures into fatal errors, since they affect
// every row, and API error responses into row level errors.
func (c *Client) checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return syncerr.Fatal("globus "+op, err)
	}

	if resp.IsError() {
		_, apiErr := ToErrorFromResponse(resp)
		return syncerr.Row("globus "+op, apiErr)
	}

	return nil
}
