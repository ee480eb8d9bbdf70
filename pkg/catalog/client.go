package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/syncerr"
	"github.com/go-resty/resty/v2"
)

var (
	ErrCatalogAPI          = errors.New("catalog api")
	ErrNotFound            = errors.New("not found in catalog")
	ErrMultipleExperiments = errors.New("samples span more than one experiment")
)

const (
	sampleDetailsPath     = "/api/v2/datafiles/sample_details"
	experimentDetailsPath = "/api/v2/datafiles/experiment_details"
	datafilesPath         = "/api/v2/datafiles"
)

// Client calls the data catalog with an id_token issued by the auth service.
type Client struct {
	r *resty.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthScheme("Token").
		SetAuthToken(token).
		SetAllowGetMethodPayload(true)

	return &Client{r: r}
}

// GetSampleFiles returns the files already catalogued for a sample.
func (c *Client) GetSampleFiles(ctx context.Context, sampleID string) (Details, error) {
	var details Details
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParam("sample_barcode", sampleID).
		SetResult(&details).
		Get(sampleDetailsPath)

	if err := checkResponse("sample details", resp, err); err != nil {
		return Details{}, err
	}

	return details, detailsError("sample details", "sample", sampleID, details)
}

// GetExperimentFiles returns the files already catalogued for an experiment.
// The catalog answers with a list holding at most one experiment.
func (c *Client) GetExperimentFiles(ctx context.Context, experimentID string) (Details, error) {
	var details []Details
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParam("experiment_id", experimentID).
		SetResult(&details).
		Get(experimentDetailsPath)

	if err := checkResponse("experiment details", resp, err); err != nil {
		return Details{}, err
	}

	if len(details) == 0 {
		return Details{}, syncerr.Row("experiment details", fmt.Errorf("%w: experiment %s", ErrNotFound, experimentID))
	}

	d := details[0]
	if d.ID == "" {
		d.ID = ID(experimentID)
	}

	return d, detailsError("experiment details", "experiment", experimentID, d)
}

// GetExperimentFilesForSamples finds the single experiment that holds all of
// sampleIDs. A response without an id means the samples are split across
// experiments.
func (c *Client) GetExperimentFilesForSamples(ctx context.Context, sampleIDs []string) (Details, error) {
	barcodes := strings.Join(sampleIDs, ",")
	var details Details
	resp, err := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sampleBarcodes{SampleBarcodes: barcodes}).
		SetResult(&details).
		Get(experimentDetailsPath)

	if err := checkResponse("experiment details", resp, err); err != nil {
		return Details{}, err
	}

	if err := detailsError("experiment details", "experiment", barcodes, details); err != nil {
		return Details{}, err
	}

	if details.ID == "" {
		return Details{}, syncerr.Row("experiment details", fmt.Errorf("%w: %s", ErrMultipleExperiments, barcodes))
	}

	return details, nil
}

// PostFile registers relPath with the catalog under target. The catalog only
// needs a placeholder upload; the data itself is relocated into archival
// storage at the returned path. Failures are file level.
func (c *Client) PostFile(ctx context.Context, target Target, relPath string) (PostResult, error) {
	dir, name := path.Split(relPath)
	params := map[string]string{
		"description":    name,
		"custom_subpath": dir,
	}

	if target.SampleID != "" {
		params["sample_barcode"] = target.SampleID
	} else {
		params["experiment_id"] = target.ExperimentID
	}

	var result PostResult
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetFileReader("file", name, bytes.NewReader(nil)).
		SetResult(&result).
		Post(datafilesPath)

	if err != nil {
		return PostResult{}, syncerr.File("catalog post", err)
	}

	log.WithField("path", relPath).Debugf("catalog post response: %s", resp.String())

	if resp.IsError() {
		return PostResult{}, syncerr.File("catalog post", apiError(resp))
	}

	if result.Message != uploadSuccessMessage {
		return PostResult{}, syncerr.File("catalog post", fmt.Errorf("%w: unexpected upload message %q", ErrCatalogAPI, result.Message))
	}

	return result, nil
}

// checkResponse makes transport failures fatal, since an unreachable catalog
// would otherwise send every row to intervention, and API failures row level.
func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return syncerr.Fatal("catalog "+op, err)
	}

	log.Debugf("catalog %s response: %s", op, resp.String())

	if resp.IsError() {
		return syncerr.Row("catalog "+op, apiError(resp))
	}

	return nil
}

func apiError(resp *resty.Response) error {
	return fmt.Errorf("%w: (HTTP Status: %d) %s", ErrCatalogAPI, resp.StatusCode(), strings.TrimSpace(resp.String()))
}

func detailsError(op, entity, id string, d Details) error {
	if len(d.Errors) == 0 {
		return nil
	}

	if d.NotFound(entity) {
		return syncerr.Row("catalog "+op, fmt.Errorf("%w: %s %s", ErrNotFound, entity, id))
	}

	return syncerr.Row("catalog "+op, fmt.Errorf("%w: %s", ErrCatalogAPI, d.errorText()))
}
