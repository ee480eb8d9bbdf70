package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glbrc/seqsync/pkg/syncerr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	posted []map[string]string
}

func (f *fakeCatalog) routes(e *echo.Echo) {
	e.GET(sampleDetailsPath, func(c echo.Context) error {
		switch c.QueryParam("sample_barcode") {
		case "S1":
			return c.JSON(http.StatusOK, map[string]any{
				"files": map[string]any{
					"subpaths":  []string{"1203231/Raw/a.fastq.gz"},
					"fullpaths": []string{"glbrc/samples/S1/1203231/Raw/a.fastq.gz"},
				},
			})
		case "S2":
			return c.JSON(http.StatusOK, map[string]any{"files": []string{}})
		case "missing":
			return c.JSON(http.StatusOK, map[string]any{"errors": map[string][]string{"sample": {"could not be found"}}})
		default:
			return c.String(http.StatusInternalServerError, "boom")
		}
	})

	e.GET(experimentDetailsPath, func(c echo.Context) error {
		if id := c.QueryParam("experiment_id"); id != "" {
			if id == "E0" {
				return c.JSON(http.StatusOK, []any{})
			}
			return c.JSON(http.StatusOK, []map[string]any{{"id": 77, "files": map[string]any{"subpaths": []string{"x"}, "fullpaths": []string{"e/x"}}}})
		}

		body, _ := io.ReadAll(c.Request().Body)
		var req sampleBarcodes
		if err := json.Unmarshal(body, &req); err != nil {
			return c.String(http.StatusBadRequest, "bad body")
		}

		if req.SampleBarcodes == "S1,S9" {
			return c.JSON(http.StatusOK, map[string]any{"files": []string{}})
		}
		return c.JSON(http.StatusOK, map[string]any{"id": "12", "files": []string{}})
	})

	e.POST(datafilesPath, func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Token id-token" {
			return c.String(http.StatusUnauthorized, "no token")
		}
		if _, err := c.FormFile("file"); err != nil {
			return c.String(http.StatusBadRequest, "no file")
		}
		params := map[string]string{
			"sample_barcode": c.QueryParam("sample_barcode"),
			"experiment_id":  c.QueryParam("experiment_id"),
			"description":    c.QueryParam("description"),
			"custom_subpath": c.QueryParam("custom_subpath"),
		}
		f.posted = append(f.posted, params)
		if params["description"] == "reject.fastq" {
			return c.String(http.StatusUnprocessableEntity, "rejected")
		}
		return c.JSON(http.StatusOK, map[string]string{
			"message": "Successfully uploaded datafile",
			"path":    "glbrc/" + params["custom_subpath"] + params["description"],
		})
	})
}

func newFakeClient(t *testing.T, f *fakeCatalog) *Client {
	e := echo.New()
	f.routes(e)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "id-token", 2*time.Second)
}

func TestClient_GetSampleFiles(t *testing.T) {
	client := newFakeClient(t, &fakeCatalog{})
	ctx := context.Background()

	details, err := client.GetSampleFiles(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1203231/Raw/a.fastq.gz": "glbrc/samples/S1/1203231/Raw/a.fastq.gz"}, details.Files.Known())

	details, err = client.GetSampleFiles(ctx, "S2")
	require.NoError(t, err)
	assert.Empty(t, details.Files.Known())

	_, err = client.GetSampleFiles(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, syncerr.KindRow, syncerr.KindOf(err))

	_, err = client.GetSampleFiles(ctx, "broken")
	assert.ErrorIs(t, err, ErrCatalogAPI)
	assert.Equal(t, syncerr.KindRow, syncerr.KindOf(err))
}

func TestClient_GetExperimentFiles(t *testing.T) {
	client := newFakeClient(t, &fakeCatalog{})
	ctx := context.Background()

	details, err := client.GetExperimentFiles(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, ID("77"), details.ID)
	assert.Equal(t, []string{"x"}, details.Files.Subpaths)

	_, err = client.GetExperimentFiles(ctx, "E0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_GetExperimentFilesForSamples(t *testing.T) {
	client := newFakeClient(t, &fakeCatalog{})
	ctx := context.Background()

	details, err := client.GetExperimentFilesForSamples(ctx, []string{"S1", "S2"})
	require.NoError(t, err)
	assert.Equal(t, ID("12"), details.ID)

	_, err = client.GetExperimentFilesForSamples(ctx, []string{"S1", "S9"})
	assert.ErrorIs(t, err, ErrMultipleExperiments)
}

func TestClient_PostFile(t *testing.T) {
	f := &fakeCatalog{}
	client := newFakeClient(t, f)
	ctx := context.Background()

	result, err := client.PostFile(ctx, Target{SampleID: "S1"}, "1203231/Raw/b.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, "glbrc/1203231/Raw/b.fastq.gz", result.Path)
	require.Len(t, f.posted, 1)
	assert.Equal(t, "S1", f.posted[0]["sample_barcode"])
	assert.Equal(t, "", f.posted[0]["experiment_id"])
	assert.Equal(t, "b.fastq.gz", f.posted[0]["description"])
	assert.Equal(t, "1203231/Raw/", f.posted[0]["custom_subpath"])

	_, err = client.PostFile(ctx, Target{ExperimentID: "12"}, "1203231/reject.fastq")
	require.Error(t, err)
	assert.Equal(t, syncerr.KindFile, syncerr.KindOf(err))
	assert.Equal(t, "12", f.posted[1]["experiment_id"])
}

func TestClient_UnreachableIsFatal(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "id-token", time.Second)
	_, err := client.GetSampleFiles(context.Background(), "S1")
	require.Error(t, err)
	assert.True(t, syncerr.IsFatal(err))
}

func TestMockClient_PostsBecomeKnown(t *testing.T) {
	mock := NewMockClient()
	mock.Samples["S1"] = Files{}
	ctx := context.Background()

	_, err := mock.PostFile(ctx, Target{SampleID: "S1"}, "d/a.fastq")
	require.NoError(t, err)

	details, err := mock.GetSampleFiles(ctx, "S1")
	require.NoError(t, err)
	assert.Contains(t, details.Files.Known(), "d/a.fastq")
}
