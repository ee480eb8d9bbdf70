package staging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glbrc/seqsync/pkg/syncerr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readyText = "Download request completed. Your data is at " +
	"https://app.globus.org/file-manager?origin_id=abc-123&origin_path=%2Fglobal%2Fdna%2F1203231%2F"

func TestClassifyPoll(t *testing.T) {
	tests := []struct {
		text     string
		expected PollStatus
		name     string
	}{
		{text: readyText, expected: StatusReady, name: "completed with data"},
		{text: "Download request completed. No data are available for download.", expected: StatusNoData, name: "completed with no data"},
		{text: "Download request is being processed.", expected: StatusInProgress, name: "in progress"},
		{text: "Download request has been submitted.", expected: StatusSubmitted, name: "submitted"},
		{text: "Download request failed. Reason: disk quota", expected: StatusFailed, name: "failed"},
		{text: "<html>Maintenance</html>", expected: StatusUnknown, name: "new wording"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ClassifyPoll(test.text))
		})
	}
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource(readyText)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", src.Endpoint)
	assert.Equal(t, "/global/dna/1203231/", src.Path)

	_, err = ParseSource("Download request completed.")
	assert.Error(t, err)

	_, err = ParseSource("https://app.globus.org/file-manager?origin_path=%2Fx")
	assert.Error(t, err)
}

func TestMatchSentinel(t *testing.T) {
	_, ok := MatchSentinel("Error: Exception while getting ID for Globus user bob")
	assert.True(t, ok)
	_, ok = MatchSentinel("This service is temporarily unavailable. Please try again later.")
	assert.True(t, ok)
	_, ok = MatchSentinel("https://genome.jgi.doe.gov/portal/request/55")
	assert.False(t, ok)
}

func newFakeProvider(t *testing.T, stagingBody string) (*Client, *httptest.Server) {
	e := echo.New()
	e.POST("/signon/create", func(c echo.Context) error {
		if c.QueryParam("login") != "user" {
			return c.String(http.StatusUnauthorized, "bad login")
		}
		c.SetCookie(&http.Cookie{Name: "jgi_session", Value: "s1", Path: "/"})
		return c.String(http.StatusOK, "ok")
	})
	e.GET(portalIDPath, func(c echo.Context) error {
		if _, err := c.Cookie("jgi_session"); err != nil {
			return c.String(http.StatusForbidden, "no session")
		}
		if c.QueryParam("parameterValue") == "unknown" {
			return c.String(http.StatusOK, "  ")
		}
		return c.String(http.StatusOK, "Portal"+c.QueryParam("parameterValue")+"\n")
	})
	e.POST(requestPath, func(c echo.Context) error {
		if c.FormValue("globusName") != "sync-user" || c.FormValue("sendMail") != "False" {
			return c.String(http.StatusBadRequest, "bad form")
		}
		return c.String(http.StatusOK, stagingBody)
	})
	e.GET("/status/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, readyText)
	})
	e.GET("/slow", func(c echo.Context) error {
		time.Sleep(300 * time.Millisecond)
		return c.String(http.StatusOK, "late")
	})

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	client := NewClient("sync-user",
		WithPortalURL(server.URL),
		WithSignOnURL(server.URL+"/signon/create"),
		WithTimeout(100*time.Millisecond))
	return client, server
}

func TestClient_StagingRoundTrip(t *testing.T) {
	client, server := newFakeProvider(t, "https://example.org/status/1")
	ctx := context.Background()

	require.NoError(t, client.SignOn(ctx, "user", "pw"))

	portalID, err := client.ResolveProjectID(ctx, "1203231")
	require.NoError(t, err)
	assert.Equal(t, "Portal1203231", portalID)

	handle, err := client.RequestStaging(ctx, portalID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/status/1", handle)

	result, err := client.PollStaging(ctx, server.URL+"/status/1")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, result.Status)
	assert.Equal(t, "abc-123", result.Source.Endpoint)
}

func TestClient_SignOnRefusedIsFatal(t *testing.T) {
	client, _ := newFakeProvider(t, "")
	err := client.SignOn(context.Background(), "nobody", "pw")
	require.Error(t, err)
	assert.True(t, syncerr.IsFatal(err))
}

func TestClient_EmptyPortalIDIsRowLevel(t *testing.T) {
	client, _ := newFakeProvider(t, "")
	require.NoError(t, client.SignOn(context.Background(), "user", "pw"))
	_, err := client.ResolveProjectID(context.Background(), "unknown")
	require.Error(t, err)
	assert.Equal(t, syncerr.KindRow, syncerr.KindOf(err))
}

func TestClient_SentinelIsFatal(t *testing.T) {
	client, _ := newFakeProvider(t, "This service is temporarily unavailable. Please try again later")
	_, err := client.RequestStaging(context.Background(), "Portal1")
	require.Error(t, err)
	assert.True(t, syncerr.IsFatal(err))
}

func TestClient_TimeoutIsFatal(t *testing.T) {
	client, server := newFakeProvider(t, "")
	_, err := client.PollStaging(context.Background(), server.URL+"/slow")
	require.Error(t, err)
	assert.True(t, syncerr.IsFatal(err))
}

func TestClient_NonURLHandleIsRowLevel(t *testing.T) {
	client, _ := newFakeProvider(t, "")
	_, err := client.PollStaging(context.Background(), "not-a-handle")
	require.Error(t, err)
	assert.Equal(t, syncerr.KindRow, syncerr.KindOf(err))
}
