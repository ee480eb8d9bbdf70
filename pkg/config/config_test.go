package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadPipelineConfig(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"destination_endpoint": "glbrc-ep",
		"tmp_path": "/data/jgi/",
		"archive_path": "/minio/glbrc",
		"catalog_url": "https://catalog.example.org",
		"notify": {"smtp_host": "mail.example.org", "to": "ops@example.org"}
	}`)

	cfg, err := LoadPipelineConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "glbrc-ep", cfg.DestinationEndpoint)
	assert.Equal(t, "/data/jgi", cfg.TmpPath)
	assert.Equal(t, 100, cfg.TaskCeiling)
	assert.Equal(t, 7, cfg.TransferDeadlineDays)
	assert.Equal(t, "move", cfg.RelocationMode)
	assert.Equal(t, "mail.example.org", cfg.Notify.Host)
	assert.Equal(t, "JGI data sync", cfg.Notify.Subject)
	assert.NoError(t, cfg.Validate("publish"))
}

func TestLoadPipelineConfig_OverrideWins(t *testing.T) {
	path := writeFile(t, "config.json", `{"relocation_mode": "move", "tmp_path": "/t", "archive_path": "/a", "catalog_url": "c"}`)
	v := viper.New()
	v.Set("relocation_mode", "copy")

	cfg, err := LoadPipelineConfig(v, path)
	require.NoError(t, err)
	assert.Equal(t, "copy", cfg.RelocationMode)
}

func TestLoadPipelineConfig_Missing(t *testing.T) {
	_, err := LoadPipelineConfig(viper.New(), filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	path := writeFile(t, "config.json", `{"relocation_mode": "link"}`)
	cfg, err := LoadPipelineConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Error(t, cfg.Validate("stage"))
	cfg.RelocationMode = "copy"
	assert.NoError(t, cfg.Validate("stage"))
	assert.ErrorContains(t, cfg.Validate("transfer"), "destination_endpoint")
}

func TestLoadCredentials(t *testing.T) {
	c := NewMapConfig(map[string]string{KeyJGIUser: "u", KeyJGIPassword: "p"})
	_, err := LoadCredentials(c, "stage")
	assert.ErrorContains(t, err, KeyGlobusUser)

	c = NewMapConfig(map[string]string{KeyJGIUser: "u", KeyJGIPassword: "p", KeyGlobusUser: "g"})
	creds, err := LoadCredentials(c, "stage")
	require.NoError(t, err)
	assert.Equal(t, "g", creds.GlobusUser)
}

func TestDotenvConfig(t *testing.T) {
	path := writeFile(t, ".env", "SEQSYNC_TEST_KEY=from-file\nSEQSYNC_TEST_INT=12\n")
	t.Setenv("SEQSYNC_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("SEQSYNC_TEST_KEY"))
	t.Setenv("SEQSYNC_TEST_INT", "")
	require.NoError(t, os.Unsetenv("SEQSYNC_TEST_INT"))

	c := NewDotenvConfig(path)
	require.NoError(t, c.Load())
	assert.Equal(t, "from-file", c.GetKey("SEQSYNC_TEST_KEY"))
	assert.Equal(t, 12, c.GetIntKeyWithDefault("SEQSYNC_TEST_INT", 0))
	assert.Equal(t, "dflt", c.GetKeyWithDefault("SEQSYNC_TEST_NONE", "dflt"))
	assert.NoError(t, NewDotenvConfig("").Load())
}
