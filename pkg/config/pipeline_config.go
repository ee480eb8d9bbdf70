package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/glbrc/seqsync/pkg/notify"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// PipelineConfig holds the deployment settings read from the JSON config file.
type PipelineConfig struct {
	DestinationEndpoint   string            `mapstructure:"destination_endpoint"`
	TmpPath               string            `mapstructure:"tmp_path"`
	ArchivePath           string            `mapstructure:"archive_path"`
	CatalogURL            string            `mapstructure:"catalog_url"`
	StagingURL            string            `mapstructure:"staging_url"`
	SignOnURL             string            `mapstructure:"signon_url"`
	AuthTokenURL          string            `mapstructure:"auth_token_url"`
	AuthKeysURL           string            `mapstructure:"auth_keys_url"`
	GlobusTransferURL     string            `mapstructure:"globus_transfer_url"`
	GlobusAuthURL         string            `mapstructure:"globus_auth_url"`
	TaskCeiling           int               `mapstructure:"task_ceiling"`
	RequestTimeoutSeconds int               `mapstructure:"request_timeout_seconds"`
	TransferDeadlineDays  int               `mapstructure:"transfer_deadline_days"`
	LockDir               string            `mapstructure:"lock_dir"`
	RelocationMode        string            `mapstructure:"relocation_mode"`
	DBDriver              string            `mapstructure:"db_driver"`
	Notify                notify.SMTPConfig `mapstructure:"notify"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("staging_url", "https://genome.jgi.doe.gov")
	v.SetDefault("signon_url", "https://signon.jgi.doe.gov/signon/create")
	v.SetDefault("auth_token_url", "https://login.glbrc.org/adfs/oauth2/token")
	v.SetDefault("auth_keys_url", "https://login.glbrc.org/adfs/discovery/keys")
	v.SetDefault("globus_transfer_url", "https://transfer.api.globusonline.org/v0.10")
	v.SetDefault("globus_auth_url", "https://auth.globus.org")
	v.SetDefault("task_ceiling", 100)
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("transfer_deadline_days", 7)
	v.SetDefault("lock_dir", "/tmp")
	v.SetDefault("relocation_mode", "move")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("notify.subject", "JGI data sync")
}

// LoadPipelineConfig reads the JSON file at path into a PipelineConfig. Keys
// bound on v before the call, such as command line flags, take precedence
// over the file.
func LoadPipelineConfig(v *viper.Viper, path string) (*PipelineConfig, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	setDefaults(v)
	v.SetConfigFile(expanded)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config %s: %w", expanded, err)
	}

	var cfg PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config %s: %w", expanded, err)
	}

	for _, p := range []*string{&cfg.TmpPath, &cfg.ArchivePath, &cfg.LockDir} {
		if *p, err = homedir.Expand(*p); err != nil {
			return nil, err
		}
		*p = strings.TrimRight(*p, "/")
	}

	return &cfg, nil
}

func (c *PipelineConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate checks the settings op depends on.
func (c *PipelineConfig) Validate(op string) error {
	var missing []string
	require := func(key, val string) {
		if val == "" {
			missing = append(missing, key)
		}
	}

	switch op {
	case "transfer":
		require("destination_endpoint", c.DestinationEndpoint)
		require("tmp_path", c.TmpPath)
	case "publish":
		require("tmp_path", c.TmpPath)
		require("archive_path", c.ArchivePath)
		require("catalog_url", c.CatalogURL)
	}

	if len(missing) != 0 {
		return fmt.Errorf("config keys not set: %s", strings.Join(missing, ", "))
	}

	if c.TaskCeiling <= 0 {
		return fmt.Errorf("task_ceiling must be positive, got %d", c.TaskCeiling)
	}

	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}

	switch c.RelocationMode {
	case "move", "copy":
	default:
		return fmt.Errorf("relocation_mode must be move or copy, got %q", c.RelocationMode)
	}

	return nil
}
