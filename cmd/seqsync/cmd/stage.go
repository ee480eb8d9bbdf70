package cmd

import (
	"context"

	"github.com/glbrc/seqsync/pkg/pipeline"
	"github.com/glbrc/seqsync/pkg/staging"
	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Request staging for every New dataset",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run("stage", nil, func(ctx context.Context, e *env) (driver, error) {
			client, err := newStagingClient(ctx, e)
			if err != nil {
				return nil, err
			}

			return pipeline.NewStagingDriver(e.requests, client, e.options()), nil
		})
	},
}

func init() {
	rootCmd.AddCommand(stageCmd)
}

func newStagingClient(ctx context.Context, e *env) (*staging.Client, error) {
	client := staging.NewClient(e.creds.GlobusUser,
		staging.WithPortalURL(e.cfg.StagingURL),
		staging.WithSignOnURL(e.cfg.SignOnURL),
		staging.WithTimeout(e.cfg.RequestTimeout()))

	if err := client.SignOn(ctx, e.creds.JGIUser, e.creds.JGIPassword); err != nil {
		return nil, err
	}

	e.log.Debug("Signed on to the staging service")

	return client, nil
}
