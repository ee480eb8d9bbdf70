package cmd

import (
	"context"

	"github.com/glbrc/seqsync/pkg/globus"
	"github.com/glbrc/seqsync/pkg/pipeline"
	"github.com/spf13/cobra"
)

var stageURL string

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Submit Globus transfers for staged datasets",
	Long: `transfer polls the provider for every dataset in Staging and submits a
Globus transfer for each one that is ready, up to the configured ceiling of
concurrently active transfer tasks.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run("transfer", nil, func(ctx context.Context, e *env) (driver, error) {
			stagingClient, err := newStagingClient(ctx, e)
			if err != nil {
				return nil, err
			}

			transferClient, err := newGlobusClient(e)
			if err != nil {
				return nil, err
			}

			opts := e.options()
			opts.StagingHandle = stageURL

			return pipeline.NewTransferDriver(e.requests, stagingClient, transferClient, pipeline.TransferConfig{
				DestinationEndpoint: e.cfg.DestinationEndpoint,
				TmpPath:             e.cfg.TmpPath,
				TaskCeiling:         e.cfg.TaskCeiling,
				DeadlineDays:        e.cfg.TransferDeadlineDays,
				MyProxy: globus.MyProxyCredentials{
					Username:      e.creds.GlobusMyProxyUser,
					Password:      e.creds.GlobusMyProxyPassword,
					LifetimeHours: globus.DefaultMyProxyLifetimeH,
				},
			}, opts), nil
		})
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	transferCmd.Flags().StringVar(&stageURL, "stage-url", "", "staging handle to poll for a --fd-id run")
}

func newGlobusClient(e *env) (*globus.Client, error) {
	return globus.CreateConfidentialClient(e.creds.GlobusClientID, e.creds.GlobusClientSecret,
		globus.WithTransferURL(e.cfg.GlobusTransferURL),
		globus.WithAuthURL(e.cfg.GlobusAuthURL),
		globus.WithTimeout(e.cfg.RequestTimeout()))
}
