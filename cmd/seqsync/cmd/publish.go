package cmd

import (
	"context"

	"github.com/glbrc/seqsync/pkg/archive"
	"github.com/glbrc/seqsync/pkg/auth"
	"github.com/glbrc/seqsync/pkg/catalog"
	"github.com/glbrc/seqsync/pkg/pipeline"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type publishFlags struct {
	taskID       string
	sampleID     string
	sampleIDs    []string
	experimentID string
	dryPost      bool
	copyFiles    bool
	noMove       bool
}

var pubFlags publishFlags

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Post transferred files to the data catalog and archive them",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := viper.New()
		if pubFlags.copyFiles {
			v.Set("relocation_mode", string(archive.ModeCopy))
		}

		run("publish", v, func(ctx context.Context, e *env) (driver, error) {
			transferClient, err := newGlobusClient(e)
			if err != nil {
				return nil, err
			}

			token, err := auth.NewAuthenticator(e.cfg.AuthTokenURL, e.cfg.AuthKeysURL, e.cfg.RequestTimeout()).
				Token(ctx, auth.Credentials{
					Username:     e.creds.CatalogUser,
					Password:     e.creds.CatalogPassword,
					ClientID:     e.creds.CatalogClientID,
					ClientSecret: e.creds.CatalogClientSecret,
				})
			if err != nil {
				return nil, err
			}

			mode, err := archive.ParseMode(e.cfg.RelocationMode)
			if err != nil {
				return nil, err
			}

			relocator := archive.NewRelocator(afero.NewOsFs(), mode)
			e.log.Debugf("Relocating files by %s", relocator.Mode())

			opts := e.options()
			opts.TaskID = pubFlags.taskID
			opts.SampleID = pubFlags.sampleID
			opts.SampleIDs = pubFlags.sampleIDs
			opts.ExperimentID = pubFlags.experimentID
			opts.DryPost = pubFlags.dryPost
			opts.NoMove = pubFlags.noMove

			return pipeline.NewPublicationDriver(e.requests, e.samples, transferClient,
				catalog.NewClient(e.cfg.CatalogURL, token, e.cfg.RequestTimeout()),
				relocator,
				pipeline.PublicationConfig{TmpPath: e.cfg.TmpPath, ArchivePath: e.cfg.ArchivePath},
				opts), nil
		})
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)

	f := publishCmd.Flags()
	f.StringVar(&pubFlags.taskID, "task-id", "", "transfer task to check for a --fd-id run")
	f.StringVar(&pubFlags.sampleID, "sample-id", "", "post to this catalog sample")
	f.StringSliceVar(&pubFlags.sampleIDs, "sample-ids", nil, "catalog samples whose common experiment receives the files")
	f.StringVar(&pubFlags.experimentID, "experiment-id", "", "post to this catalog experiment")
	f.BoolVar(&pubFlags.dryPost, "dry-post", false, "resolve the catalog linkage without posting")
	f.BoolVar(&pubFlags.copyFiles, "copy", false, "copy files into the archive instead of moving them")
	f.BoolVar(&pubFlags.noMove, "no-move", false, "post files without relocating them")
}
