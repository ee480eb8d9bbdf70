package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/glbrc/seqsync/pkg/syncdb"
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"github.com/glbrc/seqsync/pkg/syncdb/stor"
	perrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var statusStage string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where every dataset is in the pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flags.noDB {
			return fmt.Errorf("status needs a database connection")
		}

		stage := model.Stage(statusStage)
		if stage != "" && !stage.IsValid() {
			return fmt.Errorf("unknown stage %q, expected one of %v", statusStage, model.AllStages)
		}

		e, err := loadSettings("status", nil)
		if err != nil {
			return err
		}

		db, err := connect(e.cfg.DBDriver)
		if err != nil {
			return err
		}
		defer syncdb.Close(db)

		requests := stor.NewGormSyncRequestStor(db)

		var rows []model.SyncRequest
		if stage == "" {
			rows, err = requests.ListSyncRequests()
		} else {
			rows, err = requests.ListSyncRequestsByStage(stage)
		}

		if err != nil {
			return perrors.Wrapf(err, "unable to list sync requests")
		}

		_, _ = fmt.Fprintln(os.Stdout, renderStatus(rows))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusStage, "stage", "", `only show rows in this stage, eg "Downloading"`)
}

func renderStatus(rows []model.SyncRequest) string {
	headers := []string{"FD_ID", "Status", "Samples", "Portal ID", "Transfer Task", "Last Sync"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}

	var cells [][]string
	for _, r := range rows {
		samples := "-"
		if r.SampleCount != nil {
			samples = strconv.Itoa(*r.SampleCount)
		}

		synced := "never"
		if r.SyncTimestamp != nil {
			synced = humanize.Time(*r.SyncTimestamp)
		}

		cells = append(cells, []string{r.ID, string(r.Stage), samples, r.GetPortalID(), r.GetTransferTaskID(), synced})
	}

	return renderTable(headers, cells, aligns)
}
