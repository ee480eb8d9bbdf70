package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/clog"
	"github.com/glbrc/seqsync/pkg/globus"
	"github.com/glbrc/seqsync/pkg/staging"
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"github.com/glbrc/seqsync/pkg/syncdb/stor"
	"github.com/glbrc/seqsync/pkg/syncerr"
	"github.com/gosimple/slug"
	"github.com/hashicorp/go-uuid"
)

const DefaultTaskCeiling = 100

var errCapacity = errors.New("concurrent transfer task limit reached")

type TransferConfig struct {
	DestinationEndpoint string
	TmpPath             string
	TaskCeiling         int
	DeadlineDays        int
	MyProxy             globus.MyProxyCredentials
}

// TransferDriver polls staged datasets and submits a managed transfer for each
// one the provider has finished staging, up to the concurrent task ceiling.
type TransferDriver struct {
	requests stor.SyncRequestStor
	selector *Selector
	staging  StagingService
	transfer TransferService
	cfg      TransferConfig
	opts     Options
	log      *log.Entry
	now      func() time.Time
}

func NewTransferDriver(requests stor.SyncRequestStor, staging StagingService, transfer TransferService, cfg TransferConfig, opts Options) *TransferDriver {
	if cfg.TaskCeiling <= 0 {
		cfg.TaskCeiling = DefaultTaskCeiling
	}

	if cfg.DeadlineDays <= 0 {
		cfg.DeadlineDays = 7
	}

	return &TransferDriver{
		requests: requests,
		selector: NewSelector(requests),
		staging:  staging,
		transfer: transfer,
		cfg:      cfg,
		opts:     opts,
		log:      clog.UsingCtx("transfer"),
		now:      time.Now,
	}
}

func (d *TransferDriver) Run(ctx context.Context) (Summary, error) {
	rows, err := d.selector.Select(model.StageDownloading, d.opts, d.log)
	if err != nil {
		return Summary{}, err
	}

	if len(rows) == 0 {
		d.log.Info(`No FD_IDs currently with the "Staging" status to process.`)
		return Summary{}, nil
	}

	active, err := d.transfer.ActiveTaskCount(ctx)
	if err != nil {
		return Summary{}, syncerr.Fatal("transfer task list", err)
	}

	// Other submitters may start tasks between this count and our submissions,
	// so the ceiling can be overshot slightly.
	capacity := d.cfg.TaskCeiling - active
	d.log.WithFields(log.Fields{"active": active, "capacity": capacity}).Debug("Transfer capacity")

	submitted := 0
	return runBatch(ctx, rows, d.log, func(ctx context.Context, r model.SyncRequest, l *log.Entry) (bool, error) {
		if submitted >= capacity {
			return false, syncerr.Backpressure("transfer", errCapacity)
		}

		advanced, err := d.transferRow(ctx, r, l)
		if advanced {
			submitted++
		}

		return advanced, err
	})
}

func (d *TransferDriver) transferRow(ctx context.Context, r model.SyncRequest, l *log.Entry) (bool, error) {
	handle := r.GetStagingHandle()
	if handle == "" {
		return false, syncerr.Rowf("transfer", "no staging handle recorded")
	}

	result, err := d.staging.PollStaging(ctx, handle)
	if err != nil {
		return false, err
	}

	switch result.Status {
	case staging.StatusNoData:
		l.Info("No data available for download")
		return false, nil
	case staging.StatusInProgress:
		l.Info("Staging request in progress")
		return false, nil
	case staging.StatusSubmitted:
		l.Info("Staging request has been submitted.")
		return false, nil
	case staging.StatusFailed:
		l.Errorf("Staging request failed. Reverting status to \"New\" to retry next cycle. Error:\n%s", result.Text)
		return false, transition(d.requests, r, model.StageNew, model.SyncRequestUpdate{})
	case staging.StatusReady:
	default:
		l.WithField("phrases", staging.PhraseTableVersion).Warnf("Unrecognized staging response, leaving for next cycle: %s", result.Text)
		return false, nil
	}

	src := result.Source
	l.Info("Data staging successful.")
	if err := writeColumns(d.requests, r, model.SyncRequestUpdate{
		TransferURL:      model.StringPtr(src.URL),
		TransferEndpoint: model.StringPtr(src.Endpoint),
		TransferPath:     model.StringPtr(src.Path),
	}); err != nil {
		return false, err
	}

	destination, err := destinationPath(d.cfg.TmpPath, src.Path)
	if err != nil {
		return false, syncerr.Row("transfer", err)
	}

	if err := d.checkLogin(ctx); err != nil {
		return false, err
	}

	if err := d.ensureEndpointActive(ctx, l); err != nil {
		return false, err
	}

	label := transferLabel(d.now())
	submission := globus.TransferSubmission{
		SourceEndpoint:      src.Endpoint,
		SourcePath:          src.Path,
		DestinationEndpoint: d.cfg.DestinationEndpoint,
		DestinationPath:     destination,
		Label:               label,
		Deadline:            deadline(d.now(), d.cfg.DeadlineDays),
		Recursive:           true,
		PreserveMtime:       true,
	}

	res, err := d.transfer.SubmitTransfer(ctx, submission)
	if err != nil {
		return false, syncerr.Fatal("transfer submit", err)
	}

	if res.Code != globus.SubmissionAccepted {
		return false, syncerr.Fatalf("transfer submit", "transfer request failed with code %q: %s (params %+v)", res.Code, res.Message, submission)
	}

	l.WithField("task_id", res.TaskID).Info("Transfer successfully submitted.")

	err = transition(d.requests, r, model.StageDownloading, model.SyncRequestUpdate{
		TransferTaskID:    model.StringPtr(res.TaskID),
		TransferTaskLabel: model.StringPtr(label),
	})

	// The task is running whether or not the row was written, so it counts
	// against capacity either way.
	return true, err
}

func (d *TransferDriver) checkLogin(ctx context.Context) error {
	status, err := d.transfer.Whoami(ctx)
	if err != nil {
		return syncerr.Fatal("transfer login", err)
	}

	if !status.Active {
		return syncerr.Fatalf("transfer login", "not signed into Globus, log in first and then restart")
	}

	return nil
}

func (d *TransferDriver) ensureEndpointActive(ctx context.Context, l *log.Entry) error {
	endpoint := d.cfg.DestinationEndpoint
	activated, err := d.transfer.EndpointIsActivated(ctx, endpoint)
	if err != nil {
		return syncerr.Fatal("endpoint activation", err)
	}

	if activated {
		l.Debug("GLBRC endpoint active, proceeding with transfer.")
		return nil
	}

	l.Warn("GLBRC endpoint not active, attempting reactivation.")
	res, err := d.transfer.ActivateEndpoint(ctx, endpoint, d.cfg.MyProxy)
	if err != nil {
		return syncerr.Fatal("endpoint activation", err)
	}

	if res.Code != globus.ActivatedMyProxyCode {
		return syncerr.Fatalf("endpoint activation", "endpoint reactivation failed with code %q, cannot transfer data", res.Code)
	}

	l.Info("Endpoint successfully reactivated, proceeding with transfer.")

	return nil
}

// destinationPath places a dataset under tmpPath in a directory named after the
// dataset directory of the source, the fourth segment of a path such as
// /global/dna/<dataset>/.
func destinationPath(tmpPath, sourcePath string) (string, error) {
	segments := strings.Split(sourcePath, "/")
	if len(segments) < 4 || segments[3] == "" {
		return "", fmt.Errorf("source path %q has no dataset directory", sourcePath)
	}

	return strings.TrimRight(tmpPath, "/") + "/" + segments[3] + "/", nil
}

func deadline(now time.Time, days int) time.Time {
	y, m, d := now.AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// transferLabel builds a unique, filesystem safe task label such as
// glbrc_jgi_data_sync_2026_10_14_09_30_00_1a2b3c4d.
func transferLabel(now time.Time) string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		id = fmt.Sprintf("%x", now.UnixNano())
	}

	label := slug.Make(fmt.Sprintf("GLBRC JGI Data Sync %s %s", now.Format("2006-01-02 15:04:05"), id[:8]))
	return strings.ReplaceAll(label, "-", "_")
}
