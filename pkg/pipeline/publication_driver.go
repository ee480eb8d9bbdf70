package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/archive"
	"github.com/glbrc/seqsync/pkg/catalog"
	"github.com/glbrc/seqsync/pkg/clog"
	"github.com/glbrc/seqsync/pkg/globus"
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"github.com/glbrc/seqsync/pkg/syncdb/stor"
	"github.com/glbrc/seqsync/pkg/syncerr"
)

type PublicationConfig struct {
	TmpPath     string
	ArchivePath string
}

// PublicationDriver registers the files of finished transfers with the catalog
// and relocates them into archival storage.
type PublicationDriver struct {
	requests  stor.SyncRequestStor
	samples   stor.SampleStor
	selector  *Selector
	transfer  TransferService
	catalog   CatalogService
	relocator Relocator
	cfg       PublicationConfig
	opts      Options
	log       *log.Entry
}

func NewPublicationDriver(requests stor.SyncRequestStor, samples stor.SampleStor, transfer TransferService,
	catalog CatalogService, relocator Relocator, cfg PublicationConfig, opts Options) *PublicationDriver {
	return &PublicationDriver{
		requests:  requests,
		samples:   samples,
		selector:  NewSelector(requests),
		transfer:  transfer,
		catalog:   catalog,
		relocator: relocator,
		cfg:       cfg,
		opts:      opts,
		log:       clog.UsingCtx("publish"),
	}
}

func (d *PublicationDriver) Run(ctx context.Context) (Summary, error) {
	rows, err := d.selector.Select(model.StagePostedAndMoved, d.opts, d.log)
	if err != nil {
		return Summary{}, err
	}

	if len(rows) == 0 {
		d.log.Info(`No FD_IDs currently with the "Downloading" status to process.`)
		return Summary{}, nil
	}

	return runBatch(ctx, rows, d.log, d.publish)
}

// linkage is where a row's files live in the catalog.
type linkage struct {
	target catalog.Target
	known  map[string]string
}

// fileTally tracks a row's files. A row is complete only when nothing failed
// and every new file was also moved.
type fileTally struct {
	posted, moved, replaced int
	failed                  int
	postAborted             bool
}

func (t fileTally) complete() bool {
	return !t.postAborted && t.failed == 0 && t.posted == t.moved
}

func (d *PublicationDriver) publish(ctx context.Context, r model.SyncRequest, l *log.Entry) (bool, error) {
	taskID := r.GetTransferTaskID()
	if taskID == "" {
		return false, syncerr.Rowf("publish", "no transfer task recorded")
	}

	l = l.WithField("task_id", taskID)
	task, err := d.transfer.GetTask(ctx, taskID)
	if err != nil {
		return false, err
	}

	switch task.Status {
	case globus.TaskStatusSucceeded:
	case globus.TaskStatusActive:
		l.Info("Transfer still in progress")
		return false, nil
	case globus.TaskStatusFailed:
		l.Errorf("Transfer task failed: %s", task.NiceStatus)
		return false, nil
	case globus.TaskStatusInactive:
		l.Warnf("Transfer task inactive: %s", task.NiceStatus)
		return false, nil
	default:
		l.Errorf("Transfer task in unknown state %q", task.Status)
		return false, nil
	}

	l.Info("All files successfully downloaded. Posting to Data Catalog.")

	if task.HistoryDeleted {
		l.Error("Detailed history of the Globus transfer task was deleted, cannot post. Changing status to \"New\" for re-staging.")
		return false, transition(d.requests, r, model.StageNew, model.SyncRequestUpdate{})
	}

	link, err := d.resolveLinkage(ctx, r, l)
	if err != nil || link == nil {
		return false, err
	}

	if d.opts.DryPost {
		l.WithField("existing", len(link.known)).Infof("Dry post for %s, nothing posted.", link.target)
		return false, nil
	}

	items, err := d.transfer.ListSuccessfulTransfers(ctx, taskID)
	if err != nil {
		return false, err
	}

	l.Infof("Posting files to %s.", link.target)
	tally, err := d.publishFiles(ctx, items, link, l)
	if err != nil {
		return false, err
	}

	if d.opts.NoMove && tally.failed == 0 && !tally.postAborted {
		l.Infof("%d new file(s) posted without relocation, leaving row in Downloading.", tally.posted)
		return false, nil
	}

	if !tally.complete() {
		return false, syncerr.File("publish", fmt.Errorf("error posting or moving some of the files to Data Catalog (%d new posted, %d moved, %d replaced, %d failed), will retry on the next cycle",
			tally.posted, tally.moved, tally.replaced, tally.failed))
	}

	l.Infof("%d new file(s) and %d replaced file(s) successfully posted and moved to the Data Catalog.", tally.posted, tally.replaced)

	if err := transition(d.requests, r, model.StagePostedAndMoved, model.SyncRequestUpdate{}); err != nil {
		return false, err
	}

	return true, nil
}

// resolveLinkage finds the catalog sample or experiment for a row and the files
// already registered there. A nil linkage with a nil error means the row was
// handled (moved to Intervention) and needs nothing further.
func (d *PublicationDriver) resolveLinkage(ctx context.Context, r model.SyncRequest, l *log.Entry) (*linkage, error) {
	var (
		sampleIDs    []string
		experimentID string
	)

	switch {
	case len(d.opts.SampleIDs) != 0:
		sampleIDs = d.opts.SampleIDs
	case d.opts.SampleID != "" && d.opts.ExperimentID != "":
		return nil, syncerr.Rowf("publish", "both sample_id and experiment_id provided, only one may be specified")
	case d.opts.SampleID != "":
		sampleIDs = []string{d.opts.SampleID}
	case d.opts.ExperimentID != "":
		experimentID = d.opts.ExperimentID
	default:
		ids, err := d.samples.GetSampleIDsForDataset(r.ID)
		switch {
		case errors.Is(err, stor.ErrNoStore):
		case err != nil:
			return nil, syncerr.Fatal("sample lookup", err)
		}
		sampleIDs = ids
	}

	var (
		details catalog.Details
		target  catalog.Target
		err     error
	)

	switch {
	case experimentID != "":
		details, err = d.catalog.GetExperimentFiles(ctx, experimentID)
		target = catalog.Target{ExperimentID: experimentID}
	case len(sampleIDs) == 1:
		details, err = d.catalog.GetSampleFiles(ctx, sampleIDs[0])
		target = catalog.Target{SampleID: sampleIDs[0]}
	case len(sampleIDs) > 1:
		details, err = d.catalog.GetExperimentFilesForSamples(ctx, sampleIDs)
		target = catalog.Target{ExperimentID: string(details.ID)}
	default:
		return nil, syncerr.Rowf("publish", "no samples associated with this FD_ID in the database")
	}

	if err != nil {
		if syncerr.IsFatal(err) {
			return nil, err
		}

		l.Errorf("Catalog lookup for %s failed, intervention required: %s", describeLookup(sampleIDs, experimentID), err)
		return nil, transition(d.requests, r, model.StageIntervention, model.SyncRequestUpdate{})
	}

	l.WithField("existing", len(details.Files.Subpaths)).Debugf("Catalog linkage resolved to %s", target)

	return &linkage{target: target, known: details.Files.Known()}, nil
}

// publishFiles handles every successful transfer of a task. Known files are
// relocated over their catalogued copy. New files are posted and then
// relocated; the first failed post stops the remaining files.
func (d *PublicationDriver) publishFiles(ctx context.Context, items []globus.TransferItem, link *linkage, l *log.Entry) (fileTally, error) {
	var tally fileTally

	for _, item := range items {
		if item.DataType != "" && item.DataType != globus.DataTypeSuccessfulXfer {
			continue
		}

		src := localPath(item.DestinationPath)
		if !d.relocator.Exists(src) {
			l.Infof("File does not exist, skipping! %s", item.DestinationPath)
			continue
		}

		relPath := SanitizePath(item.DestinationPath, d.cfg.TmpPath)
		fl := l.WithField("file", relPath)

		if fullPath, ok := link.known[relPath]; ok {
			fl.Info("File already present in the Data Catalog. Overwriting.")
			if d.relocate(src, fullPath, fl) {
				tally.replaced++
			} else {
				tally.failed++
			}
			continue
		}

		res, err := d.catalog.PostFile(ctx, link.target, relPath)
		if err != nil {
			if syncerr.IsFatal(err) {
				return tally, err
			}

			fl.Errorf("Error posting file to Data Catalog: %s", err)
			tally.postAborted = true
			break
		}

		tally.posted++
		fl.Infof("File Posted (%s)", link.target)

		if d.opts.NoMove {
			continue
		}

		if d.relocate(src, res.Path, fl) {
			tally.moved++
		} else {
			tally.failed++
		}
	}

	return tally, nil
}

func (d *PublicationDriver) relocate(src, catalogPath string, l *log.Entry) bool {
	dst := strings.TrimRight(d.cfg.ArchivePath, "/") + "/" + strings.TrimLeft(catalogPath, "/")
	if _, err := d.relocator.Relocate(src, dst); err != nil {
		if errors.Is(err, archive.ErrSizeMismatch) {
			l.Errorf("Error moving file to Data Catalog, size mismatch: %s", err)
		} else {
			l.Errorf("Error moving file to Data Catalog: %s", err)
		}
		return false
	}

	l.Infof("File Moved FROM %s TO %s", src, dst)
	return true
}

func describeLookup(sampleIDs []string, experimentID string) string {
	if experimentID != "" {
		return "experiment " + experimentID
	}

	return "samples " + strings.Join(sampleIDs, ",")
}
