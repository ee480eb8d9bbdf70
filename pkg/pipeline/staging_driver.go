package pipeline

import (
	"context"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/clog"
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"github.com/glbrc/seqsync/pkg/syncdb/stor"
)

// StagingDriver asks the provider to stage every New dataset and moves the
// accepted ones to Staging.
type StagingDriver struct {
	requests stor.SyncRequestStor
	selector *Selector
	staging  StagingService
	opts     Options
	log      *log.Entry
}

func NewStagingDriver(requests stor.SyncRequestStor, staging StagingService, opts Options) *StagingDriver {
	return &StagingDriver{
		requests: requests,
		selector: NewSelector(requests),
		staging:  staging,
		opts:     opts,
		log:      clog.UsingCtx("stage"),
	}
}

func (d *StagingDriver) Run(ctx context.Context) (Summary, error) {
	rows, err := d.selector.Select(model.StageStaging, d.opts, d.log)
	if err != nil {
		return Summary{}, err
	}

	if len(rows) == 0 {
		d.log.Info(`No FD_IDs currently with the "New" status to process.`)
		return Summary{}, nil
	}

	return runBatch(ctx, rows, d.log, d.stage)
}

func (d *StagingDriver) stage(ctx context.Context, r model.SyncRequest, l *log.Entry) (bool, error) {
	l.Info("Sync requested.")

	portalID, err := d.staging.ResolveProjectID(ctx, r.ID)
	if err != nil {
		return false, err
	}

	l.WithField("portal_id", portalID).Info("Portal ID acquired.")

	if err := writeColumns(d.requests, r, model.SyncRequestUpdate{PortalID: model.StringPtr(portalID)}); err != nil {
		return false, err
	}

	handle, err := d.staging.RequestStaging(ctx, portalID)
	if err != nil {
		return false, err
	}

	l.WithField("handle", handle).Info("Data staging requested from JGI.")

	if err := transition(d.requests, r, model.StageStaging, model.SyncRequestUpdate{StagingHandle: model.StringPtr(handle)}); err != nil {
		return false, err
	}

	return true, nil
}
