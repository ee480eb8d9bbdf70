package pipeline

import (
	"errors"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"github.com/glbrc/seqsync/pkg/syncdb/stor"
	"github.com/glbrc/seqsync/pkg/syncerr"
)

// Selector picks the rows a driver works on: everything sitting in the
// predecessor of the driver's target stage, or one forced identifier.
type Selector struct {
	requests stor.SyncRequestStor
}

func NewSelector(requests stor.SyncRequestStor) *Selector {
	return &Selector{requests: requests}
}

// Select returns the batch for target. For the Staging target, rows without a
// sample count are moved to Intervention first and never returned. Store read
// failures are fatal.
func (s *Selector) Select(target model.Stage, opts Options, l *log.Entry) ([]model.SyncRequest, error) {
	from, ok := model.Predecessor(target, opts.Intervention)
	if !ok {
		return nil, syncerr.Fatalf("select", "stage %q has no predecessor", target)
	}

	if opts.Forced() {
		return s.forced(from, opts, l)
	}

	if target != model.StageStaging {
		rows, err := s.requests.ListSyncRequestsByStage(from)
		if err != nil {
			return nil, syncerr.Fatal("select", err)
		}

		return rows, nil
	}

	missing, err := s.requests.ListSyncRequestsMissingSampleCount(from)
	if err != nil {
		return nil, syncerr.Fatal("select", err)
	}

	for _, r := range missing {
		rl := l.WithField("fd_id", r.ID)
		rl.Error("No samples in the database for this FD_ID. Intervention required.")
		if _, err := s.requests.TransitionSyncRequest(r.ID, from, model.StageIntervention, model.SyncRequestUpdate{}); err != nil {
			if err := classifyStoreError(err); syncerr.IsFatal(err) {
				return nil, err
			}
			rl.Errorf("Unable to move to Intervention: %s", err)
		}
	}

	rows, err := s.requests.ListSyncRequestsWithSamples(from)
	if err != nil {
		return nil, syncerr.Fatal("select", err)
	}

	return rows, nil
}

// forced builds the single row for a forced run. Handles recorded in the store
// are used when the row exists there; explicit overrides win.
func (s *Selector) forced(from model.Stage, opts Options, l *log.Entry) ([]model.SyncRequest, error) {
	row := model.SyncRequest{ID: opts.FdID}

	stored, err := s.requests.GetSyncRequestByID(opts.FdID)
	switch {
	case err == nil:
		row = *stored
	case stor.IsRecordNotFound(err), errors.Is(err, stor.ErrNoStore):
		l.WithField("fd_id", opts.FdID).Debug("Forced identifier not in store")
	default:
		return nil, syncerr.Fatal("select", err)
	}

	if row.Stage != from && stored != nil {
		l.WithField("fd_id", opts.FdID).Warnf("Forced identifier is in stage %q, running it as %q", row.Stage, from)
	}

	row.Stage = from

	if opts.StagingHandle != "" {
		row.StagingHandle = model.StringPtr(opts.StagingHandle)
	}

	if opts.TaskID != "" {
		row.TransferTaskID = model.StringPtr(opts.TaskID)
	}

	return []model.SyncRequest{row}, nil
}

// classifyStoreError makes a write that lost its guard a row level error and
// anything else from the database fatal.
func classifyStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stor.ErrStageMismatch), errors.Is(err, stor.ErrInvalidTransition), stor.IsRecordNotFound(err):
		return syncerr.Row("store", err)
	default:
		return syncerr.Fatal("store", err)
	}
}
