package stor

import (
	"fmt"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/syncdb/model"
)

// DiscardingSyncRequestStor reads through to an underlying stor, if there is one,
// and drops every write. Forced single-identifier runs and --no-db-writes runs
// use it so the drivers execute unchanged while the table is left untouched.
type DiscardingSyncRequestStor struct {
	stor SyncRequestStor
}

// NewDiscardingSyncRequestStor wraps s. s may be nil when there is no database
// connection, in which case every read returns ErrNoStore.
func NewDiscardingSyncRequestStor(s SyncRequestStor) *DiscardingSyncRequestStor {
	return &DiscardingSyncRequestStor{stor: s}
}

func (s *DiscardingSyncRequestStor) GetSyncRequestByID(id string) (*model.SyncRequest, error) {
	if s.stor == nil {
		return nil, ErrNoStore
	}

	return s.stor.GetSyncRequestByID(id)
}

func (s *DiscardingSyncRequestStor) ListSyncRequests() ([]model.SyncRequest, error) {
	if s.stor == nil {
		return nil, ErrNoStore
	}

	return s.stor.ListSyncRequests()
}

func (s *DiscardingSyncRequestStor) ListSyncRequestsByStage(stage model.Stage) ([]model.SyncRequest, error) {
	if s.stor == nil {
		return nil, ErrNoStore
	}

	return s.stor.ListSyncRequestsByStage(stage)
}

func (s *DiscardingSyncRequestStor) ListSyncRequestsWithSamples(stage model.Stage) ([]model.SyncRequest, error) {
	if s.stor == nil {
		return nil, ErrNoStore
	}

	return s.stor.ListSyncRequestsWithSamples(stage)
}

func (s *DiscardingSyncRequestStor) ListSyncRequestsMissingSampleCount(stage model.Stage) ([]model.SyncRequest, error) {
	if s.stor == nil {
		return nil, ErrNoStore
	}

	return s.stor.ListSyncRequestsMissingSampleCount(stage)
}

func (s *DiscardingSyncRequestStor) UpdateSyncRequest(id string, stage model.Stage, update model.SyncRequestUpdate) error {
	log.WithField("fd_id", id).Debugf("Store write suppressed: update %v", update.Columns())
	return nil
}

func (s *DiscardingSyncRequestStor) TransitionSyncRequest(id string, from, to model.Stage, update model.SyncRequestUpdate) (*model.SyncRequest, error) {
	if !model.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}

	log.WithField("fd_id", id).Debugf("Store write suppressed: %s -> %s", from, to)

	r := model.SyncRequest{ID: id, Stage: to}
	update.ApplyTo(&r)

	return &r, nil
}

// NoSampleStor is the SampleStor used without a database connection.
type NoSampleStor struct{}

func (NoSampleStor) GetSampleIDsForDataset(_ string) ([]string, error) {
	return nil, ErrNoStore
}
