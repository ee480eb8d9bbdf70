package stor

import (
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"gorm.io/gorm"
)

type SyncRequestStor interface {
	GetSyncRequestByID(id string) (*model.SyncRequest, error)
	ListSyncRequests() ([]model.SyncRequest, error)
	ListSyncRequestsByStage(stage model.Stage) ([]model.SyncRequest, error)

	// ListSyncRequestsWithSamples returns the rows in stage with a sample count of at least one.
	ListSyncRequestsWithSamples(stage model.Stage) ([]model.SyncRequest, error)

	// ListSyncRequestsMissingSampleCount returns the rows in stage whose sample count is null.
	ListSyncRequestsMissingSampleCount(stage model.Stage) ([]model.SyncRequest, error)

	// UpdateSyncRequest writes the columns in update on a row that is still in
	// stage, without changing its stage.
	UpdateSyncRequest(id string, stage model.Stage, update model.SyncRequestUpdate) error

	// TransitionSyncRequest moves a row from one stage to another, writing the
	// columns in update in the same transaction.
	TransitionSyncRequest(id string, from, to model.Stage, update model.SyncRequestUpdate) (*model.SyncRequest, error)
}

type SampleStor interface {
	// GetSampleIDsForDataset returns the sample identifiers data entry linked to
	// the dataset identifier.
	GetSampleIDsForDataset(fdID string) ([]string, error)
}

type Stors struct {
	SyncRequestStor SyncRequestStor
	SampleStor      SampleStor
}

func NewGormStors(db *gorm.DB) *Stors {
	return &Stors{
		SyncRequestStor: NewGormSyncRequestStor(db),
		SampleStor:      NewGormSampleStor(db),
	}
}
