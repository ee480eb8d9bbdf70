package pipeline

import (
	"testing"

	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"github.com/glbrc/seqsync/pkg/syncdb/stor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowOpt func(r *model.SyncRequest)

func withSamples(n int) rowOpt {
	return func(r *model.SyncRequest) { r.SampleCount = model.IntPtr(n) }
}

func withHandle(h string) rowOpt {
	return func(r *model.SyncRequest) { r.StagingHandle = model.StringPtr(h) }
}

func withTask(id string) rowOpt {
	return func(r *model.SyncRequest) { r.TransferTaskID = model.StringPtr(id) }
}

func row(id string, stage model.Stage, opts ...rowOpt) model.SyncRequest {
	r := model.SyncRequest{ID: id, Stage: stage}
	for _, opt := range opts {
		opt(&r)
	}

	return r
}

func stageOf(t *testing.T, s stor.SyncRequestStor, id string) model.Stage {
	r, err := s.GetSyncRequestByID(id)
	require.NoError(t, err)
	return r.Stage
}

// assertValidTransitions checks that every stage change recorded by s is an
// edge of the state machine and lands on a defined stage.
func assertValidTransitions(t *testing.T, s *stor.InMemorySyncRequestStor) {
	for _, tr := range s.Transitions {
		assert.Truef(t, model.CanTransition(tr.From, tr.To), "%s: %q -> %q is not an edge", tr.ID, tr.From, tr.To)
		assert.True(t, tr.To.IsValid())
	}

	for _, r := range s.Snapshot() {
		assert.Truef(t, r.Stage.IsValid(), "%s has undefined stage %q", r.ID, r.Stage)
	}
}
