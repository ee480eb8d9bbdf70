package pipeline

import (
	"context"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"github.com/glbrc/seqsync/pkg/syncdb/stor"
	"github.com/glbrc/seqsync/pkg/syncerr"
)

// Summary counts what a driver did with its batch.
type Summary struct {
	Selected int
	Advanced int
	Failed   int
	Deferred int
}

func (s Summary) fields() log.Fields {
	return log.Fields{
		"selected": s.Selected,
		"advanced": s.Advanced,
		"failed":   s.Failed,
		"deferred": s.Deferred,
	}
}

type rowFunc func(ctx context.Context, r model.SyncRequest, l *log.Entry) (advanced bool, err error)

// runBatch processes rows one at a time. A fatal error stops the batch and is
// returned. Backpressure defers the remaining rows. Any other error is logged
// against its row and the batch continues.
func runBatch(ctx context.Context, rows []model.SyncRequest, l *log.Entry, fn rowFunc) (Summary, error) {
	summary := Summary{Selected: len(rows)}

	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return summary, syncerr.Fatal("batch", err)
		}

		rl := l.WithField("fd_id", r.ID)
		advanced, err := fn(ctx, r, rl)

		switch syncerr.KindOf(err) {
		case syncerr.KindFatal:
			summary.Failed++
			return summary, err
		case syncerr.KindBackpressure:
			summary.Deferred = len(rows) - i
			l.WithFields(summary.fields()).Infof("%s. Remaining rows retry next cycle.", err)
			return summary, nil
		default:
			if err != nil {
				summary.Failed++
				rl.Errorf("%s", err)
				continue
			}
		}

		if advanced {
			summary.Advanced++
		}
	}

	l.WithFields(summary.fields()).Info("Batch complete")

	return summary, nil
}

// transition commits a stage change and classifies any store failure.
func transition(requests stor.SyncRequestStor, r model.SyncRequest, to model.Stage, update model.SyncRequestUpdate) error {
	_, err := requests.TransitionSyncRequest(r.ID, r.Stage, to, update)
	return classifyStoreError(err)
}

func writeColumns(requests stor.SyncRequestStor, r model.SyncRequest, u model.SyncRequestUpdate) error {
	return classifyStoreError(requests.UpdateSyncRequest(r.ID, r.Stage, u))
}
