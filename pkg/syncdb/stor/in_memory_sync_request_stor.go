package stor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/glbrc/seqsync/pkg/syncdb/model"
	"gorm.io/gorm"
)

// Transition records a stage change made through an InMemorySyncRequestStor.
type Transition struct {
	ID   string
	From model.Stage
	To   model.Stage
}

type InMemorySyncRequestStor struct {
	ErrToReturn error
	Transitions []Transition
	Writes      int

	mu       sync.Mutex
	requests map[string]model.SyncRequest
	now      func() time.Time
}

func NewInMemorySyncRequestStor(requests []model.SyncRequest) *InMemorySyncRequestStor {
	s := &InMemorySyncRequestStor{
		requests: make(map[string]model.SyncRequest),
		now:      time.Now,
	}

	for _, r := range requests {
		s.requests[r.ID] = r
	}

	return s
}

func (s *InMemorySyncRequestStor) GetSyncRequestByID(id string) (*model.SyncRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	r, ok := s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	return &r, nil
}

func (s *InMemorySyncRequestStor) ListSyncRequests() ([]model.SyncRequest, error) {
	return s.filter(func(model.SyncRequest) bool { return true })
}

func (s *InMemorySyncRequestStor) ListSyncRequestsByStage(stage model.Stage) ([]model.SyncRequest, error) {
	return s.filter(func(r model.SyncRequest) bool { return r.Stage == stage })
}

func (s *InMemorySyncRequestStor) ListSyncRequestsWithSamples(stage model.Stage) ([]model.SyncRequest, error) {
	return s.filter(func(r model.SyncRequest) bool {
		return r.Stage == stage && r.SampleCount != nil && *r.SampleCount >= 1
	})
}

func (s *InMemorySyncRequestStor) ListSyncRequestsMissingSampleCount(stage model.Stage) ([]model.SyncRequest, error) {
	return s.filter(func(r model.SyncRequest) bool { return r.Stage == stage && r.SampleCount == nil })
}

func (s *InMemorySyncRequestStor) UpdateSyncRequest(id string, stage model.Stage, update model.SyncRequestUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrToReturn != nil {
		return s.ErrToReturn
	}

	r, ok := s.requests[id]
	if !ok || r.Stage != stage {
		return fmt.Errorf("%w: %s is not in stage %q", ErrStageMismatch, id, stage)
	}

	update.ApplyTo(&r)
	s.requests[id] = r
	s.Writes++

	return nil
}

func (s *InMemorySyncRequestStor) TransitionSyncRequest(id string, from, to model.Stage, update model.SyncRequestUpdate) (*model.SyncRequest, error) {
	if !model.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	r, ok := s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	if r.Stage != from {
		return nil, fmt.Errorf("%w: %s is in stage %q, expected %q", ErrStageMismatch, id, r.Stage, from)
	}

	now := s.now()
	update.ApplyTo(&r)
	r.Stage = to
	r.SyncTimestamp = &now
	r.UpdatedAt = &now
	s.requests[id] = r
	s.Transitions = append(s.Transitions, Transition{ID: id, From: from, To: to})
	s.Writes++

	return &r, nil
}

// Snapshot returns a copy of every row, ordered by identifier.
func (s *InMemorySyncRequestStor) Snapshot() []model.SyncRequest {
	requests, _ := s.filter(func(model.SyncRequest) bool { return true })
	return requests
}

func (s *InMemorySyncRequestStor) filter(keep func(r model.SyncRequest) bool) ([]model.SyncRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	var requests []model.SyncRequest
	for _, r := range s.requests {
		if keep(r) {
			requests = append(requests, r)
		}
	}

	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })

	return requests, nil
}
