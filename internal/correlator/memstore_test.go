package correlator

import (
	"context"
	"sync"
	"time"

	"github.com/sagostin/go-esme/internal/correlator/store"
)

// memDeliveryStore and memSegmentStore are minimal in-memory
// implementations of the store.DeliveryStore/store.SegmentStore
// contracts, used so correlator tests don't depend on the filesystem or
// an external database.
type memDeliveryStore struct {
	mu   sync.Mutex
	recs map[string]store.DeliveryRecord
}

func newMemDeliveryStore() *memDeliveryStore {
	return &memDeliveryStore{recs: make(map[string]store.DeliveryRecord)}
}

func (m *memDeliveryStore) Put(ctx context.Context, rec store.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.MessageID] = rec
	return nil
}

func (m *memDeliveryStore) Get(ctx context.Context, msgID string) (store.DeliveryRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[msgID]
	return rec, ok, nil
}

func (m *memDeliveryStore) Delete(ctx context.Context, msgID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, msgID)
	return nil
}

func (m *memDeliveryStore) SweepExpired(ctx context.Context, ttl time.Duration) ([]store.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	var expired []store.DeliveryRecord
	for id, rec := range m.recs {
		if rec.StoredAt.Before(cutoff) {
			expired = append(expired, rec)
			delete(m.recs, id)
		}
	}
	return expired, nil
}

type memSegmentStore struct {
	mu   sync.Mutex
	recs map[string]store.SegmentRecord
}

func newMemSegmentStore() *memSegmentStore {
	return &memSegmentStore{recs: make(map[string]store.SegmentRecord)}
}

func (m *memSegmentStore) Put(ctx context.Context, rec store.SegmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.RefNum] = rec
	return nil
}

func (m *memSegmentStore) Get(ctx context.Context, refNum string) (store.SegmentRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[refNum]
	return rec, ok, nil
}

func (m *memSegmentStore) Delete(ctx context.Context, refNum string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, refNum)
	return nil
}

func (m *memSegmentStore) SweepExpired(ctx context.Context, ttl time.Duration) ([]store.SegmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	var expired []store.SegmentRecord
	for ref, rec := range m.recs {
		if rec.StoredAt.Before(cutoff) {
			expired = append(expired, rec)
			delete(m.recs, ref)
		}
	}
	return expired, nil
}
