package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore is the default persistence layout: one JSON file per table,
// written atomically via write-to-temp-then-rename so a crash mid-write
// never corrupts the table, only loses the single in-flight write.
//
// encoding/json already base64-encodes []byte fields, so DeliveryRecord
// and SegmentRecord round-trip through JSON without a custom marshaler.
type FileStore struct {
	mu           sync.Mutex
	deliveryPath string
	segmentPath  string
	deliveries   map[string]DeliveryRecord
	segments     map[string]SegmentRecord
}

// NewFileStore loads (or creates) the two table files under dir.
func NewFileStore(dir string) (*FileStore, error) {
	fs := &FileStore{
		deliveryPath: filepath.Join(dir, "deliveries.json"),
		segmentPath:  filepath.Join(dir, "segments.json"),
		deliveries:   make(map[string]DeliveryRecord),
		segments:     make(map[string]SegmentRecord),
	}
	if err := loadJSON(fs.deliveryPath, &fs.deliveries); err != nil {
		return nil, err
	}
	if err := loadJSON(fs.segmentPath, &fs.segments); err != nil {
		return nil, err
	}
	return fs, nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (fs *FileStore) Put(ctx context.Context, rec DeliveryRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.deliveries[rec.MessageID] = rec
	return writeJSONAtomic(fs.deliveryPath, fs.deliveries)
}

func (fs *FileStore) Get(ctx context.Context, msgID string) (DeliveryRecord, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	rec, ok := fs.deliveries[msgID]
	return rec, ok, nil
}

func (fs *FileStore) Delete(ctx context.Context, msgID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.deliveries, msgID)
	return writeJSONAtomic(fs.deliveryPath, fs.deliveries)
}

func (fs *FileStore) SweepExpired(ctx context.Context, ttl time.Duration) ([]DeliveryRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var expired []DeliveryRecord
	now := time.Now()
	for id, rec := range fs.deliveries {
		if now.Sub(rec.StoredAt) > ttl {
			expired = append(expired, rec)
			delete(fs.deliveries, id)
		}
	}
	if len(expired) > 0 {
		if err := writeJSONAtomic(fs.deliveryPath, fs.deliveries); err != nil {
			return expired, err
		}
	}
	return expired, nil
}

func (fs *FileStore) PutSegment(ctx context.Context, rec SegmentRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.segments[rec.RefNum] = rec
	return writeJSONAtomic(fs.segmentPath, fs.segments)
}

func (fs *FileStore) GetSegment(ctx context.Context, refNum string) (SegmentRecord, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	rec, ok := fs.segments[refNum]
	return rec, ok, nil
}

func (fs *FileStore) DeleteSegment(ctx context.Context, refNum string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.segments, refNum)
	return writeJSONAtomic(fs.segmentPath, fs.segments)
}

func (fs *FileStore) SweepExpiredSegments(ctx context.Context, ttl time.Duration) ([]SegmentRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var expired []SegmentRecord
	now := time.Now()
	for ref, rec := range fs.segments {
		if now.Sub(rec.StoredAt) > ttl {
			expired = append(expired, rec)
			delete(fs.segments, ref)
		}
	}
	if len(expired) > 0 {
		if err := writeJSONAtomic(fs.segmentPath, fs.segments); err != nil {
			return expired, err
		}
	}
	return expired, nil
}

// segmentAdapter exposes FileStore's segment methods under the
// SegmentStore interface name set (Put/Get/Delete/SweepExpired), since a
// single struct can't implement two interfaces that share method names
// with different receivers.
type segmentAdapter struct{ fs *FileStore }

// Segments returns a SegmentStore view of this FileStore.
func (fs *FileStore) Segments() SegmentStore { return segmentAdapter{fs} }

func (s segmentAdapter) Put(ctx context.Context, rec SegmentRecord) error {
	return s.fs.PutSegment(ctx, rec)
}
func (s segmentAdapter) Get(ctx context.Context, refNum string) (SegmentRecord, bool, error) {
	return s.fs.GetSegment(ctx, refNum)
}
func (s segmentAdapter) Delete(ctx context.Context, refNum string) error {
	return s.fs.DeleteSegment(ctx, refNum)
}
func (s segmentAdapter) SweepExpired(ctx context.Context, ttl time.Duration) ([]SegmentRecord, error) {
	return s.fs.SweepExpiredSegments(ctx, ttl)
}
