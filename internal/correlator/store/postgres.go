package store

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// deliveryModel is the gorm-mapped row for a DeliveryRecord: a plain
// struct tagged for gorm, migrated once at startup.
type deliveryModel struct {
	MessageID   string `gorm:"primaryKey;size:64"`
	StoredAt    time.Time
	Source      string
	Destination string
	Text        []byte
	LogID       string
	ExtraData   string // JSON-encoded map[string]string
}

func (deliveryModel) TableName() string { return "smpp_pending_deliveries" }

// PostgresDeliveryStore persists the delivery map (message_id -> submit)
// in Postgres via jackc/pgx through gorm, so receipts arriving after a
// process restart still resolve against the originating submission.
type PostgresDeliveryStore struct {
	db *gorm.DB
}

// NewPostgresDeliveryStore opens dsn and migrates the delivery table.
func NewPostgresDeliveryStore(dsn string) (*PostgresDeliveryStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&deliveryModel{}); err != nil {
		return nil, err
	}
	return &PostgresDeliveryStore{db: db}, nil
}

func toModel(rec DeliveryRecord) (deliveryModel, error) {
	extra, err := json.Marshal(rec.ExtraData)
	if err != nil {
		return deliveryModel{}, err
	}
	return deliveryModel{
		MessageID:   rec.MessageID,
		StoredAt:    rec.StoredAt,
		Source:      rec.Source,
		Destination: rec.Destination,
		Text:        rec.Text,
		LogID:       rec.LogID,
		ExtraData:   string(extra),
	}, nil
}

func fromModel(m deliveryModel) DeliveryRecord {
	var extra map[string]string
	_ = json.Unmarshal([]byte(m.ExtraData), &extra)
	return DeliveryRecord{
		MessageID:   m.MessageID,
		StoredAt:    m.StoredAt,
		Source:      m.Source,
		Destination: m.Destination,
		Text:        m.Text,
		LogID:       m.LogID,
		ExtraData:   extra,
	}
}

func (s *PostgresDeliveryStore) Put(ctx context.Context, rec DeliveryRecord) error {
	m, err := toModel(rec)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(&m).Error
}

func (s *PostgresDeliveryStore) Get(ctx context.Context, msgID string) (DeliveryRecord, bool, error) {
	var m deliveryModel
	err := s.db.WithContext(ctx).First(&m, "message_id = ?", msgID).Error
	if err == gorm.ErrRecordNotFound {
		return DeliveryRecord{}, false, nil
	}
	if err != nil {
		return DeliveryRecord{}, false, err
	}
	return fromModel(m), true, nil
}

func (s *PostgresDeliveryStore) Delete(ctx context.Context, msgID string) error {
	return s.db.WithContext(ctx).Delete(&deliveryModel{}, "message_id = ?", msgID).Error
}

func (s *PostgresDeliveryStore) SweepExpired(ctx context.Context, ttl time.Duration) ([]DeliveryRecord, error) {
	cutoff := time.Now().Add(-ttl)
	var models []deliveryModel
	if err := s.db.WithContext(ctx).Where("stored_at < ?", cutoff).Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).Where("stored_at < ?", cutoff).Delete(&deliveryModel{}).Error; err != nil {
		return nil, err
	}
	out := make([]DeliveryRecord, len(models))
	for i, m := range models {
		out[i] = fromModel(m)
	}
	return out, nil
}
