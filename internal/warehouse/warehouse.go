package warehouse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HistoricalRow is the flat cold-path projection of an ad event. The table is
// append-only with no primary key; a redelivered event produces a duplicate
// row and downstream queries deduplicate if they need to.
type HistoricalRow struct {
	UserID         *string    `gorm:"column:user_id" json:"user_id"`
	EventType      string     `gorm:"column:event_type" json:"event_type"`
	ProductID      string     `gorm:"column:product_id" json:"product_id"`
	EventTimestamp *time.Time `gorm:"column:event_timestamp" json:"event_timestamp"`
	Revenue        float64    `gorm:"column:revenue" json:"revenue"`
}

func (HistoricalRow) TableName() string {
	return "ad_events_historical"
}

// Store appends historical rows to the analytical warehouse table.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a warehouse store around an existing database handle. The
// handle is owned by the caller and shared across all in-flight events.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Append writes one row. There is no retry here; redelivery is the ingress
// transport's responsibility.
func (s *Store) Append(ctx context.Context, row HistoricalRow) error {
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append historical row: %w", err)
	}
	return nil
}
