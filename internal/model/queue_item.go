package model

import (
	"time"

	"gorm.io/datatypes"
)

type QueueStatus string

const (
	QueuePending  QueueStatus = "PENDING"
	QueueResolved QueueStatus = "RESOLVED"
	QueueSkipped  QueueStatus = "SKIPPED"
)

type SkipReason string

const (
	SkipNoInventory SkipReason = "no_inventory"
	SkipAmbiguous   SkipReason = "ambiguous"
	SkipOther       SkipReason = "other"
)

func ParseSkipReason(s string) (SkipReason, bool) {
	switch SkipReason(s) {
	case SkipNoInventory, SkipAmbiguous, SkipOther:
		return SkipReason(s), true
	}
	return "", false
}

// ResolutionQueueItem holds one line item awaiting manual disambiguation.
// Candidates is the ranked candidate list frozen at queue time, stored as
// JSON; it may be empty when the matcher found no usable signal.
type ResolutionQueueItem struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement"`
	PublicID       string         `gorm:"column:public_id;size:36;not null;uniqueIndex"`
	UserID         string         `gorm:"column:user_id;size:128;not null;index"`
	OrderID        uint64         `gorm:"column:order_id;not null;index"`
	LineItemID     uint64         `gorm:"column:line_item_id;not null;index"`
	QuantityNeeded int            `gorm:"column:quantity_needed;not null"`
	Reason         string         `gorm:"column:reason;size:32;not null"`
	Status         QueueStatus    `gorm:"column:status;size:16;not null;index"`
	SkipReason     *SkipReason    `gorm:"column:skip_reason;size:32"`
	Candidates     datatypes.JSON `gorm:"column:candidates"`
	ResolvedAt     *time.Time     `gorm:"column:resolved_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (ResolutionQueueItem) TableName() string {
	return "resolution_queue_items"
}
