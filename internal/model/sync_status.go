package model

import (
	"time"

	"gorm.io/datatypes"
)

type SyncJobType string

const (
	SyncJobOrders       SyncJobType = "order_sync"
	SyncJobTransactions SyncJobType = "transaction_sync"
)

// SyncStatus is the per-(user, job type) cursor row. Running doubles as
// the advisory single-flight flag; acquisition must be a conditional
// update, never read-then-write.
type SyncStatus struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	UserID    string         `gorm:"column:user_id;size:128;not null;uniqueIndex:idx_sync_status_user_job"`
	JobType   SyncJobType    `gorm:"column:job_type;size:32;not null;uniqueIndex:idx_sync_status_user_job"`
	Running   bool           `gorm:"column:running;not null;default:false"`
	SyncDate  *time.Time     `gorm:"column:sync_date"`
	Watermark *time.Time     `gorm:"column:watermark"`
	Offset    int            `gorm:"column:offset;not null;default:0"`
	LastRunID *string        `gorm:"column:last_run_id;size:36"`
	LastError *string        `gorm:"column:last_error;type:text"`
	LastRunAt *time.Time     `gorm:"column:last_run_at"`
	StatsJSON datatypes.JSON `gorm:"column:stats_json"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (SyncStatus) TableName() string {
	return "sync_status"
}
