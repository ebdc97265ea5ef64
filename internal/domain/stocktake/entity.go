// internal/domain/stocktake/entity.go
package stocktake

import (
	"time"
)

// SessionStatus represents the lifecycle state of a counting session
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// Session represents one physical counting round. Counts are collected
// against a session while it is in progress; completing it reconciles the
// counted figures against the system balances.
type Session struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	SellerID    uint          `json:"seller_id" gorm:"not null;index"`
	Code        string        `json:"code" gorm:"uniqueIndex;not null;size:32"`
	Status      SessionStatus `json:"status" gorm:"not null;default:'in_progress';size:20"`
	Notes       string        `json:"notes" gorm:"type:text"`
	CreatedBy   uint          `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`

	Items []Item `json:"items,omitempty" gorm:"foreignKey:SessionID"`
}

// TableName returns the table name for Session model
func (Session) TableName() string {
	return "stock_take_sessions"
}

// IsActive reports whether the session still accepts counts
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusInProgress
}

// Item is one counted variant within a session. SystemStock is the cached
// balance snapshot taken when the count was recorded; re-counting the same
// variant refreshes both figures.
type Item struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SellerID     uint      `json:"seller_id" gorm:"not null;index"`
	SessionID    uint      `json:"session_id" gorm:"not null;uniqueIndex:idx_session_variant"`
	VariantID    uint      `json:"variant_id" gorm:"not null;uniqueIndex:idx_session_variant"`
	SKU          string    `json:"sku" gorm:"not null;size:100"`
	SystemStock  int       `json:"system_stock" gorm:"not null"`
	CountedStock int       `json:"counted_stock" gorm:"not null"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CountedBy    uint      `json:"counted_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for Item model
func (Item) TableName() string {
	return "stock_take_items"
}

// Variance is counted minus system: positive means surplus on the shelf,
// negative means shrinkage.
func (i *Item) Variance() int {
	return i.CountedStock - i.SystemStock
}
