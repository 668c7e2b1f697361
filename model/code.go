package model

import (
	"encoding/json"
	"time"
)

// JigCode is a short human-typeable handle for one jig. The settings
// snapshot is captured at creation and never mutated; only Name may change.
type JigCode struct {
	Code      int             `json:"code" gorm:"primaryKey;autoIncrement:false"`
	JigID     string          `json:"jig_id" gorm:"not null;index"`
	OwnerID   string          `json:"owner_id" gorm:"not null;index:idx_jig_code_owner_created,priority:1"`
	Name      string          `json:"name"`
	Settings  json.RawMessage `json:"settings" gorm:"type:jsonb;not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;index:idx_jig_code_owner_created,priority:2"`
	ExpiresAt time.Time       `json:"expires_at" gorm:"not null"`
}

func (JigCode) TableName() string { return "jig_code" }

func (c *JigCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// JigCodeInstance is one learner's in-flight attempt under a code. The row
// exists only between redemption and completion; completion deletes it.
type JigCodeInstance struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Code        int       `json:"code" gorm:"not null;index"`
	JigID       string    `json:"jig_id" gorm:"not null"`
	PlayersName string    `json:"players_name"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;index"`
}

func (JigCodeInstance) TableName() string { return "jig_code_instance" }

// JigCodeSession is the durable record of a completed attempt. Append-only.
type JigCodeSession struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	Code        int             `json:"code" gorm:"not null;index"`
	PlayersName string          `json:"players_name"`
	Payload     json.RawMessage `json:"payload" gorm:"type:jsonb;not null"`
	CompletedAt time.Time       `json:"completed_at" gorm:"not null"`
}

func (JigCodeSession) TableName() string { return "jig_code_session" }
