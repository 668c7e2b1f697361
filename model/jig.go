package model

import (
	"encoding/json"
	"time"
)

// Jig is a published piece of interactive learning content. Codes may only
// be minted against a jig whose live version exists.
type Jig struct {
	ID            string          `json:"id" gorm:"primaryKey"`
	OwnerID       string          `json:"owner_id" gorm:"not null;index"`
	Title         string          `json:"title" gorm:"not null"`
	LiveVersionID *string         `json:"live_version_id"`
	PlayCount     int64           `json:"play_count" gorm:"not null;default:0"`
	Settings      json.RawMessage `json:"settings" gorm:"type:jsonb"` // author's current defaults; codes snapshot these
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// JigVersion is one immutable published revision of a jig's module list.
type JigVersion struct {
	ID        string          `json:"id" gorm:"primaryKey"`
	JigID     string          `json:"jig_id" gorm:"not null;index"`
	Modules   json.RawMessage `json:"modules" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at"`
}
