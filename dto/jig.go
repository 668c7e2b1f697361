package dto

import (
	"encoding/json"
	"time"
)

type JigResponse struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	LiveVersionID *string         `json:"live_version_id,omitempty"`
	PlayCount     int64           `json:"play_count"`
	Settings      json.RawMessage `json:"settings,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
