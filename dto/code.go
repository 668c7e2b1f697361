package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jigworks/jig_api/shared"
)

// MaxSessionPayloadBytes caps the completion payload. Module results are
// opaque structured data; the cap bounds what a learner client can persist.
const MaxSessionPayloadBytes = 64 * 1024

// PlayerSettings is the playback configuration snapshotted onto a code at
// creation time.
type PlayerSettings struct {
	Direction        string `json:"direction" validate:"required,oneof=ltr rtl"`
	Scoring          bool   `json:"scoring"`
	DragAssist       bool   `json:"drag_assist"`
	TimeLimitSeconds *int   `json:"time_limit_seconds,omitempty" validate:"omitempty,min=10,max=7200"`
}

type CreateCodeRequest struct {
	JigID    string         `json:"jigId" validate:"required,uuid"`
	Settings PlayerSettings `json:"settings" validate:"required"`
	Name     string         `json:"name" validate:"omitempty,max=100"`
}

func (c CreateCodeRequest) Validate() error {
	return GetValidator().Struct(c)
}

type CodeResponse struct {
	Index        int             `json:"index"`
	Code         string          `json:"code"`
	JigID        string          `json:"jigId"`
	Name         string          `json:"name,omitempty"`
	Settings     json.RawMessage `json:"settings"`
	CreatedAt    time.Time       `json:"createdAt"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	SessionCount int64           `json:"sessionCount"`
}

type CodeListResponse struct {
	Codes []CodeResponse `json:"codes"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int64          `json:"total"`
}

type UpdateCodeNameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (c UpdateCodeNameRequest) Validate() error {
	return GetValidator().Struct(c)
}

// CodeValue accepts a code as either a JSON number or a (possibly
// zero-padded) decimal string.
type CodeValue int

func (v *CodeValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return fmt.Errorf("invalid code: %w", err)
		}
		*v = CodeValue(n)
	case string:
		n, err := shared.ParseCode(val)
		if err != nil {
			return err
		}
		*v = CodeValue(n)
	default:
		return errors.New("code must be a number or string")
	}

	if int(*v) < shared.CodeMin || int(*v) > shared.CodeMax {
		return fmt.Errorf("code %d out of range", int(*v))
	}
	return nil
}

func (v CodeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(v))
}

// Code is a pointer so that an omitted field fails validation instead of
// decoding to code zero, which is itself a redeemable value.
type RedeemCodeRequest struct {
	Code        *CodeValue `json:"code" validate:"required"`
	PlayersName string     `json:"players_name" validate:"omitempty,max=100"`
}

func (c RedeemCodeRequest) Validate() error {
	return GetValidator().Struct(c)
}

type RedeemCodeResponse struct {
	Token    string          `json:"token"`
	JigID    string          `json:"jigId"`
	Settings json.RawMessage `json:"settings"`
}

// SessionPayload is the learner's completion report. The server validates
// shape and size only; round contents belong to the module kinds.
type SessionPayload struct {
	Modules []json.RawMessage `json:"modules"`
}

type moduleResult struct {
	StableModuleID string            `json:"stable_module_id"`
	Rounds         []json.RawMessage `json:"rounds"`
}

func (p SessionPayload) Validate() error {
	if len(p.Modules) == 0 {
		return errors.New("session must contain at least one module result")
	}

	for i, raw := range p.Modules {
		// Each entry is keyed by its module kind, e.g. {"Matching": {...}}.
		var byKind map[string]moduleResult
		if err := json.Unmarshal(raw, &byKind); err != nil {
			return fmt.Errorf("module %d: %w", i, err)
		}
		if len(byKind) != 1 {
			return fmt.Errorf("module %d must carry exactly one module kind", i)
		}
		for kind, result := range byKind {
			if result.StableModuleID == "" {
				return fmt.Errorf("module %d (%s): stable_module_id is required", i, kind)
			}
			if result.Rounds == nil {
				return fmt.Errorf("module %d (%s): rounds is required", i, kind)
			}
		}
	}
	return nil
}

type CompleteInstanceRequest struct {
	Token       string         `json:"token" validate:"required"`
	Session     SessionPayload `json:"session"`
	PlayersName string         `json:"players_name" validate:"omitempty,max=100"`
}

func (c CompleteInstanceRequest) Validate() error {
	if err := GetValidator().Struct(c); err != nil {
		return err
	}
	return c.Session.Validate()
}

type SessionResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	PlayersName string          `json:"players_name,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	CompletedAt time.Time       `json:"completedAt"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Total    int64             `json:"total"`
}
