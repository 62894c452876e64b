package models

import "encoding/json"

// OperationType identifies the kind of mutation recorded in the pending
// queue while the client is offline.
type OperationType string

const (
	OpCreatePreset OperationType = "CREATE_PRESET"
	OpUpdatePreset OperationType = "UPDATE_PRESET"
	OpDeletePreset OperationType = "DELETE_PRESET"
	OpAddSpell     OperationType = "ADD_SPELL"
	OpRemoveSpell  OperationType = "REMOVE_SPELL"
)

// PendingOperation is one queued mutation awaiting replay against the remote
// store. Operations for a user replay in Timestamp order, so a create always
// lands before an update that references the created preset.
type PendingOperation struct {
	ID        string          `json:"id"`
	Type      OperationType   `json:"type"`
	UserID    string          `json:"user_id"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	Data      json.RawMessage `json:"data"`
}

// CreatePresetPayload carries the creation data for a preset made offline.
// LocalID names the locally-synthesized preset so later offline edits can
// find and rewrite this payload; it is never sent to the remote store, which
// assigns its own id on insert.
type CreatePresetPayload struct {
	LocalID     string   `json:"local_id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	UserID      string   `json:"user_id"`
	SpellIDs    []string `json:"spell_ids"`
}

// UpdatePresetPayload targets a preset already known to the remote store.
type UpdatePresetPayload struct {
	ID      string        `json:"id"`
	Updates PresetUpdates `json:"updates"`
}

// DeletePresetPayload targets a preset already known to the remote store.
type DeletePresetPayload struct {
	ID string `json:"id"`
}
