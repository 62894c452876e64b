// Package api contains the wire types exchanged with the remote grimoire
// store. The store itself is an external collaborator; only the shapes used
// by the client live here.
package api

import "time"

// Preset represents a favorite-spell collection row in the remote store.
type Preset struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id"`
	SpellIDs    []string  `json:"spell_ids"`
}

// CreatePresetRequest is the payload for inserting a new preset.
// It never carries a client-generated id: the store assigns one.
type CreatePresetRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	UserID      string   `json:"user_id"`
	SpellIDs    []string `json:"spell_ids"`
}

// UpdatePresetRequest is a partial update; nil fields are left untouched.
type UpdatePresetRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	SpellIDs    *[]string `json:"spell_ids,omitempty"`
}

// ErrorResponse is the error envelope returned by the remote store.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
