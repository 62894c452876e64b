package models

import "time"

// PresetOrigin tells whether a preset id was assigned by the remote store or
// synthesized locally while offline. It is carried explicitly on the preset
// so code never has to re-derive origin from the shape of the id.
type PresetOrigin string

const (
	// OriginRemote marks a preset whose id is known to the remote store.
	OriginRemote PresetOrigin = "remote"

	// OriginLocal marks a preset created offline. Its id means nothing to
	// the remote store, so it must never be the target of a remote update
	// or delete.
	OriginLocal PresetOrigin = "local"
)

// FavoritePreset is a named, user-owned collection of favorite spell ids
// (a "grimoire"). SpellIDs is ordered and free of duplicates.
type FavoritePreset struct {
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	UserID      string       `json:"user_id"`
	Origin      PresetOrigin `json:"origin"`
	SpellIDs    []string     `json:"spell_ids"`
}

// IsLocal reports whether the preset was synthesized offline and is not yet
// known to the remote store.
func (p *FavoritePreset) IsLocal() bool {
	return p.Origin == OriginLocal
}

// HasSpell reports whether the given spell id is already in the preset.
func (p *FavoritePreset) HasSpell(spellID string) bool {
	for _, id := range p.SpellIDs {
		if id == spellID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the preset.
func (p *FavoritePreset) Clone() *FavoritePreset {
	c := *p
	c.SpellIDs = append([]string(nil), p.SpellIDs...)
	return &c
}

// PresetUpdates is a partial update applied to a preset; nil fields are left
// untouched.
type PresetUpdates struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	SpellIDs    *[]string `json:"spell_ids,omitempty"`
}

// Apply writes the non-nil fields onto the preset and bumps UpdatedAt.
func (u PresetUpdates) Apply(p *FavoritePreset, now time.Time) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.SpellIDs != nil {
		p.SpellIDs = append([]string(nil), (*u.SpellIDs)...)
	}
	p.UpdatedAt = now
}
