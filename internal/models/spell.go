package models

// Spell is one entry of the spell compendium as cached locally.
type Spell struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	School      string   `json:"school,omitempty"`
	Circle      int      `json:"circle"`
	Description string   `json:"description,omitempty"`
	Classes     []string `json:"classes,omitempty"`
}

// SpellClassLink is a denormalized spell-name to class-name cross reference.
// The remote table uses the Portuguese column names, kept here as json tags.
type SpellClassLink struct {
	Magia  string `json:"magia"`
	Classe string `json:"classe"`
}
