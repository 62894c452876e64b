package api

// Spell represents a spell row from the remote compendium.
type Spell struct {
	ID          string   `json:"id"`
	Name        string   `json:"nome"`
	School      string   `json:"escola,omitempty"`
	Circle      int      `json:"circulo"`
	Description string   `json:"descricao,omitempty"`
	Classes     []string `json:"classes,omitempty"`
}

// SpellClassLink is a denormalized spell-to-class cross reference, used to
// enrich spells whose rows carry no direct class data.
type SpellClassLink struct {
	Magia  string `json:"magia"`
	Classe string `json:"classe"`
}
