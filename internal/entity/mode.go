package entity

// Mode is the analysis perspective chosen once per share and threaded
// unchanged through every work item of that share.
type Mode string

const (
	ModeStudy   Mode = "study"
	ModeTech    Mode = "tech"
	ModeIdea    Mode = "idea"
	ModeEconomy Mode = "economy"
	ModeGeneral Mode = "general"
)

// ModeChoice pairs a mode key with its display label for the selection prompt.
type ModeChoice struct {
	Key   Mode   `json:"key"`
	Label string `json:"label"`
}

// ModeChoices returns the closed candidate set in presentation order.
func ModeChoices() []ModeChoice {
	return []ModeChoice{
		{ModeStudy, "Study notes"},
		{ModeTech, "Tech news"},
		{ModeIdea, "Ideas"},
		{ModeEconomy, "Economy"},
		{ModeGeneral, "General"},
	}
}
