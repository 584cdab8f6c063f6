package model

// ReloadDecision is the outcome of offering an updated registry to a live
// development session.
type ReloadDecision int

const (
	// ReloadSwap replaces the live registry in place.
	ReloadSwap ReloadDecision = iota
	// ReloadInvalidate requests a full reload because new stories appeared.
	ReloadInvalidate
)

func (d ReloadDecision) String() string {
	if d == ReloadInvalidate {
		return "full reload"
	}

	return "hot swap"
}

// ReloadReport summarizes one regeneration as seen by a live registry.
type ReloadReport struct {
	Decision ReloadDecision
	// Stories is the number of live story IDs after the update.
	Stories int
	// Added holds the records of story IDs the registry did not have before.
	Added []StoryRecord
	// Removed holds the story IDs no longer generated.
	Removed []string
}
