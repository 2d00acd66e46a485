package types

// legalTransitions is the closed set of contact lifecycle transitions.
// ARCHIVED is absorbing: it appears as a target everywhere and a source nowhere.
var legalTransitions = map[ContactStatus]map[ContactStatus]bool{
	StatusNew: {
		StatusResearching: true,
		StatusArchived:    true,
	},
	StatusResearching: {
		StatusDraftReady: true,
		StatusNew:        true, // rollback after a failed enrichment step
		StatusArchived:   true,
	},
	StatusDraftReady: {
		StatusSent:     true,
		StatusArchived: true,
	},
	StatusSent: {
		StatusArchived: true,
	},
	StatusArchived: {},
}

// CanTransition reports whether moving a contact from one status to another is legal.
func CanTransition(from, to ContactStatus) bool {
	targets, ok := legalTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Terminal reports whether a status permits no further transitions.
func Terminal(status ContactStatus) bool {
	return len(legalTransitions[status]) == 0
}
