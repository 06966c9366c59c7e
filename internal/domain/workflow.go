package domain

// AllowedStatusChanges defines the workflow state machine: for every
// current state the set of states a signal may move to next. States
// absent from a list are rejected at the service layer.
var AllowedStatusChanges = map[StatusState][]StatusState{
	StateGemeld: {
		StateAfwachting,
		StateBehandeling,
		StateTeVerzenden,
		StateAfgehandeld,
		StateGeannuleerd,
		StateGesplitst,
	},
	StateAfwachting: {
		StateBehandeling,
		StateOnHold,
		StateTeVerzenden,
		StateAfgehandeld,
		StateGeannuleerd,
	},
	StateBehandeling: {
		StateAfwachting,
		StateOnHold,
		StateTeVerzenden,
		StateAfgehandeld,
		StateGeannuleerd,
	},
	StateOnHold: {
		StateAfwachting,
		StateBehandeling,
		StateGeannuleerd,
	},
	StateTeVerzenden: {
		StateVerzonden,
		StateVerzendenMislukt,
	},
	StateVerzonden: {
		StateAfgehandeldExtern,
	},
	StateVerzendenMislukt: {
		StateGemeld,
		StateTeVerzenden,
	},
	StateAfgehandeldExtern: {
		StateAfgehandeld,
		StateGeannuleerd,
	},
	StateAfgehandeld: {
		StateHeropend,
	},
	StateHeropend: {
		StateBehandeling,
		StateAfgehandeld,
		StateGeannuleerd,
	},
	StateGeannuleerd: {},
	StateGesplitst:   {},
}

// CanTransition reports whether moving from current to next is allowed
// by the workflow table.
func CanTransition(current, next StatusState) bool {
	for _, candidate := range AllowedStatusChanges[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// RequiresTargetAPI reports whether a state needs an external system
// reference before a signal may enter it.
func RequiresTargetAPI(state StatusState) bool {
	return state == StateTeVerzenden || state == StateVerzonden
}
