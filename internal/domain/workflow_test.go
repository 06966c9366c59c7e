package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		current StatusState
		next    StatusState
		want    bool
	}{
		{"gemeld to behandeling", StateGemeld, StateBehandeling, true},
		{"gemeld to afgehandeld", StateGemeld, StateAfgehandeld, true},
		{"gemeld to heropend", StateGemeld, StateHeropend, false},
		{"afwachting to on hold", StateAfwachting, StateOnHold, true},
		{"behandeling to te verzenden", StateBehandeling, StateTeVerzenden, true},
		{"te verzenden to verzonden", StateTeVerzenden, StateVerzonden, true},
		{"te verzenden to afgehandeld", StateTeVerzenden, StateAfgehandeld, false},
		{"verzonden to afgehandeld extern", StateVerzonden, StateAfgehandeldExtern, true},
		{"verzenden mislukt back to gemeld", StateVerzendenMislukt, StateGemeld, true},
		{"afgehandeld to heropend", StateAfgehandeld, StateHeropend, true},
		{"afgehandeld to behandeling", StateAfgehandeld, StateBehandeling, false},
		{"heropend to behandeling", StateHeropend, StateBehandeling, true},
		{"geannuleerd is terminal", StateGeannuleerd, StateGemeld, false},
		{"gesplitst is terminal", StateGesplitst, StateBehandeling, false},
		{"same state is not allowed", StateBehandeling, StateBehandeling, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.current, tc.next); got != tc.want {
				t.Fatalf("CanTransition(%q, %q) = %v, want %v", tc.current, tc.next, got, tc.want)
			}
		})
	}
}

func TestAllowedStatusChangesOnlyListValidStates(t *testing.T) {
	for current, nexts := range AllowedStatusChanges {
		if !current.IsValid() {
			t.Fatalf("unknown state %q used as key", current)
		}
		for _, next := range nexts {
			if !next.IsValid() {
				t.Fatalf("unknown state %q reachable from %q", next, current)
			}
		}
	}
}

func TestRequiresTargetAPI(t *testing.T) {
	if !RequiresTargetAPI(StateTeVerzenden) {
		t.Fatalf("te verzenden should require a target api")
	}
	if !RequiresTargetAPI(StateVerzonden) {
		t.Fatalf("verzonden should require a target api")
	}
	if RequiresTargetAPI(StateAfgehandeld) {
		t.Fatalf("afgehandeld should not require a target api")
	}
}

func TestStatusStateDisplayName(t *testing.T) {
	if got := StateGemeld.DisplayName(); got != "Gemeld" {
		t.Fatalf("DisplayName = %q, want Gemeld", got)
	}
	if StatusState("x").IsValid() {
		t.Fatalf("unknown state should not validate")
	}
}
