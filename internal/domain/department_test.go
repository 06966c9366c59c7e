package domain

import "testing"

func TestValidateDepartmentCode(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"", true},
		{"ASC", true},
		{"OMG", true},
		{"A", true},
		{"ASCX", false},
		{"TOOLONG", false},
	}
	for _, tc := range cases {
		msg, ok := ValidateDepartmentCode(tc.code)
		if ok != tc.ok {
			t.Fatalf("ValidateDepartmentCode(%q) ok = %v, want %v", tc.code, ok, tc.ok)
		}
		if !ok && msg != MsgDepartmentCodeTooLong {
			t.Fatalf("ValidateDepartmentCode(%q) msg = %q, want %q", tc.code, msg, MsgDepartmentCodeTooLong)
		}
	}
}

func TestValidateDepartmentCodeCountsRunes(t *testing.T) {
	// three multi-byte characters still fit the bound
	if _, ok := ValidateDepartmentCode("äëï"); !ok {
		t.Fatalf("three runes should be accepted")
	}
	if _, ok := ValidateDepartmentCode("äëïö"); ok {
		t.Fatalf("four runes should be rejected")
	}
}

func TestStadsdeel(t *testing.T) {
	if !StadsdeelOost.IsValid() {
		t.Fatalf("oost should be a valid stadsdeel")
	}
	if got := StadsdeelOost.DisplayName(); got != "Oost" {
		t.Fatalf("DisplayName = %q, want Oost", got)
	}
	if Stadsdeel("Z").IsValid() {
		t.Fatalf("unknown stadsdeel should not validate")
	}
}

func TestUserHasPermission(t *testing.T) {
	user := &User{Permissions: []string{PermSignalWrite}}
	if !user.HasPermission(PermSignalWrite) {
		t.Fatalf("expected sia_write")
	}
	if user.HasPermission(PermDepartmentWrite) {
		t.Fatalf("unexpected sia_department_write")
	}

	super := &User{IsSuperuser: true}
	if !super.HasPermission(PermDepartmentWrite) {
		t.Fatalf("superuser should hold every permission")
	}

	var nobody *User
	if nobody.HasPermission(PermSignalWrite) {
		t.Fatalf("nil user should have no permissions")
	}
}
