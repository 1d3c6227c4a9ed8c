package auth

import "testing"

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		got, ok := ParseRole(string(r))
		if !ok || got != r {
			t.Errorf("ParseRole(%q) = %q, %v", r, got, ok)
		}
	}
	for _, name := range []string{"admin", "Admin", "", "ROOT", " ADMIN"} {
		if _, ok := ParseRole(name); ok {
			t.Errorf("ParseRole(%q) should fail", name)
		}
	}
}

func TestParsePermission(t *testing.T) {
	if got := len(Permissions()); got != 21 {
		t.Fatalf("len(Permissions()) = %d, want 21", got)
	}
	for _, p := range Permissions() {
		got, ok := ParsePermission(string(p))
		if !ok || got != p {
			t.Errorf("ParsePermission(%q) = %q, %v", p, got, ok)
		}
	}
	if _, ok := ParsePermission("agent_read"); ok {
		t.Error("ParsePermission must be case-sensitive")
	}
}

func TestVocabularyCopies(t *testing.T) {
	rs := Roles()
	rs[0] = "MUTATED"
	if Roles()[0] != RoleAdmin {
		t.Fatal("Roles() must return a copy")
	}
	if len(Roles()) != 11 {
		t.Fatalf("len(Roles()) = %d, want 11", len(Roles()))
	}
}

func TestKnownNames(t *testing.T) {
	got := knownRoles([]string{"ADMIN", "WIZARD", " USER ", "", "admin"})
	want := []string{"ADMIN", "USER"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("knownRoles() = %v, want %v", got, want)
	}
	if got := knownPermissions(nil); got == nil || len(got) != 0 {
		t.Fatalf("knownPermissions(nil) = %#v, want empty", got)
	}
}
