package cascade

import "testing"

// has reports whether a parent kind declares a dependent on the given
// model table column or join table.
func has(kind, fk, joinTable string) bool {
	for _, d := range Dependents(kind) {
		if d.FK == fk && d.JoinTable == joinTable {
			return true
		}
	}
	return false
}

func TestStudentDependents(t *testing.T) {
	wantFKs := []string{"student_id"}
	for _, d := range Dependents("student") {
		found := false
		for _, fk := range wantFKs {
			if d.FK == fk {
				found = true
			}
		}
		if !found {
			t.Errorf("student dependent with unexpected FK %q", d.FK)
		}
	}

	// Deleting a student must clear their rows on shared attendance
	// sheets and their guardian links, not just direct children.
	if !has("student", "student_id", "student_guardians") {
		t.Error("student cascade missing guardian link cleanup")
	}
	count := len(Dependents("student"))
	if count != 9 {
		t.Errorf("student cascade has %d dependents, want 9", count)
	}
}

func TestUserCascadeCoversMessagingAndAudit(t *testing.T) {
	if !has("user", "sender_id", "") {
		t.Error("user cascade should remove sent messages")
	}
	if !has("user", "user_id", "user_roles") {
		t.Error("user cascade should clear role links")
	}
	if !has("user", "generated_by_id", "") {
		t.Error("user cascade should remove generated report cards")
	}
}

func TestTeacherCascadeLeavesUserAlone(t *testing.T) {
	for _, d := range Dependents("teacher") {
		if d.FK == "user_id" {
			t.Error("teacher profile cascade must not touch the user account")
		}
	}
}

func TestEveryKindDeclared(t *testing.T) {
	want := []string{"user", "student", "teacher", "class", "subject", "assessment", "attendance", "message", "bus", "hostel"}
	declared := make(map[string]bool)
	for _, k := range Kinds() {
		declared[k] = true
	}
	for _, k := range want {
		if !declared[k] {
			t.Errorf("no cascade declared for %q", k)
		}
	}
	if len(declared) != len(want) {
		t.Errorf("declared %d kinds, want %d", len(declared), len(want))
	}
}

func TestDependentsAreWellFormed(t *testing.T) {
	for _, kind := range Kinds() {
		for _, d := range Dependents(kind) {
			if d.FK == "" {
				t.Errorf("%s has a dependent without an FK column", kind)
			}
			if d.Model == nil && d.JoinTable == "" {
				t.Errorf("%s has a dependent with neither model nor join table", kind)
			}
			if d.Model != nil && d.JoinTable != "" {
				t.Errorf("%s has a dependent with both model and join table", kind)
			}
		}
	}
}
