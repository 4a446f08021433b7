package policy

import "testing"

func TestDecidePrecedence(t *testing.T) {
	cases := []struct {
		name      string
		principal Principal
		resource  Resource
		want      Decision
	}{
		{
			name:      "admin always allowed",
			principal: Principal{UserID: 1, Roles: []string{"admin"}},
			resource:  Resource{Kind: "grade", StudentID: 7},
			want:      Allow,
		},
		{
			name:      "admin beats ownership mismatch",
			principal: Principal{UserID: 1, Roles: []string{"admin"}},
			resource:  Resource{Kind: "class", OwnerIDs: []uint{99}},
			want:      Allow,
		},
		{
			name:      "owning teacher allowed",
			principal: Principal{UserID: 5, Roles: []string{"teacher"}},
			resource:  Resource{Kind: "assessment", OwnerIDs: []uint{5}},
			want:      Allow,
		},
		{
			name:      "non-owning teacher denied",
			principal: Principal{UserID: 6, Roles: []string{"teacher"}},
			resource:  Resource{Kind: "assessment", OwnerIDs: []uint{5}},
			want:      Deny,
		},
		{
			name:      "student self is read-only",
			principal: Principal{UserID: 10, Roles: []string{"student"}, StudentID: 7},
			resource:  Resource{Kind: "grade", StudentID: 7},
			want:      AllowRestricted,
		},
		{
			name:      "student cannot see another student",
			principal: Principal{UserID: 10, Roles: []string{"student"}, StudentID: 7},
			resource:  Resource{Kind: "grade", StudentID: 8},
			want:      Deny,
		},
		{
			name:      "guardian of ward is read-only",
			principal: Principal{UserID: 20, Roles: []string{"guardian"}, Wards: []uint{7, 8}},
			resource:  Resource{Kind: "invoice", StudentID: 8},
			want:      AllowRestricted,
		},
		{
			name:      "guardian of other student denied",
			principal: Principal{UserID: 20, Roles: []string{"guardian"}, Wards: []uint{7}},
			resource:  Resource{Kind: "invoice", StudentID: 9},
			want:      Deny,
		},
		{
			name:      "ownership outranks student-self",
			principal: Principal{UserID: 5, Roles: []string{"teacher"}, StudentID: 7},
			resource:  Resource{Kind: "grade", OwnerIDs: []uint{5}, StudentID: 7},
			want:      Allow,
		},
		{
			name:      "zero owner id never matches",
			principal: Principal{UserID: 0, Roles: []string{"teacher"}},
			resource:  Resource{Kind: "class", OwnerIDs: []uint{0}},
			want:      Deny,
		},
		{
			name:      "student with score entry reads assessment",
			principal: Principal{UserID: 10, Roles: []string{"student"}, StudentID: 7},
			resource:  Resource{Kind: "assessment", OwnerIDs: []uint{5}, StudentIDs: []uint{6, 7, 8}},
			want:      AllowRestricted,
		},
		{
			name:      "guardian with ward entry reads assessment",
			principal: Principal{UserID: 20, Roles: []string{"guardian"}, Wards: []uint{8}},
			resource:  Resource{Kind: "assessment", OwnerIDs: []uint{5}, StudentIDs: []uint{6, 7, 8}},
			want:      AllowRestricted,
		},
		{
			name:      "student without score entry denied",
			principal: Principal{UserID: 10, Roles: []string{"student"}, StudentID: 9},
			resource:  Resource{Kind: "assessment", OwnerIDs: []uint{5}, StudentIDs: []uint{6, 7, 8}},
			want:      Deny,
		},
		{
			name:      "no rule matches",
			principal: Principal{UserID: 30, Roles: []string{"finance"}},
			resource:  Resource{Kind: "grade", StudentID: 7},
			want:      Deny,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.principal, tc.resource)
			if got != tc.want {
				t.Errorf("Decide() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestVisibleStudents(t *testing.T) {
	guardian := Principal{UserID: 20, Roles: []string{"guardian"}, Wards: []uint{7, 9}}

	got := VisibleStudents(guardian, []uint{6, 7, 8, 9})
	if len(got) != 2 || got[0] != 7 || got[1] != 9 {
		t.Errorf("VisibleStudents() = %v, want [7 9]", got)
	}

	self := Principal{UserID: 10, Roles: []string{"student"}, StudentID: 7}
	got = VisibleStudents(self, []uint{6, 7, 8})
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("VisibleStudents() = %v, want [7]", got)
	}

	if got := VisibleStudents(Principal{UserID: 30}, []uint{6, 7}); got != nil {
		t.Errorf("VisibleStudents() = %v, want nil for a principal with no students", got)
	}
}

func TestDecisionPermissions(t *testing.T) {
	if !CanRead(Allow) || !CanWrite(Allow) {
		t.Error("Allow should permit both reads and writes")
	}
	if !CanRead(AllowRestricted) {
		t.Error("AllowRestricted should permit reads")
	}
	if CanWrite(AllowRestricted) {
		t.Error("AllowRestricted must not permit writes")
	}
	if CanRead(Deny) || CanWrite(Deny) {
		t.Error("Deny should permit nothing")
	}
}
