package policy

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Deny refuses the request outright.
	Deny Decision = iota
	// Allow grants full access to the resource.
	Allow
	// AllowRestricted grants read-only access (student-self and
	// guardian-ward rules never grant writes).
	AllowRestricted
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case AllowRestricted:
		return "allow_restricted"
	default:
		return "deny"
	}
}

// Principal describes the caller. StudentID is the caller's own student
// profile (0 if none); Wards are the student profiles the caller is
// guardian of. Both are resolved at login and carried in the token.
type Principal struct {
	UserID    uint
	Roles     []string
	StudentID uint
	Wards     []uint
}

// HasRole reports whether the principal carries the named role.
func (p Principal) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Resource describes the target of the request.
//
// OwnerIDs are the user IDs that own the resource (class teacher, subject
// teachers, assessment creator). StudentID is the student the resource is
// about (a grade's student, an invoice's student), 0 when not applicable.
// StudentIDs lists every student the resource touches (an assessment's
// score entries); access through any one of them is restricted.
type Resource struct {
	Kind       string
	OwnerIDs   []uint
	StudentID  uint
	StudentIDs []uint
}

// Decide evaluates the rule chain in precedence order and returns the
// first match:
//
//	1. admin                -> Allow
//	2. owner / creator      -> Allow
//	3. student-self         -> AllowRestricted
//	4. guardian-of-ward     -> AllowRestricted
//	5. (no rule matched)    -> Deny
func Decide(p Principal, r Resource) Decision {
	if p.HasRole("admin") {
		return Allow
	}

	for _, owner := range r.OwnerIDs {
		if owner != 0 && owner == p.UserID {
			return Allow
		}
	}

	if r.StudentID != 0 && p.canSee(r.StudentID) {
		return AllowRestricted
	}
	for _, id := range r.StudentIDs {
		if p.canSee(id) {
			return AllowRestricted
		}
	}

	return Deny
}

func (p Principal) canSee(studentID uint) bool {
	if studentID == 0 {
		return false
	}
	if p.StudentID == studentID {
		return true
	}
	for _, w := range p.Wards {
		if w == studentID {
			return true
		}
	}
	return false
}

// VisibleStudents filters ids down to the students the principal may see
// under the student-self and guardian-ward rules. Used to trim nested
// score lists after a restricted read.
func VisibleStudents(p Principal, ids []uint) []uint {
	var out []uint
	for _, id := range ids {
		if p.canSee(id) {
			out = append(out, id)
		}
	}
	return out
}

// CanRead reports whether the decision permits reads.
func CanRead(d Decision) bool {
	return d == Allow || d == AllowRestricted
}

// CanWrite reports whether the decision permits writes. Restricted access
// is read-only.
func CanWrite(d Decision) bool {
	return d == Allow
}
