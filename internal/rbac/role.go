package rbac

import "strings"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWriter Role = "writer"
	RoleReader Role = "reader"
)

// Roles lists the canonical roles in precedence order.
var Roles = []Role{RoleAdmin, RoleWriter, RoleReader}

func (r Role) String() string {
	return string(r)
}

// GroupName is the name of the group that grants r.
func (r Role) GroupName() string {
	return string(r)
}

// ParseRole accepts a role or group name case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleWriter:
		return RoleWriter, true
	case RoleReader:
		return RoleReader, true
	}
	return "", false
}

// Classify resolves group membership to exactly one role.
// Admin beats Writer beats Reader; order of groups does not matter and
// unknown groups are ignored.
func Classify(groups []string) Role {
	var writer bool
	for _, g := range groups {
		switch r, _ := ParseRole(g); r {
		case RoleAdmin:
			return RoleAdmin
		case RoleWriter:
			writer = true
		}
	}
	if writer {
		return RoleWriter
	}
	return RoleReader
}
