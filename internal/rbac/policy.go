package rbac

import (
	"fmt"

	"anoa.com/newsportal/pkg/apperror"
	"github.com/google/uuid"
)

type Resource string

const (
	ResourceNews       Resource = "news"
	ResourceNewsImage  Resource = "news_image"
	ResourceCategory   Resource = "category"
	ResourceComment    Resource = "comment"
	ResourceLike       Resource = "like"
	ResourceSponsor    Resource = "sponsor"
	ResourceAccount    Resource = "account"
	ResourceMembership Resource = "membership"
	ResourceStats      Resource = "stats"
)

type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionToggle   Action = "toggle"
	ActionRegister Action = "register"
	ActionManage   Action = "manage"
)

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

// Identity is the caller as seen by the gate. The zero value is anonymous.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == uuid.Nil
}

// Rule grants an operation. Anonymous opens it to everyone; otherwise the
// caller must hold one of Roles. OwnerOnly additionally requires the
// caller to own the object.
type Rule struct {
	Anonymous bool
	Roles     []Role
	OwnerOnly bool
}

type Key struct {
	Resource Resource
	Action   Action
}

type Policy map[Key]Rule

var (
	everyone      = Rule{Anonymous: true}
	authenticated = Rule{Roles: []Role{RoleAdmin, RoleWriter, RoleReader}}
	editors       = Rule{Roles: []Role{RoleAdmin, RoleWriter}}
	adminsOnly    = Rule{Roles: []Role{RoleAdmin}}
	authorOnly    = Rule{Roles: []Role{RoleAdmin, RoleWriter, RoleReader}, OwnerOnly: true}
)

// DefaultPolicy returns the portal's capability table. Pairs that are not
// listed are denied.
func DefaultPolicy() Policy {
	return Policy{
		{ResourceNews, ActionList}:     everyone,
		{ResourceNews, ActionRetrieve}: everyone,
		{ResourceNews, ActionCreate}:   editors,
		{ResourceNews, ActionUpdate}:   editors,
		{ResourceNews, ActionDelete}:   editors,

		{ResourceNewsImage, ActionCreate}: editors,
		{ResourceNewsImage, ActionDelete}: editors,

		{ResourceCategory, ActionList}:     everyone,
		{ResourceCategory, ActionRetrieve}: everyone,
		{ResourceCategory, ActionCreate}:   adminsOnly,
		{ResourceCategory, ActionUpdate}:   adminsOnly,
		{ResourceCategory, ActionDelete}:   adminsOnly,

		{ResourceComment, ActionList}:     authenticated,
		{ResourceComment, ActionCreate}:   authenticated,
		{ResourceComment, ActionRetrieve}: everyone,
		{ResourceComment, ActionUpdate}:   authorOnly,
		{ResourceComment, ActionDelete}:   authorOnly,

		{ResourceLike, ActionToggle}: authenticated,

		{ResourceSponsor, ActionList}:     everyone,
		{ResourceSponsor, ActionRetrieve}: everyone,
		{ResourceSponsor, ActionCreate}:   adminsOnly,
		{ResourceSponsor, ActionUpdate}:   adminsOnly,
		{ResourceSponsor, ActionDelete}:   adminsOnly,

		{ResourceAccount, ActionRegister}: everyone,
		{ResourceAccount, ActionCreate}:   adminsOnly,
		{ResourceAccount, ActionRetrieve}: authenticated,

		{ResourceMembership, ActionManage}: adminsOnly,

		{ResourceStats, ActionRetrieve}: editors,
	}
}

// Authorize is the route-level decision. For owner-only rules it admits any
// caller holding an eligible role; the object check happens in
// AuthorizeObject once the object is loaded.
func (p Policy) Authorize(id Identity, action Action, resource Resource) Decision {
	rule, ok := p[Key{resource, action}]
	if !ok {
		return Deny
	}
	if rule.Anonymous {
		return Allow
	}
	if id.IsAnonymous() {
		return Deny
	}
	for _, r := range rule.Roles {
		if r == id.Role {
			return Allow
		}
	}
	return Deny
}

// AuthorizeObject applies Authorize and then, for owner-only rules,
// compares ownerID with the caller regardless of role.
func (p Policy) AuthorizeObject(id Identity, action Action, resource Resource, ownerID uuid.UUID) Decision {
	if p.Authorize(id, action, resource) == Deny {
		return Deny
	}
	if rule := p[Key{resource, action}]; rule.OwnerOnly && ownerID != id.UserID {
		return Deny
	}
	return Allow
}

// Check converts a denial into an error: anonymous callers get
// ErrUnauthorized, authenticated ones ErrForbidden.
func (p Policy) Check(id Identity, action Action, resource Resource) error {
	return denial(id, action, resource, p.Authorize(id, action, resource))
}

func (p Policy) CheckObject(id Identity, action Action, resource Resource, ownerID uuid.UUID) error {
	return denial(id, action, resource, p.AuthorizeObject(id, action, resource, ownerID))
}

func denial(id Identity, action Action, resource Resource, d Decision) error {
	if d == Allow {
		return nil
	}
	if id.IsAnonymous() {
		return fmt.Errorf("%w: authentication credentials were not provided", apperror.ErrUnauthorized)
	}
	return fmt.Errorf("%w: you do not have permission to %s %s", apperror.ErrForbidden, action, resource)
}
