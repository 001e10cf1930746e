// Package policy is the single source of truth for authorization decisions.
// Authorize is a pure function over the actor, the target resource and the
// attempted operation; callers apply the decision, the engine never mutates
// state.
package policy

import (
	"github.com/google/uuid"

	"github.com/noah-isme/eventhub-api/internal/models"
)

// Actor is the authenticated principal a decision is made for.
type Actor struct {
	ID        uuid.UUID
	Role      models.Role
	Status    models.Status
	CompanyID *uuid.UUID
}

// ActorFromUser projects a stored user into its policy view.
func ActorFromUser(u models.User) Actor {
	return Actor{
		ID:        u.ID,
		Role:      u.Role,
		Status:    u.Status,
		CompanyID: u.CompanyID,
	}
}

// ResourceKind names the kind of resource an operation targets.
type ResourceKind string

// Resource kinds.
const (
	ResourceCompany         ResourceKind = "company"
	ResourceEvent           ResourceKind = "event"
	ResourceApprovalRequest ResourceKind = "approval_request"
	ResourceProfile         ResourceKind = "profile"
	ResourceRegistration    ResourceKind = "registration"
	ResourceActivityLog     ResourceKind = "activity_log"
)

// Resource describes the target of an operation. Zero-value reference fields
// mean "not applicable" for the kind in question.
type Resource struct {
	Kind ResourceKind
	// OwnerID is the user the resource belongs to: the target of an approval
	// request, the owner of a profile or registration.
	OwnerID uuid.UUID
	// CompanyID is the organizational unit owning the resource.
	CompanyID *uuid.UUID
	// ManagerID is the manager owning an event, used for registrant listings.
	ManagerID uuid.UUID
}

// Operation names an action attempted against a resource.
type Operation string

// Operations.
const (
	OpView            Operation = "view"
	OpList            Operation = "list"
	OpCreate          Operation = "create"
	OpUpdate          Operation = "update"
	OpDelete          Operation = "delete"
	OpApprove         Operation = "approve"
	OpReject          Operation = "reject"
	OpListPending     Operation = "list_pending"
	OpRegister        Operation = "register"
	OpUnregister      Operation = "unregister"
	OpListRegistrants Operation = "list_registrants"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow grants the operation.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny refuses the operation with a reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Authorize evaluates the access rules in precedence order; the first match
// wins. It has no side effects.
func Authorize(actor Actor, res Resource, op Operation) Decision {
	if approvedOnly(res.Kind, op) && actor.Status != models.StatusApproved {
		return Deny("not approved")
	}

	// Nobody processes their own approval request, the dean included.
	if res.Kind == ResourceApprovalRequest && (op == OpApprove || op == OpReject) && res.OwnerID == actor.ID {
		return Deny("cannot act on self")
	}

	switch actor.Role {
	case models.RoleDean:
		return authorizeDean(res, op)
	case models.RoleManager:
		return authorizeManager(actor, res, op)
	case models.RoleStudent:
		return authorizeStudent(actor, res, op)
	default:
		return Deny("unknown role")
	}
}

// approvedOnly reports whether the operation demands an approved account.
// Listing pending requests is exempt so a pending manager can see their own
// company's queue, and profile reads stay visible to every account.
func approvedOnly(kind ResourceKind, op Operation) bool {
	if kind == ResourceApprovalRequest && op == OpListPending {
		return false
	}
	if kind == ResourceProfile && op == OpView {
		return false
	}
	return true
}

func authorizeDean(res Resource, op Operation) Decision {
	switch res.Kind {
	case ResourceCompany, ResourceEvent, ResourceActivityLog:
		return Allow()
	case ResourceApprovalRequest:
		switch op {
		case OpApprove, OpReject, OpListPending:
			return Allow()
		}
	case ResourceProfile:
		if op == OpView || op == OpUpdate {
			return Allow()
		}
	case ResourceRegistration:
		if op == OpListRegistrants {
			return Allow()
		}
	}
	return Deny("operation not permitted")
}

func authorizeManager(actor Actor, res Resource, op Operation) Decision {
	switch res.Kind {
	case ResourceEvent:
		if sameCompany(actor.CompanyID, res.CompanyID) {
			return Allow()
		}
		return Deny("cross-unit access")
	case ResourceRegistration:
		if op == OpListRegistrants {
			if res.ManagerID == actor.ID {
				return Allow()
			}
			return Deny("cross-unit access")
		}
	case ResourceCompany:
		if op == OpView && sameCompany(actor.CompanyID, res.CompanyID) {
			return Allow()
		}
		return Deny("operation not permitted")
	case ResourceApprovalRequest:
		switch op {
		case OpApprove, OpReject:
			if sameCompany(actor.CompanyID, res.CompanyID) {
				return Allow()
			}
			return Deny("cross-unit access")
		case OpListPending:
			// Result sets are scoped to the manager's own unit by the caller.
			return Allow()
		}
	case ResourceProfile:
		if (op == OpView || op == OpUpdate) && res.OwnerID == actor.ID {
			return Allow()
		}
	}
	return Deny("operation not permitted")
}

func authorizeStudent(actor Actor, res Resource, op Operation) Decision {
	switch res.Kind {
	case ResourceEvent:
		if op == OpView || op == OpList {
			return Allow()
		}
	case ResourceRegistration:
		if (op == OpRegister || op == OpUnregister || op == OpList) && res.OwnerID == actor.ID {
			return Allow()
		}
	case ResourceProfile:
		if (op == OpView || op == OpUpdate) && res.OwnerID == actor.ID {
			return Allow()
		}
	}
	return Deny("operation not permitted")
}

func sameCompany(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}
