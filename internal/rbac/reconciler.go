package rbac

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/newsportal/internal/observability"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MembershipStore serializes membership work per user. WithUserLock runs fn
// inside one transaction holding a row lock on the user; fn returning an
// error rolls everything back. A missing user yields apperror.ErrNotFound.
type MembershipStore interface {
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(tx MembershipTx) error) error
}

// MembershipTx operates on the locked user.
type MembershipTx interface {
	Groups() ([]string, error)
	StoredRole() (string, error)
	// AddGroup creates the group when missing and is a no-op for an
	// existing membership.
	AddGroup(name string) error
	RemoveGroup(name string) error
	ClearGroups() error
	SetRole(role Role) error
}

type Trigger string

const (
	TriggerAdd    Trigger = "membership_add"
	TriggerRemove Trigger = "membership_remove"
	TriggerClear  Trigger = "membership_clear"
	TriggerSync   Trigger = "membership_sync"
	TriggerAssign Trigger = "role_assign"
)

type Change struct {
	UserID  uuid.UUID
	From    Role
	To      Role
	Trigger Trigger
}

// Notifier is told about committed role changes.
type Notifier func(ctx context.Context, change Change)

// Reconciler is the only writer of the denormalized role field. Every path
// mutates group membership first and then projects it onto the field in the
// same transaction.
type Reconciler struct {
	store   MembershipStore
	log     zerolog.Logger
	notify  Notifier
	metrics *observability.Metrics
}

func NewReconciler(store MembershipStore, log zerolog.Logger, notify Notifier, metrics *observability.Metrics) *Reconciler {
	if notify == nil {
		notify = func(context.Context, Change) {}
	}
	return &Reconciler{
		store:   store,
		log:     log.With().Str("component", "role_reconciler").Logger(),
		notify:  notify,
		metrics: metrics,
	}
}

func (r *Reconciler) AddToGroup(ctx context.Context, userID uuid.UUID, group string) (Role, error) {
	role, ok := ParseRole(group)
	if !ok {
		return "", fmt.Errorf("%w: unknown group %q", apperror.ErrValidation, group)
	}
	return r.run(ctx, userID, TriggerAdd, func(tx MembershipTx) error {
		return tx.AddGroup(role.GroupName())
	})
}

func (r *Reconciler) RemoveFromGroup(ctx context.Context, userID uuid.UUID, group string) (Role, error) {
	role, ok := ParseRole(group)
	if !ok {
		return "", fmt.Errorf("%w: unknown group %q", apperror.ErrValidation, group)
	}
	return r.run(ctx, userID, TriggerRemove, func(tx MembershipTx) error {
		return tx.RemoveGroup(role.GroupName())
	})
}

func (r *Reconciler) ClearGroups(ctx context.Context, userID uuid.UUID) (Role, error) {
	return r.run(ctx, userID, TriggerClear, func(tx MembershipTx) error {
		return tx.ClearGroups()
	})
}

// AssignRole handles administrative elevation. The requested role becomes
// the user's only group and the field is then derived from it, so the
// field never drives membership.
func (r *Reconciler) AssignRole(ctx context.Context, userID uuid.UUID, role Role) (Role, error) {
	if _, ok := ParseRole(string(role)); !ok {
		return "", fmt.Errorf("%w: invalid role %q", apperror.ErrValidation, role)
	}
	return r.run(ctx, userID, TriggerAssign, func(tx MembershipTx) error {
		if err := tx.ClearGroups(); err != nil {
			return err
		}
		return tx.AddGroup(role.GroupName())
	})
}

// OnMembershipChange recomputes the role from current membership. Calling
// it again without an intervening membership change writes nothing.
func (r *Reconciler) OnMembershipChange(ctx context.Context, userID uuid.UUID) (Role, error) {
	return r.run(ctx, userID, TriggerSync, nil)
}

func (r *Reconciler) run(ctx context.Context, userID uuid.UUID, trigger Trigger, mutate func(MembershipTx) error) (Role, error) {
	var change Change
	var changed bool

	err := r.store.WithUserLock(ctx, userID, func(tx MembershipTx) error {
		if mutate != nil {
			if err := mutate(tx); err != nil {
				return reconciliationError(err)
			}
		}

		groups, err := tx.Groups()
		if err != nil {
			return reconciliationError(err)
		}
		stored, err := tx.StoredRole()
		if err != nil {
			return reconciliationError(err)
		}

		resolved := Classify(groups)
		change = Change{UserID: userID, From: Role(stored), To: resolved, Trigger: trigger}
		if Role(stored) == resolved {
			return nil
		}
		if err := tx.SetRole(resolved); err != nil {
			return reconciliationError(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) && !errors.Is(err, apperror.ErrReconciliation) {
			err = reconciliationError(err)
		}
		r.metrics.RecordReconciliation(string(trigger), "error")
		r.log.Error().Err(err).Str("user_id", userID.String()).Str("trigger", string(trigger)).Msg("role reconciliation failed")
		return "", err
	}

	if !changed {
		r.metrics.RecordReconciliation(string(trigger), "unchanged")
		return change.To, nil
	}

	r.metrics.RecordReconciliation(string(trigger), "changed")
	r.log.Info().
		Str("user_id", userID.String()).
		Str("from", string(change.From)).
		Str("to", string(change.To)).
		Str("trigger", string(trigger)).
		Msg("role updated")
	r.notify(ctx, change)

	return change.To, nil
}

func reconciliationError(err error) error {
	if errors.Is(err, apperror.ErrReconciliation) {
		return err
	}
	return fmt.Errorf("%w: %v", apperror.ErrReconciliation, err)
}
