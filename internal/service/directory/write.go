package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/erp-backend/internal/domain"
	"github.com/heartmarshall/erp-backend/internal/hierarchy"
	"github.com/heartmarshall/erp-backend/pkg/ctxutil"
)

// Create validates and stores a new active record and returns it as stored.
// ID, IsActive and audit fields of v are ignored.
func (s *Service[T]) Create(ctx context.Context, v T) (T, error) {
	var zero T

	v = v.Normalize()
	if err := v.Validate(); err != nil {
		return zero, err
	}

	actor := ctxutil.ActorOrSystem(ctx)
	now := s.now().UTC()
	base := v.BaseInfo()
	base.ID = 0
	base.IsActive = true
	base.Audit = domain.Audit{
		CreatedBy:      actor,
		CreationDate:   now,
		LastModifiedBy: actor,
		ModifiedDate:   now,
	}
	v = v.Rebase(base)

	var created T
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkParent(txCtx, 0, base.ParentID); err != nil {
			return err
		}

		id, err := s.repo.Create(txCtx, v)
		if err != nil {
			return fmt.Errorf("create %s: %w", s.kind, err)
		}

		created, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("reload %s: %w", s.kind, err)
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	s.log.InfoContext(ctx, "record created",
		slog.Int64("id", created.RecordID()),
		slog.String("actor", actor),
	)

	return created, nil
}

// Update replaces the editable fields and the parent of record id with
// those of v. The active flag and creation audit are kept.
func (s *Service[T]) Update(ctx context.Context, id int64, v T) (T, error) {
	var zero T

	v = v.Normalize()
	if err := v.Validate(); err != nil {
		return zero, err
	}

	actor := ctxutil.ActorOrSystem(ctx)
	parentID := v.ParentRef()

	var updated T
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("get %s: %w", s.kind, err)
		}

		base := existing.BaseInfo()
		if !sameID(base.ParentID, parentID) {
			if err := s.checkParent(txCtx, id, parentID); err != nil {
				return err
			}
		}
		base.ParentID = parentID
		s.touch(&base, actor)

		updated, err = s.write(txCtx, v.Rebase(base))
		return err
	})
	if err != nil {
		return zero, err
	}

	s.log.InfoContext(ctx, "record updated",
		slog.Int64("id", id),
		slog.String("actor", actor),
	)

	return updated, nil
}

// SetParent moves record id under parentID, or makes it a root when
// parentID is nil.
func (s *Service[T]) SetParent(ctx context.Context, id int64, parentID *int64) (T, error) {
	var zero T

	if parentID != nil && *parentID <= 0 {
		return zero, domain.NewValidationError("parentId", "must be a positive id")
	}

	actor := ctxutil.ActorOrSystem(ctx)

	var updated T
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("get %s: %w", s.kind, err)
		}

		if err := s.checkParent(txCtx, id, parentID); err != nil {
			return err
		}

		base := existing.BaseInfo()
		base.ParentID = parentID
		s.touch(&base, actor)

		updated, err = s.write(txCtx, existing.Rebase(base))
		return err
	})
	if err != nil {
		return zero, err
	}

	s.log.InfoContext(ctx, "parent changed",
		slog.Int64("id", id),
		slog.Any("parent_id", parentID),
		slog.String("actor", actor),
	)

	return updated, nil
}

// Deactivate soft-deletes record id. Deactivating an inactive record is a no-op.
func (s *Service[T]) Deactivate(ctx context.Context, id int64) (T, error) {
	return s.setActive(ctx, id, false)
}

// Activate restores record id. Inactive records are outside the hierarchy
// graph, so the record's own parent chain is checked again first.
func (s *Service[T]) Activate(ctx context.Context, id int64) (T, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service[T]) setActive(ctx context.Context, id int64, active bool) (T, error) {
	var zero T
	actor := ctxutil.ActorOrSystem(ctx)
	changed := false

	var result T
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("get %s: %w", s.kind, err)
		}
		if existing.Active() == active {
			result = existing
			return nil
		}

		base := existing.BaseInfo()
		if active && base.ParentID != nil {
			links, err := s.repo.ParentLinks(txCtx)
			if err != nil {
				return fmt.Errorf("parent links %s: %w", s.kind, err)
			}
			if hierarchy.IsCircular(links, id, base.ParentID) {
				return domain.NewCircularError()
			}
		}
		base.IsActive = active
		s.touch(&base, actor)

		result, err = s.write(txCtx, existing.Rebase(base))
		changed = err == nil
		return err
	})
	if err != nil {
		return zero, err
	}

	if changed {
		s.log.InfoContext(ctx, "active flag changed",
			slog.Int64("id", id),
			slog.Bool("is_active", active),
			slog.String("actor", actor),
		)
	}

	return result, nil
}

// checkParent rejects a parent that does not exist, is inactive, or would
// close a cycle through recordID. recordID is 0 for a record not yet stored.
func (s *Service[T]) checkParent(ctx context.Context, recordID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if *parentID == recordID {
		return domain.NewCircularError()
	}

	parent, err := s.repo.GetByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("parentId", "does not exist")
		}
		return fmt.Errorf("get parent %s: %w", s.kind, err)
	}
	if !parent.Active() {
		return domain.NewValidationError("parentId", "is inactive")
	}

	links, err := s.repo.ParentLinks(ctx)
	if err != nil {
		return fmt.Errorf("parent links %s: %w", s.kind, err)
	}
	if hierarchy.IsCircular(links, recordID, parentID) {
		return domain.NewCircularError()
	}
	return nil
}

func (s *Service[T]) touch(base *domain.Base, actor string) {
	base.LastModifiedBy = actor
	base.ModifiedDate = s.now().UTC()
}

// write stores v and returns it reloaded with relations.
func (s *Service[T]) write(ctx context.Context, v T) (T, error) {
	var zero T
	if err := s.repo.Update(ctx, v.Normalize()); err != nil {
		return zero, fmt.Errorf("update %s: %w", s.kind, err)
	}
	out, err := s.repo.GetByID(ctx, v.RecordID())
	if err != nil {
		return zero, fmt.Errorf("reload %s: %w", s.kind, err)
	}
	return out, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
