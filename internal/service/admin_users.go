package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/naturlife/storefront/internal/apperr"
	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/utils"
)

type AdminUsers struct {
	guard *Guard
	users UserStore
	log   *slog.Logger
}

func NewAdminUsers(guard *Guard, users UserStore, log *slog.Logger) *AdminUsers {
	if log == nil {
		log = slog.Default()
	}
	return &AdminUsers{guard: guard, users: users, log: log}
}

func (s *AdminUsers) List(ctx context.Context, raw string) ([]user.Public, error) {
	if _, err := s.guard.RequireAdmin(raw); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]user.Public, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *AdminUsers) UpdateRole(ctx context.Context, raw string, req user.UpdateRoleRequest) error {
	actor, err := s.guard.RequireAdmin(raw)
	if err != nil {
		return err
	}

	if !req.Role.IsValid() {
		return apperr.Validation("invalid_role", "Role must be admin or user.")
	}
	target, ok := utils.CanonicalUUID(req.UserID)
	if !ok {
		return apperr.Validation("invalid_user_id", "userId must be a valid UUID.")
	}

	if err := s.users.UpdateRole(ctx, target, req.Role); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("user_not_found", "User not found.")
		}
		return apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "user role updated", "actor_id", actor.UserID, "user_id", target, "role", req.Role)
	return nil
}

func (s *AdminUsers) Delete(ctx context.Context, raw string, req user.DeleteRequest) error {
	actor, err := s.guard.RequireAdmin(raw)
	if err != nil {
		return err
	}

	if err := auth.EnsureNotSelf(actor, req.UserID); err != nil {
		return apperr.Wrap(apperr.KindValidation, "cannot_delete_self", "You cannot delete your own account.", err)
	}
	// The store only ever sees the canonical form.
	target, ok := utils.CanonicalUUID(req.UserID)
	if !ok {
		return apperr.Validation("invalid_user_id", "userId must be a valid UUID.")
	}

	if err := s.users.Delete(ctx, target); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("user_not_found", "User not found.")
		}
		return apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "user deleted", "actor_id", actor.UserID, "user_id", target)
	return nil
}
