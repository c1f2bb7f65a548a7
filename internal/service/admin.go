package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guildhallapp/guildhall-server/internal/avatar"
	"github.com/guildhallapp/guildhall-server/internal/domain"
	domainerrors "github.com/guildhallapp/guildhall-server/internal/errors"
	"github.com/guildhallapp/guildhall-server/internal/store"
)

// RegistrationNotifier pushes approval decisions to pending users polling
// the registration status stream.
type RegistrationNotifier interface {
	NotifyApproved(userID string)
	NotifyDenied(userID string)
}

// AdminService handles admin-only member management operations.
type AdminService struct {
	store    *store.Store
	overlay  *avatar.OverlayStore
	notifier RegistrationNotifier
	logger   *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store *store.Store, overlay *avatar.OverlayStore, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:   store,
		overlay: overlay,
		logger:  logger,
	}
}

// SetRegistrationNotifier wires the registration status broadcaster.
// Called during startup, before the service handles requests.
func (s *AdminService) SetRegistrationNotifier(notifier RegistrationNotifier) {
	s.notifier = notifier
}

// UpdateUserRequest contains the fields that can be updated on a user.
type UpdateUserRequest struct {
	DisplayName *string      `json:"display_name,omitempty"`
	Role        *domain.Role `json:"role,omitempty"`
}

// ListUsers returns all non-deleted users.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListPendingUsers returns users awaiting approval.
func (s *AdminService) ListPendingUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListPendingUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return users, nil
}

// GetUser returns a user by ID.
func (s *AdminService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ApproveUser activates a pending member account.
func (s *AdminService) ApproveUser(ctx context.Context, adminUserID, targetUserID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsPending() {
		return nil, domainerrors.Conflict("user is not pending approval")
	}

	user.Status = domain.UserStatusActive
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.store.BroadcastUserApproved(user)
	if s.notifier != nil {
		s.notifier.NotifyApproved(user.ID)
	}

	if s.logger != nil {
		s.logger.Info("User approved",
			"admin_id", adminUserID,
			"user_id", targetUserID,
		)
	}

	return user, nil
}

// DenyUser rejects and removes a pending member account.
func (s *AdminService) DenyUser(ctx context.Context, adminUserID, targetUserID string) error {
	user, err := s.store.GetUser(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	if !user.IsPending() {
		return domainerrors.Conflict("user is not pending approval")
	}

	user.MarkDeleted()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyDenied(user.ID)
	}

	if s.logger != nil {
		s.logger.Info("Pending user denied",
			"admin_id", adminUserID,
			"user_id", targetUserID,
		)
	}

	return nil
}

// UpdateUser updates a user's details.
// Returns an error if trying to demote the only admin or modify root status.
func (s *AdminService) UpdateUser(ctx context.Context, adminUserID, targetUserID string, req UpdateUserRequest) (*domain.User, error) {
	// Get target user
	user, err := s.store.GetUser(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Check if trying to change role
	if req.Role != nil && *req.Role != user.Role {
		// Cannot change role of root user
		if user.IsRoot {
			return nil, domainerrors.Forbidden("cannot change role of the root user")
		}

		// If demoting an admin, ensure there's at least one other admin
		if user.Role == domain.RoleAdmin && *req.Role == domain.RoleMember {
			if err := s.ensureOtherAdminExists(ctx, targetUserID); err != nil {
				return nil, err
			}
		}

		user.Role = *req.Role
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User updated by admin",
			"admin_id", adminUserID,
			"user_id", targetUserID,
		)
	}

	return user, nil
}

// DeleteUser soft-deletes a user and cleans up their sessions, roster,
// avatar settings, and overlay entry.
// Returns an error if trying to delete self, root user, or the last admin.
func (s *AdminService) DeleteUser(ctx context.Context, adminUserID, targetUserID string) error {
	// Cannot delete yourself
	if adminUserID == targetUserID {
		return domainerrors.Forbidden("cannot delete your own account")
	}

	// Get target user
	user, err := s.store.GetUser(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	// Cannot delete root user
	if user.IsRoot {
		return domainerrors.Forbidden("cannot delete the root user")
	}

	// If deleting an admin, ensure there's at least one other admin
	if user.IsAdmin() {
		if err := s.ensureOtherAdminExists(ctx, targetUserID); err != nil {
			return err
		}
	}

	// Soft delete the user
	user.MarkDeleted()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	// Best-effort cleanup; the account is already unusable.
	if err := s.store.DeleteAllUserSessions(ctx, targetUserID); err != nil && s.logger != nil {
		s.logger.Warn("failed to delete user sessions", "user_id", targetUserID, "error", err)
	}
	if err := s.store.DeleteUserCharacters(ctx, targetUserID); err != nil && s.logger != nil {
		s.logger.Warn("failed to delete user characters", "user_id", targetUserID, "error", err)
	}
	if err := s.store.DeleteAvatarSettings(ctx, targetUserID); err != nil && !errors.Is(err, store.ErrNotFound) && s.logger != nil {
		s.logger.Warn("failed to delete avatar settings", "user_id", targetUserID, "error", err)
	}
	if ov := s.overlay.Get(); ov != nil && ov.UserID == targetUserID {
		s.overlay.Clear()
	}

	if s.logger != nil {
		s.logger.Info("User deleted by admin",
			"admin_id", adminUserID,
			"user_id", targetUserID,
			"email", user.Email,
		)
	}

	return nil
}

// ensureOtherAdminExists checks that there's at least one other admin besides the target user.
func (s *AdminService) ensureOtherAdminExists(ctx context.Context, excludeUserID string) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		if u.ID != excludeUserID && u.IsAdmin() {
			return nil // Found another admin
		}
	}

	return domainerrors.Forbidden("cannot remove the last admin")
}
