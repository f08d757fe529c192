package service

import (
	"context"
	"errors"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
	"github.com/quotables/quotes-api/pkg/slogx"
)

var ErrUnknownRole = errors.New("unknown_role")

// UserService covers the admin-facing user management operations.
type UserService struct {
	Store store.Store
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// List returns one page of users ordered by creation date.
func (s *UserService) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.User], error) {
	users, total, err := s.Store.Users().ListUsers(ctx, page)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	return domain.Page[domain.User]{
		Meta:    domain.NewPageMeta(page, total),
		Records: users,
	}, nil
}

// UserPatch carries the optional admin updates. Nil fields stay untouched.
type UserPatch struct {
	Roles  []string
	Active *bool
}

// Update applies role and active changes to a user.
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (domain.User, error) {
	if patch.Roles != nil {
		for _, role := range patch.Roles {
			if role != domain.RoleBasic && role != domain.RoleAdmin {
				return domain.User{}, ErrUnknownRole
			}
		}
		if err := s.Store.Users().UpdateRoles(ctx, id, patch.Roles); err != nil {
			return domain.User{}, err
		}
	}
	if patch.Active != nil {
		if err := s.Store.Users().SetActive(ctx, id, *patch.Active); err != nil {
			return domain.User{}, err
		}
	}
	return s.Store.Users().GetUserByID(ctx, id)
}

// Delete removes a user. The schema cascades the user's ledger entries, so
// every token they hold stops verifying immediately.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}
