package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/user-admin/internal/config"
	"github.com/jwalitptl/user-admin/internal/mapper"
	"github.com/jwalitptl/user-admin/internal/model"
	"github.com/jwalitptl/user-admin/internal/repository"
	apperrors "github.com/jwalitptl/user-admin/pkg/errors"
	"github.com/jwalitptl/user-admin/pkg/messaging"
	"github.com/jwalitptl/user-admin/pkg/security"
	"github.com/jwalitptl/user-admin/pkg/validator"
)

// Messages surfaced to API clients
const (
	MsgInvalidData          = "Invalid data"
	MsgInvalidUserID        = "Invalid user ID"
	MsgUsernameExists       = "Username already exists"
	MsgUserIDExists         = "User ID already exists"
	MsgInvalidRoleID        = "Invalid RoleId"
	MsgInvalidPermissionIDs = "One or more PermissionIds are invalid"
)

type UserServicer interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, id string, req model.CreateUserRequest) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*model.UserResponse, error)
	ListUsers(ctx context.Context, req model.DataTableRequest) (*model.UserPage, error)
}

type Service struct {
	store      repository.Store
	hasher     security.PasswordHasher
	validator  validator.Validator
	publisher  messaging.Publisher
	pagination config.PaginationConfig
	now        func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now as the source of creation dates
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p messaging.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func NewService(
	store repository.Store,
	hasher security.PasswordHasher,
	v validator.Validator,
	pagination config.PaginationConfig,
	opts ...Option,
) *Service {
	s := &Service{
		store:      store,
		hasher:     hasher,
		validator:  v,
		publisher:  messaging.NopPublisher{},
		pagination: pagination,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ UserServicer = (*Service)(nil)

func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.UserResponse, error) {
	if err := s.validate(req, true); err != nil {
		return nil, err
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := mapper.NewUser(req, id, hash, s.now().UTC())
	grants := mapper.NewGrants(id, req.UserPermissions)

	var resp model.UserResponse
	err = s.store.WithTx(ctx, func(tx repository.Session) error {
		if req.ID != "" {
			exists, err := tx.UserExists(ctx, id)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.Conflict(MsgUserIDExists, nil)
			}
		}

		ownerID, err := tx.FindUserIDByUsername(ctx, req.Username)
		if err != nil {
			return err
		}
		if ownerID != "" {
			return apperrors.Conflict(MsgUsernameExists, nil)
		}

		if err := checkReferences(ctx, tx, req); err != nil {
			return err
		}

		if err := tx.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.Conflict(MsgUsernameExists, err)
			}
			return err
		}
		if err := tx.InsertGrants(ctx, grants); err != nil {
			return err
		}

		created, err := tx.GetUser(ctx, id)
		if err != nil {
			return err
		}
		resp = mapper.ToUserResponse(created)
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create user")
	}

	s.notify(ctx, messaging.EventUserCreated, id)
	return &resp, nil
}

// UpdateUser overwrites the user's fields and replaces its whole grant set.
// A blank password keeps the stored hash.
func (s *Service) UpdateUser(ctx context.Context, id string, req model.CreateUserRequest) (*model.UserResponse, error) {
	if req.ID != "" && req.ID != id {
		return nil, apperrors.Validation(MsgInvalidUserID, nil)
	}
	if err := s.validate(req, false); err != nil {
		return nil, err
	}

	var hash string
	if strings.TrimSpace(req.Password) != "" {
		var err error
		if hash, err = s.hasher.Hash(req.Password); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
		}
	}

	var resp model.UserResponse
	err := s.store.WithTx(ctx, func(tx repository.Session) error {
		user, err := tx.GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("User", err)
			}
			return err
		}

		ownerID, err := tx.FindUserIDByUsername(ctx, req.Username)
		if err != nil {
			return err
		}
		if ownerID != "" && ownerID != id {
			return apperrors.Conflict(MsgUsernameExists, nil)
		}

		if err := checkReferences(ctx, tx, req); err != nil {
			return err
		}

		mapper.ApplyUser(user, req)
		if hash != "" {
			user.Password = hash
		}

		if err := tx.UpdateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.Conflict(MsgUsernameExists, err)
			}
			return err
		}
		if err := tx.DeleteGrants(ctx, id); err != nil {
			return err
		}
		if err := tx.InsertGrants(ctx, mapper.NewGrants(id, req.UserPermissions)); err != nil {
			return err
		}

		updated, err := tx.GetUser(ctx, id)
		if err != nil {
			return err
		}
		resp = mapper.ToUserResponse(updated)
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to update user")
	}

	s.notify(ctx, messaging.EventUserUpdated, id)
	return &resp, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx repository.Session) error {
		exists, err := tx.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NotFound("User", repository.ErrNotFound)
		}

		if err := tx.DeleteGrants(ctx, id); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}

	s.notify(ctx, messaging.EventUserDeleted, id)
	return nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*model.UserResponse, error) {
	user, err := s.store.Session().GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User", err)
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	resp := mapper.ToUserResponse(user)
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context, req model.DataTableRequest) (*model.UserPage, error) {
	filters := mapper.ToUserFilters(req, s.pagination.DefaultPageSize, s.pagination.MaxPageSize)

	users, total, err := s.store.Session().ListUsers(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}

	return &model.UserPage{
		DataSource: mapper.ToUserResponses(users),
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalCount: total,
	}, nil
}

func (s *Service) validate(req model.CreateUserRequest, requirePassword bool) error {
	errs := s.validator.Validate(&req)

	if requirePassword && strings.TrimSpace(req.Password) == "" {
		errs = append(errs, validator.FieldError{Field: "password", Message: "Field is required"})
	}

	seen := make(map[string]bool, len(req.UserPermissions))
	for i, g := range req.UserPermissions {
		if g.PermissionID == "" {
			continue
		}
		if seen[g.PermissionID] {
			errs = append(errs, validator.FieldError{
				Field:   fmt.Sprintf("userPermissions[%d].permissionId", i),
				Message: "Duplicate permission",
			})
		}
		seen[g.PermissionID] = true
	}

	if len(errs) > 0 {
		return apperrors.Validation(MsgInvalidData, errs)
	}
	return nil
}

// checkReferences rejects a request naming a missing role or permission
func checkReferences(ctx context.Context, tx repository.Session, req model.CreateUserRequest) error {
	if _, err := tx.GetRole(ctx, req.RoleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Validation(MsgInvalidRoleID, nil)
		}
		return err
	}

	ids := make([]string, 0, len(req.UserPermissions))
	for _, g := range req.UserPermissions {
		ids = append(ids, g.PermissionID)
	}
	perms, err := tx.FindPermissions(ctx, ids)
	if err != nil {
		return err
	}
	if len(perms) != len(ids) {
		return apperrors.Validation(MsgInvalidPermissionIDs, nil)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, eventType, id string) {
	_ = s.publisher.Publish(ctx, messaging.Event{Type: eventType, ID: id, At: s.now().UTC()})
}
