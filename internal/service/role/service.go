package role

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/user-admin/internal/mapper"
	"github.com/jwalitptl/user-admin/internal/model"
	"github.com/jwalitptl/user-admin/internal/repository"
	apperrors "github.com/jwalitptl/user-admin/pkg/errors"
	"github.com/jwalitptl/user-admin/pkg/messaging"
	"github.com/jwalitptl/user-admin/pkg/validator"
)

const MsgRoleNameExists = "RoleName already exists"

type RoleService interface {
	CreateRole(ctx context.Context, req model.CreateRoleRequest) (*model.RoleResponse, error)
	ListRoles(ctx context.Context) ([]model.RoleResponse, error)
}

type Service struct {
	store     repository.Store
	validator validator.Validator
	publisher messaging.Publisher
	now       func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now as the source of creation times
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

func NewService(store repository.Store, v validator.Validator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: v,
		publisher: messaging.NopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ RoleService = (*Service)(nil)

func (s *Service) ListRoles(ctx context.Context) ([]model.RoleResponse, error) {
	roles, err := s.store.Session().ListRoles(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	return mapper.ToRoleResponses(roles), nil
}

// CreateRole stores a role under a new identifier. Names are unique and
// compared case-sensitively.
func (s *Service) CreateRole(ctx context.Context, req model.CreateRoleRequest) (*model.RoleResponse, error) {
	if errs := s.validator.Validate(&req); len(errs) > 0 {
		return nil, apperrors.Validation("Invalid data", errs)
	}

	role := mapper.NewRole(req, s.now().UTC())

	err := s.store.WithTx(ctx, func(tx repository.Session) error {
		exists, err := tx.RoleNameExists(ctx, role.Name)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict(MsgRoleNameExists, nil)
		}

		if err := tx.CreateRole(ctx, role); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.Conflict(MsgRoleNameExists, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create role")
	}

	_ = s.publisher.Publish(ctx, messaging.Event{Type: messaging.EventRoleCreated, ID: role.ID, At: role.CreatedAt})

	resp := mapper.ToRoleResponse(role)
	return &resp, nil
}
