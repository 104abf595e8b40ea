package permission

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

const MsgPermissionNameExists = "PermissionName already exists"

type PermissionService interface {
	CreatePermission(ctx context.Context, req model.CreatePermissionRequest) (*model.PermissionResponse, error)
	ListPermissions(ctx context.Context) ([]model.PermissionResponse, error)
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

var _ PermissionService = (*Service)(nil)

func (s *Service) ListPermissions(ctx context.Context) ([]model.PermissionResponse, error) {
	perms, err := s.store.Session().ListPermissions(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	return mapper.ToPermissionResponses(perms), nil
}

func (s *Service) CreatePermission(ctx context.Context, req model.CreatePermissionRequest) (*model.PermissionResponse, error) {
	if errs := s.validator.Validate(&req); len(errs) > 0 {
		return nil, apperrors.Validation("Invalid data", errs)
	}

	perm := mapper.NewPermission(req, s.now().UTC())

	err := s.store.WithTx(ctx, func(tx repository.Session) error {
		exists, err := tx.PermissionNameExists(ctx, perm.Name)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict(MsgPermissionNameExists, nil)
		}

		if err := tx.CreatePermission(ctx, perm); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.Conflict(MsgPermissionNameExists, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create permission")
	}

	_ = s.publisher.Publish(ctx, messaging.Event{Type: messaging.EventPermissionCreated, ID: perm.ID, At: perm.CreatedAt})

	resp := mapper.ToPermissionResponse(perm)
	return &resp, nil
}
