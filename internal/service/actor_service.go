package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/opsdesk/internal/access"
	"github.com/opsdesk/opsdesk/internal/auth"
	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/internal/events"
	"github.com/opsdesk/opsdesk/internal/repository"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

// ActorService manages actor accounts: creation per the role-creation
// matrix, listing, and soft deactivation. Accounts are never deleted.
type ActorService struct {
	actors     repository.ActorRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// ActorDependencies bundles collaborators.
type ActorDependencies struct {
	ActorRepo  repository.ActorRepository
	Dispatcher events.Dispatcher
	BcryptCost int
}

// ActorCreateInput describes account creation payload.
type ActorCreateInput struct {
	Name        string
	Email       string
	Password    string
	Role        domain.Role
	Department  string
	CompanyCode string
	CompanyName string
}

// NewActorService builds the service.
func NewActorService(deps ActorDependencies) *ActorService {
	return &ActorService{
		actors:     deps.ActorRepo,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
	}
}

// CreateActor creates an account the creator is allowed to create: admin
// creates employees and clients; a client creates client_users scoped to
// its own company. Everyone else is forbidden.
func (s *ActorService) CreateActor(ctx context.Context, creator *domain.Actor, input ActorCreateInput) (*domain.Actor, error) {
	if !access.MayCreate(creator, input.Role) {
		return nil, apperrors.NewForbidden("role creation not permitted")
	}

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}
	if _, err := s.actors.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	actor := &domain.Actor{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Department:   strings.TrimSpace(input.Department),
		IsActive:     true,
	}

	switch input.Role {
	case domain.RoleEmployee:
		if actor.Department == "" {
			return nil, apperrors.NewValidationError("department required for employees", nil)
		}
	case domain.RoleClient:
		code := strings.TrimSpace(input.CompanyCode)
		if code == "" {
			return nil, apperrors.NewValidationError("company_code required for clients", nil)
		}
		actor.Tenant = &domain.TenantInfo{
			CompanyCode: code,
			CompanyName: strings.TrimSpace(input.CompanyName),
		}
	case domain.RoleClientUser:
		// Scoped to the creating client's company regardless of input.
		creatorID := creator.ID
		actor.Tenant = &domain.TenantInfo{
			CompanyCode:     creator.CompanyCode(),
			CompanyName:     creator.Tenant.CompanyName,
			CreatedByClient: &creatorID,
		}
	}

	if err := s.actors.Create(ctx, actor); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishCreated(ctx, creator, actor)
	return actor, nil
}

// ListEmployees lists employees for staff, optionally by department.
func (s *ActorService) ListEmployees(ctx context.Context, actor *domain.Actor, department *string) ([]domain.Actor, error) {
	if actor == nil || !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("staff required")
	}
	role := domain.RoleEmployee
	active := true
	employees, err := s.actors.List(ctx, repository.ActorFilter{
		Role:       &role,
		Department: department,
		Active:     &active,
		Limit:      200,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

// Deactivate soft-disables an account the actor may manage.
func (s *ActorService) Deactivate(ctx context.Context, actor *domain.Actor, targetID string) (*domain.Actor, error) {
	target, err := s.actors.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("actor", map[string]any{"actor_id": targetID})
		}
		return nil, apperrors.MapError(err)
	}
	if !access.CanManage(actor, target) {
		return nil, apperrors.NewForbidden("access denied")
	}

	target.IsActive = false
	if err := s.actors.Update(ctx, target); err != nil {
		return nil, apperrors.MapError(err)
	}
	return target, nil
}

func (s *ActorService) publishCreated(ctx context.Context, creator *domain.Actor, actor *domain.Actor) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventActorCreated,
		Actor:     eventActor(creator),
		Timestamp: time.Now(),
		Payload: events.ActorCreatedPayload{
			ActorID:     actor.ID,
			Role:        actor.Role,
			CompanyCode: actor.CompanyCode(),
		},
	})
}
