package dto

import (
	"time"

	"github.com/opsdesk/opsdesk/internal/domain"
)

// CreateActorRequest payload for POST /actors.
type CreateActorRequest struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Role        domain.Role `json:"role"`
	Department  string      `json:"department"`
	CompanyCode string      `json:"company_code"`
	CompanyName string      `json:"company_name"`
}

// ActorResponse represents an account without credentials.
type ActorResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	Department  string      `json:"department,omitempty"`
	CompanyCode string      `json:"company_code,omitempty"`
	CompanyName string      `json:"company_name,omitempty"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewActorResponse maps a domain actor to its API shape.
func NewActorResponse(actor *domain.Actor) ActorResponse {
	resp := ActorResponse{
		ID:         actor.ID,
		Name:       actor.Name,
		Email:      actor.Email,
		Role:       actor.Role,
		Department: actor.Department,
		IsActive:   actor.IsActive,
		CreatedAt:  actor.CreatedAt,
	}
	if actor.Tenant != nil {
		resp.CompanyCode = actor.Tenant.CompanyCode
		resp.CompanyName = actor.Tenant.CompanyName
	}
	return resp
}
