package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/opsdesk/internal/domain"
)

// ActorFilter defines query params for actor listing.
type ActorFilter struct {
	Role        *domain.Role
	CompanyCode *string
	Department  *string
	Active      *bool
	Limit       int
	Offset      int
}

// ActorRepository handles persistence for all four actor kinds.
type ActorRepository interface {
	Create(ctx context.Context, actor *domain.Actor) error
	Update(ctx context.Context, actor *domain.Actor) error
	GetByID(ctx context.Context, id string) (*domain.Actor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Actor, error)
	List(ctx context.Context, filter ActorFilter) ([]domain.Actor, error)
	ActiveEmployeesByDepartment(ctx context.Context, department string) ([]domain.Actor, error)
	EmployeesByIDs(ctx context.Context, ids []string) ([]domain.Actor, error)
}

type actorRepository struct {
	db DBTX
}

// NewActorRepository instantiates the repository.
func NewActorRepository(db DBTX) ActorRepository {
	return &actorRepository{db: db}
}

const actorColumns = `id, name, email, password_hash, role, department,
        company_code, company_name, created_by_client, active_flag, created_at, updated_at`

func (r *actorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	const query = `
        INSERT INTO actors (name, email, password_hash, role, department, company_code, company_name, created_by_client, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	companyCode, companyName, createdBy := tenantColumns(actor)
	return r.db.QueryRow(ctx, query,
		actor.Name,
		actor.Email,
		actor.PasswordHash,
		actor.Role,
		actor.Department,
		companyCode,
		companyName,
		createdBy,
		actor.IsActive,
	).Scan(&actor.ID, &actor.CreatedAt, &actor.UpdatedAt)
}

func (r *actorRepository) Update(ctx context.Context, actor *domain.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	const query = `
        UPDATE actors
        SET name=$1, email=$2, password_hash=$3, department=$4, active_flag=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.db.Exec(ctx, query,
		actor.Name,
		actor.Email,
		actor.PasswordHash,
		actor.Department,
		actor.IsActive,
		actor.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *actorRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *actorRepository) GetByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *actorRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Actor, error) {
	actor, err := scanActor(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return actor, nil
}

func (r *actorRepository) List(ctx context.Context, filter ActorFilter) ([]domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.CompanyCode != nil {
		args = append(args, *filter.CompanyCode)
		clauses = append(clauses, fmt.Sprintf("company_code=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActors(rows)
}

// ActiveEmployeesByDepartment lists active employees in created_at order.
// The order is load-bearing: auto-assignment breaks workload ties by it.
func (r *actorRepository) ActiveEmployeesByDepartment(ctx context.Context, department string) ([]domain.Actor, error) {
	query := `SELECT ` + actorColumns + `
        FROM actors
        WHERE role='employee' AND department=$1 AND active_flag=TRUE
        ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActors(rows)
}

func (r *actorRepository) EmployeesByIDs(ctx context.Context, ids []string) ([]domain.Actor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + actorColumns + `
        FROM actors WHERE role='employee' AND id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActors(rows)
}

func tenantColumns(actor *domain.Actor) (companyCode, companyName *string, createdBy *string) {
	if actor.Tenant == nil {
		return nil, nil, nil
	}
	code := actor.Tenant.CompanyCode
	name := actor.Tenant.CompanyName
	return &code, &name, actor.Tenant.CreatedByClient
}

func scanActor(row pgx.Row) (*domain.Actor, error) {
	var (
		actor       domain.Actor
		companyCode *string
		companyName *string
		createdBy   *string
	)
	if err := row.Scan(
		&actor.ID,
		&actor.Name,
		&actor.Email,
		&actor.PasswordHash,
		&actor.Role,
		&actor.Department,
		&companyCode,
		&companyName,
		&createdBy,
		&actor.IsActive,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if companyCode != nil {
		actor.Tenant = &domain.TenantInfo{
			CompanyCode:     *companyCode,
			CreatedByClient: createdBy,
		}
		if companyName != nil {
			actor.Tenant.CompanyName = *companyName
		}
	}
	return &actor, nil
}

func scanActors(rows pgx.Rows) ([]domain.Actor, error) {
	var result []domain.Actor
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *actor)
	}
	return result, rows.Err()
}
