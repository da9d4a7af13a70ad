package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamOwnerConflict = errors.New("user already owns a team")
	ErrTeamNameConflict  = errors.New("team name conflict")
	ErrTeamOwnerInvalid  = errors.New("team owner conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByOwnerID(ctx context.Context, ownerID int) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error
	SoftDelete(ctx context.Context, teamID int, deletedBy int, deletedAt time.Time) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, owner_id, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		team.Name,
		team.OwnerID,
		team.CreatedBy,
		team.UpdatedBy,
		team.CreatedAt,
		team.UpdatedAt,
	).Scan(&team.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				// Частичные уникальные индексы (WHERE is_deleted = FALSE):
				// после удаления команды имя и владелец освобождаются.
				switch pqErr.Constraint {
				case "teams_owner_id_active_idx":
					return ErrTeamOwnerConflict
				case "teams_name_active_idx":
					return ErrTeamNameConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "teams_owner_id_fkey" {
					return ErrTeamOwnerInvalid
				}
			}
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, owner_id, logo_key,
		       created_by, updated_by, created_at, updated_at
		FROM teams
		WHERE id = $1 AND is_deleted = FALSE`
	return r.findOne(ctx, query, id)
}

func (r *postgresTeamRepository) GetByOwnerID(ctx context.Context, ownerID int) (*models.Team, error) {
	query := `
		SELECT id, name, owner_id, logo_key,
		       created_by, updated_by, created_at, updated_at
		FROM teams
		WHERE owner_id = $1 AND is_deleted = FALSE`
	return r.findOne(ctx, query, ownerID)
}

func (r *postgresTeamRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&team.ID,
		&team.Name,
		&team.OwnerID,
		&team.LogoKey,
		&team.CreatedBy,
		&team.UpdatedBy,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET name = $1, updated_by = $2, updated_at = $3
		WHERE id = $4 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		team.Name,
		team.UpdatedBy,
		team.UpdatedAt,
		team.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "teams_name_active_idx" {
				return ErrTeamNameConflict
			}
		}
		return fmt.Errorf("failed to update team %d: %w", team.ID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1 WHERE id = $2 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, logoKey, teamID)
	if err != nil {
		return fmt.Errorf("failed to update logo key for team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SoftDelete(ctx context.Context, teamID int, deletedBy int, deletedAt time.Time) error {
	query := `
		UPDATE teams
		SET is_deleted = TRUE, deleted_by = $1, deleted_at = $2
		WHERE id = $3 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, deletedBy, deletedAt, teamID)
	if err != nil {
		return fmt.Errorf("failed to soft delete team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
