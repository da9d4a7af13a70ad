package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/lib/pq"
)

var (
	ErrConstructorNotFound     = errors.New("constructor not found")
	ErrConstructorNameConflict = errors.New("constructor name conflict")
)

type ConstructorRepository interface {
	Create(ctx context.Context, constructor *models.Constructor) error
	GetByID(ctx context.Context, id int) (*models.Constructor, error)
	List(ctx context.Context, onlyActive bool) ([]*models.Constructor, error)
	Update(ctx context.Context, constructor *models.Constructor) error
	UpdateLogoKey(ctx context.Context, constructorID int, logoKey *string) error
}

type postgresConstructorRepository struct {
	db *sql.DB
}

func NewPostgresConstructorRepository(db *sql.DB) ConstructorRepository {
	return &postgresConstructorRepository{db: db}
}

func (r *postgresConstructorRepository) Create(ctx context.Context, constructor *models.Constructor) error {
	query := `
		INSERT INTO constructors (name, country, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		constructor.Name,
		constructor.Country,
		constructor.Active,
	).Scan(&constructor.ID, &constructor.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "constructors_name_key" {
				return ErrConstructorNameConflict
			}
		}
		return fmt.Errorf("failed to create constructor: %w", err)
	}
	return nil
}

func (r *postgresConstructorRepository) GetByID(ctx context.Context, id int) (*models.Constructor, error) {
	query := `
		SELECT id, name, country, active, logo_key, created_at
		FROM constructors
		WHERE id = $1`

	constructor := &models.Constructor{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&constructor.ID,
		&constructor.Name,
		&constructor.Country,
		&constructor.Active,
		&constructor.LogoKey,
		&constructor.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConstructorNotFound
		}
		return nil, fmt.Errorf("failed to find constructor %d: %w", id, err)
	}
	return constructor, nil
}

func (r *postgresConstructorRepository) List(ctx context.Context, onlyActive bool) ([]*models.Constructor, error) {
	query := `
		SELECT id, name, country, active, logo_key, created_at
		FROM constructors`
	if onlyActive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list constructors: %w", err)
	}
	defer rows.Close()

	constructors := make([]*models.Constructor, 0)
	for rows.Next() {
		var constructor models.Constructor
		if scanErr := rows.Scan(
			&constructor.ID,
			&constructor.Name,
			&constructor.Country,
			&constructor.Active,
			&constructor.LogoKey,
			&constructor.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		constructors = append(constructors, &constructor)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return constructors, nil
}

func (r *postgresConstructorRepository) Update(ctx context.Context, constructor *models.Constructor) error {
	query := `
		UPDATE constructors
		SET name = $1, country = $2, active = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		constructor.Name,
		constructor.Country,
		constructor.Active,
		constructor.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "constructors_name_key" {
				return ErrConstructorNameConflict
			}
		}
		return fmt.Errorf("failed to update constructor %d: %w", constructor.ID, err)
	}
	return checkAffectedRows(result, ErrConstructorNotFound)
}

func (r *postgresConstructorRepository) UpdateLogoKey(ctx context.Context, constructorID int, logoKey *string) error {
	query := `UPDATE constructors SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, constructorID)
	if err != nil {
		return fmt.Errorf("failed to update logo key for constructor %d: %w", constructorID, err)
	}
	return checkAffectedRows(result, ErrConstructorNotFound)
}
