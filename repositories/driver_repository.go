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
	ErrDriverNotFound       = errors.New("driver not found")
	ErrDriverNumberConflict = errors.New("driver race number conflict")
)

type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id int) (*models.Driver, error)
	List(ctx context.Context, onlyActive bool) ([]*models.Driver, error)
	Update(ctx context.Context, driver *models.Driver) error
	UpdatePhotoKey(ctx context.Context, driverID int, photoKey *string) error
}

type postgresDriverRepository struct {
	db *sql.DB
}

func NewPostgresDriverRepository(db *sql.DB) DriverRepository {
	return &postgresDriverRepository{db: db}
}

func (r *postgresDriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	query := `
		INSERT INTO drivers (first_name, last_name, race_number, country, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		driver.FirstName,
		driver.LastName,
		driver.RaceNumber,
		driver.Country,
		driver.Active,
	).Scan(&driver.ID, &driver.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "drivers_race_number_key" {
				return ErrDriverNumberConflict
			}
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (r *postgresDriverRepository) GetByID(ctx context.Context, id int) (*models.Driver, error) {
	query := `
		SELECT id, first_name, last_name, race_number, country, active, photo_key, created_at
		FROM drivers
		WHERE id = $1`

	driver := &models.Driver{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.FirstName,
		&driver.LastName,
		&driver.RaceNumber,
		&driver.Country,
		&driver.Active,
		&driver.PhotoKey,
		&driver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to find driver %d: %w", id, err)
	}
	return driver, nil
}

func (r *postgresDriverRepository) List(ctx context.Context, onlyActive bool) ([]*models.Driver, error) {
	query := `
		SELECT id, first_name, last_name, race_number, country, active, photo_key, created_at
		FROM drivers`
	if onlyActive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := make([]*models.Driver, 0)
	for rows.Next() {
		var driver models.Driver
		if scanErr := rows.Scan(
			&driver.ID,
			&driver.FirstName,
			&driver.LastName,
			&driver.RaceNumber,
			&driver.Country,
			&driver.Active,
			&driver.PhotoKey,
			&driver.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		drivers = append(drivers, &driver)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *postgresDriverRepository) Update(ctx context.Context, driver *models.Driver) error {
	query := `
		UPDATE drivers
		SET first_name = $1, last_name = $2, race_number = $3, country = $4, active = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		driver.FirstName,
		driver.LastName,
		driver.RaceNumber,
		driver.Country,
		driver.Active,
		driver.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "drivers_race_number_key" {
				return ErrDriverNumberConflict
			}
		}
		return fmt.Errorf("failed to update driver %d: %w", driver.ID, err)
	}
	return checkAffectedRows(result, ErrDriverNotFound)
}

func (r *postgresDriverRepository) UpdatePhotoKey(ctx context.Context, driverID int, photoKey *string) error {
	query := `UPDATE drivers SET photo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, photoKey, driverID)
	if err != nil {
		return fmt.Errorf("failed to update photo key for driver %d: %w", driverID, err)
	}
	return checkAffectedRows(result, ErrDriverNotFound)
}
