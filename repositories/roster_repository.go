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
	ErrSlotNotFound               = errors.New("roster slot not found")
	ErrSlotPositionConflict       = errors.New("roster slot position already occupied")
	ErrSlotDriverConflict         = errors.New("driver already assigned to this team")
	ErrSlotConstructorConflict    = errors.New("constructor already assigned to this team")
	ErrSlotDriverInvalid          = errors.New("roster driver conflict or invalid")
	ErrSlotConstructorInvalid     = errors.New("roster constructor conflict or invalid")
	ErrSlotTeamInvalid            = errors.New("roster team conflict or invalid")
	ErrSlotPositionCheckViolation = errors.New("roster slot position out of allowed range")
)

// RosterRepository хранит назначения пилотов и конструкторов на позиции
// состава. Строки не обновляются на месте: только вставка и удаление.
type RosterRepository interface {
	CreateDriverSlot(ctx context.Context, slot *models.TeamDriverSlot) error
	DeleteDriverSlot(ctx context.Context, teamID, slotPosition int) error
	ListDriverSlots(ctx context.Context, teamID int) ([]*models.TeamDriverSlot, error)

	CreateConstructorSlot(ctx context.Context, slot *models.TeamConstructorSlot) error
	DeleteConstructorSlot(ctx context.Context, teamID, slotPosition int) error
	ListConstructorSlots(ctx context.Context, teamID int) ([]*models.TeamConstructorSlot, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) CreateDriverSlot(ctx context.Context, slot *models.TeamDriverSlot) error {
	query := `
		INSERT INTO team_drivers (team_id, driver_id, slot_position, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		slot.TeamID,
		slot.DriverID,
		slot.SlotPosition,
		slot.CreatedBy,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				switch pqErr.Constraint {
				case "team_drivers_team_id_slot_position_key":
					return ErrSlotPositionConflict
				case "team_drivers_team_id_driver_id_key":
					return ErrSlotDriverConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "team_drivers_team_id_fkey":
					return ErrSlotTeamInvalid
				case "team_drivers_driver_id_fkey":
					return ErrSlotDriverInvalid
				}
			case "23514": // check_violation
				if pqErr.Constraint == "chk_team_drivers_slot_position" {
					return ErrSlotPositionCheckViolation
				}
			}
		}
		return fmt.Errorf("failed to create driver slot: %w", err)
	}
	return nil
}

// DeleteDriverSlot возвращает ErrSlotNotFound, если позиция была пуста.
// Идемпотентность удаления решается в сервисном слое.
func (r *postgresRosterRepository) DeleteDriverSlot(ctx context.Context, teamID, slotPosition int) error {
	query := `DELETE FROM team_drivers WHERE team_id = $1 AND slot_position = $2`
	result, err := r.db.ExecContext(ctx, query, teamID, slotPosition)
	if err != nil {
		return fmt.Errorf("failed to delete driver slot: %w", err)
	}
	return checkAffectedRows(result, ErrSlotNotFound)
}

func (r *postgresRosterRepository) ListDriverSlots(ctx context.Context, teamID int) ([]*models.TeamDriverSlot, error) {
	query := `
		SELECT ts.id, ts.team_id, ts.driver_id, ts.slot_position, ts.created_by, ts.created_at,
		       d.id, d.first_name, d.last_name, d.race_number, d.country, d.active, d.photo_key, d.created_at
		FROM team_drivers ts
		JOIN drivers d ON d.id = ts.driver_id
		WHERE ts.team_id = $1
		ORDER BY ts.slot_position ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list driver slots for team %d: %w", teamID, err)
	}
	defer rows.Close()

	slots := make([]*models.TeamDriverSlot, 0, models.DriverSlotCount)
	for rows.Next() {
		var slot models.TeamDriverSlot
		var driver models.Driver
		if scanErr := rows.Scan(
			&slot.ID,
			&slot.TeamID,
			&slot.DriverID,
			&slot.SlotPosition,
			&slot.CreatedBy,
			&slot.CreatedAt,
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
		slot.Driver = &driver
		slots = append(slots, &slot)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *postgresRosterRepository) CreateConstructorSlot(ctx context.Context, slot *models.TeamConstructorSlot) error {
	query := `
		INSERT INTO team_constructors (team_id, constructor_id, slot_position, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		slot.TeamID,
		slot.ConstructorID,
		slot.SlotPosition,
		slot.CreatedBy,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				switch pqErr.Constraint {
				case "team_constructors_team_id_slot_position_key":
					return ErrSlotPositionConflict
				case "team_constructors_team_id_constructor_id_key":
					return ErrSlotConstructorConflict
				}
			case "23503":
				switch pqErr.Constraint {
				case "team_constructors_team_id_fkey":
					return ErrSlotTeamInvalid
				case "team_constructors_constructor_id_fkey":
					return ErrSlotConstructorInvalid
				}
			case "23514":
				if pqErr.Constraint == "chk_team_constructors_slot_position" {
					return ErrSlotPositionCheckViolation
				}
			}
		}
		return fmt.Errorf("failed to create constructor slot: %w", err)
	}
	return nil
}

func (r *postgresRosterRepository) DeleteConstructorSlot(ctx context.Context, teamID, slotPosition int) error {
	query := `DELETE FROM team_constructors WHERE team_id = $1 AND slot_position = $2`
	result, err := r.db.ExecContext(ctx, query, teamID, slotPosition)
	if err != nil {
		return fmt.Errorf("failed to delete constructor slot: %w", err)
	}
	return checkAffectedRows(result, ErrSlotNotFound)
}

func (r *postgresRosterRepository) ListConstructorSlots(ctx context.Context, teamID int) ([]*models.TeamConstructorSlot, error) {
	query := `
		SELECT ts.id, ts.team_id, ts.constructor_id, ts.slot_position, ts.created_by, ts.created_at,
		       c.id, c.name, c.country, c.active, c.logo_key, c.created_at
		FROM team_constructors ts
		JOIN constructors c ON c.id = ts.constructor_id
		WHERE ts.team_id = $1
		ORDER BY ts.slot_position ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list constructor slots for team %d: %w", teamID, err)
	}
	defer rows.Close()

	slots := make([]*models.TeamConstructorSlot, 0, models.ConstructorSlotCount)
	for rows.Next() {
		var slot models.TeamConstructorSlot
		var constructor models.Constructor
		if scanErr := rows.Scan(
			&slot.ID,
			&slot.TeamID,
			&slot.ConstructorID,
			&slot.SlotPosition,
			&slot.CreatedBy,
			&slot.CreatedAt,
			&constructor.ID,
			&constructor.Name,
			&constructor.Country,
			&constructor.Active,
			&constructor.LogoKey,
			&constructor.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		slot.Constructor = &constructor
		slots = append(slots, &slot)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}
