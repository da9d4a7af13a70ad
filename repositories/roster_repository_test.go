package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Madiyar04/fantasy-league/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDriverSlot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRosterRepository(db)
	userID := 1
	createdAt := time.Now()

	mock.ExpectQuery(`INSERT INTO team_drivers`).
		WithArgs(2, 33, 0, &userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, createdAt))

	slot := &models.TeamDriverSlot{TeamID: 2, DriverID: 33, SlotPosition: 0, CreatedBy: &userID}
	require.NoError(t, repo.CreateDriverSlot(context.Background(), slot))
	assert.Equal(t, 11, slot.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDriverSlotConflicts(t *testing.T) {
	tests := []struct {
		name  string
		pqErr *pq.Error
		want  error
	}{
		{"slot position taken", &pq.Error{Code: "23505", Constraint: "team_drivers_team_id_slot_position_key"}, ErrSlotPositionConflict},
		{"driver already on team", &pq.Error{Code: "23505", Constraint: "team_drivers_team_id_driver_id_key"}, ErrSlotDriverConflict},
		{"unknown driver", &pq.Error{Code: "23503", Constraint: "team_drivers_driver_id_fkey"}, ErrSlotDriverInvalid},
		{"unknown team", &pq.Error{Code: "23503", Constraint: "team_drivers_team_id_fkey"}, ErrSlotTeamInvalid},
		{"position out of range", &pq.Error{Code: "23514", Constraint: "chk_team_drivers_slot_position"}, ErrSlotPositionCheckViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewPostgresRosterRepository(db)
			userID := 1

			mock.ExpectQuery(`INSERT INTO team_drivers`).
				WithArgs(2, 33, 0, &userID).
				WillReturnError(tt.pqErr)

			slot := &models.TeamDriverSlot{TeamID: 2, DriverID: 33, SlotPosition: 0, CreatedBy: &userID}
			err = repo.CreateDriverSlot(context.Background(), slot)
			assert.ErrorIs(t, err, tt.want)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteDriverSlotEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRosterRepository(db)

	mock.ExpectExec(`DELETE FROM team_drivers WHERE team_id = \$1 AND slot_position = \$2`).
		WithArgs(2, 4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DeleteDriverSlot(context.Background(), 2, 4)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
