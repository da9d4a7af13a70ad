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

func TestTeamCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTeamRepository(db)

	team := &models.Team{Name: "Red Arrows", OwnerID: 5}
	team.StampCreated(5, time.Now())

	mock.ExpectQuery(`INSERT INTO teams`).
		WithArgs(team.Name, team.OwnerID, team.CreatedBy, team.UpdatedBy, team.CreatedAt, team.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	require.NoError(t, repo.Create(context.Background(), team))
	assert.Equal(t, 11, team.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Уникальность владельца и имени держится на частичных индексах по живым
// строкам: после мягкого удаления команды оба значения освобождаются.
func TestTeamCreateConflicts(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   *pq.Error
		wantErr error
	}{
		{
			name:    "owner already has a live team",
			dbErr:   &pq.Error{Code: "23505", Constraint: "teams_owner_id_active_idx"},
			wantErr: ErrTeamOwnerConflict,
		},
		{
			name:    "name taken by a live team",
			dbErr:   &pq.Error{Code: "23505", Constraint: "teams_name_active_idx"},
			wantErr: ErrTeamNameConflict,
		},
		{
			name:    "owner does not exist",
			dbErr:   &pq.Error{Code: "23503", Constraint: "teams_owner_id_fkey"},
			wantErr: ErrTeamOwnerInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewPostgresTeamRepository(db)

			mock.ExpectQuery(`INSERT INTO teams`).WillReturnError(tc.dbErr)

			team := &models.Team{Name: "Red Arrows", OwnerID: 5}
			team.StampCreated(5, time.Now())
			assert.ErrorIs(t, repo.Create(context.Background(), team), tc.wantErr)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
