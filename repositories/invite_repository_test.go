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

func TestInviteCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresInviteRepository(db)
	createdAt := time.Now()

	mock.ExpectQuery(`INSERT INTO league_invites`).
		WithArgs(7, "tok_abc", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, createdAt))

	invite := &models.LeagueInvite{LeagueID: 7, Token: "tok_abc", CreatedBy: 1}
	require.NoError(t, repo.Create(context.Background(), invite))
	assert.Equal(t, 5, invite.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteCreateConflicts(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"token collision", "league_invites_token_key", ErrInviteTokenConflict},
		{"league already has invite", "league_invites_league_id_key", ErrInviteLeagueConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewPostgresInviteRepository(db)

			mock.ExpectQuery(`INSERT INTO league_invites`).
				WithArgs(7, "tok_abc", 1).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			invite := &models.LeagueInvite{LeagueID: 7, Token: "tok_abc", CreatedBy: 1}
			err = repo.Create(context.Background(), invite)
			assert.ErrorIs(t, err, tt.want)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// Токен находит приглашение только пока лига жива: join с leagues
// отфильтровывает мягко удаленные.
func TestInviteGetByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresInviteRepository(db)
	createdAt := time.Now()

	mock.ExpectQuery(`SELECT i.id, i.league_id, i.token, i.created_by, i.created_at`).
		WithArgs("tok_abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "league_id", "token", "created_by", "created_at"}).
			AddRow(5, 7, "tok_abc", 1, createdAt))

	invite, err := repo.GetByToken(context.Background(), "tok_abc")
	require.NoError(t, err)
	assert.Equal(t, 7, invite.LeagueID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteGetByTokenNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresInviteRepository(db)

	mock.ExpectQuery(`SELECT i.id, i.league_id, i.token, i.created_by, i.created_at`).
		WithArgs("dead_token").
		WillReturnRows(sqlmock.NewRows([]string{"id", "league_id", "token", "created_by", "created_at"}))

	_, err = repo.GetByToken(context.Background(), "dead_token")
	assert.ErrorIs(t, err, ErrInviteNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteDeleteOrphaned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresInviteRepository(db)

	mock.ExpectExec(`DELETE FROM league_invites i`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteOrphaned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
