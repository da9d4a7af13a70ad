package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeagueAddTeam(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresLeagueRepository(db)
	joinedAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_teams FROM leagues WHERE id = \$1 AND is_deleted = FALSE FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"max_teams"}).AddRow(10))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM league_teams lt JOIN teams t ON t.id = lt.team_id WHERE lt.league_id = \$1 AND t.is_deleted = FALSE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`INSERT INTO league_teams`).
		WithArgs(7, 3, joinedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	membership, err := repo.AddTeam(context.Background(), 7, 3, joinedAt)
	require.NoError(t, err)
	assert.Equal(t, 42, membership.ID)
	assert.Equal(t, 7, membership.LeagueID)
	assert.Equal(t, 3, membership.TeamID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Вместимость проверяется внутри транзакции: при заполненной лиге
// вставка членства не выполняется вовсе.
func TestLeagueAddTeamFull(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresLeagueRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_teams FROM leagues WHERE id = \$1 AND is_deleted = FALSE FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"max_teams"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM league_teams lt JOIN teams t ON t.id = lt.team_id WHERE lt.league_id = \$1 AND t.is_deleted = FALSE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectRollback()

	_, err = repo.AddTeam(context.Background(), 7, 3, time.Now())
	assert.ErrorIs(t, err, ErrLeagueFull)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeagueAddTeamDeletedLeague(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresLeagueRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_teams FROM leagues WHERE id = \$1 AND is_deleted = FALSE FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"max_teams"}))
	mock.ExpectRollback()

	_, err = repo.AddTeam(context.Background(), 7, 3, time.Now())
	assert.ErrorIs(t, err, ErrLeagueNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeagueAddTeamDuplicateMembership(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresLeagueRepository(db)
	joinedAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_teams FROM leagues WHERE id = \$1 AND is_deleted = FALSE FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"max_teams"}).AddRow(10))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM league_teams lt JOIN teams t ON t.id = lt.team_id WHERE lt.league_id = \$1 AND t.is_deleted = FALSE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO league_teams`).
		WithArgs(7, 3, joinedAt).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "league_teams_league_id_team_id_key"})
	mock.ExpectRollback()

	_, err = repo.AddTeam(context.Background(), 7, 3, joinedAt)
	assert.ErrorIs(t, err, ErrLeagueTeamConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeagueRemoveTeamNotMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresLeagueRepository(db)

	mock.ExpectExec(`DELETE FROM league_teams WHERE league_id = \$1 AND team_id = \$2`).
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.RemoveTeam(context.Background(), 7, 3)
	assert.ErrorIs(t, err, ErrLeagueMemberNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeagueRemoveTeamFromAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresLeagueRepository(db)

	mock.ExpectExec(`DELETE FROM league_teams WHERE team_id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))

	removed, err := repo.RemoveTeamFromAll(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
