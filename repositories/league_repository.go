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
	ErrLeagueNotFound       = errors.New("league not found")
	ErrLeagueFull           = errors.New("league is full")
	ErrLeagueTeamConflict   = errors.New("team is already a member of this league")
	ErrLeagueTeamInvalid    = errors.New("league member team conflict or invalid")
	ErrLeagueMemberNotFound = errors.New("league membership not found")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	ListByMemberTeam(ctx context.Context, teamID int) ([]*models.League, error)
	ListPublic(ctx context.Context) ([]*models.League, error)
	Update(ctx context.Context, league *models.League) error
	SoftDelete(ctx context.Context, leagueID int, deletedBy int, deletedAt time.Time) error

	// AddTeam атомарно проверяет вместимость и создает членство: строка
	// лиги блокируется (SELECT ... FOR UPDATE), считаются текущие члены,
	// и только затем выполняется вставка. Два конкурентных вступления в
	// лигу с одним свободным местом не могут пройти оба.
	AddTeam(ctx context.Context, leagueID, teamID int, joinedAt time.Time) (*models.LeagueTeam, error)
	RemoveTeam(ctx context.Context, leagueID, teamID int) error

	// RemoveTeamFromAll удаляет членства команды во всех лигах сразу.
	// Вызывается при удалении команды; отсутствие членств не ошибка.
	RemoveTeamFromAll(ctx context.Context, teamID int) (int64, error)
	ListMembers(ctx context.Context, leagueID int) ([]*models.LeagueTeam, error)
	CountMembers(ctx context.Context, leagueID int) (int, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (name, description, owner_id, max_teams, is_private,
		                     created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		league.Name,
		league.Description,
		league.OwnerID,
		league.MaxTeams,
		league.IsPrivate,
		league.CreatedBy,
		league.UpdatedBy,
		league.CreatedAt,
		league.UpdatedAt,
	).Scan(&league.ID)

	if err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

const leagueColumns = `id, name, description, owner_id, max_teams, is_private,
	created_by, updated_by, created_at, updated_at`

func scanLeague(rowScanner interface {
	Scan(dest ...interface{}) error
}, league *models.League) error {
	return rowScanner.Scan(
		&league.ID,
		&league.Name,
		&league.Description,
		&league.OwnerID,
		&league.MaxTeams,
		&league.IsPrivate,
		&league.CreatedBy,
		&league.UpdatedBy,
		&league.CreatedAt,
		&league.UpdatedAt,
	)
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1 AND is_deleted = FALSE`

	league := &models.League{}
	err := scanLeague(r.db.QueryRowContext(ctx, query, id), league)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to find league %d: %w", id, err)
	}
	return league, nil
}

func (r *postgresLeagueRepository) ListByMemberTeam(ctx context.Context, teamID int) ([]*models.League, error) {
	query := `
		SELECT l.id, l.name, l.description, l.owner_id, l.max_teams, l.is_private,
		       l.created_by, l.updated_by, l.created_at, l.updated_at
		FROM leagues l
		JOIN league_teams lt ON lt.league_id = l.id
		WHERE lt.team_id = $1 AND l.is_deleted = FALSE
		ORDER BY lt.joined_at DESC`
	return r.list(ctx, query, teamID)
}

func (r *postgresLeagueRepository) ListPublic(ctx context.Context) ([]*models.League, error) {
	query := `
		SELECT ` + leagueColumns + `
		FROM leagues
		WHERE is_private = FALSE AND is_deleted = FALSE
		ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *postgresLeagueRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.League, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		var league models.League
		if scanErr := scanLeague(rows, &league); scanErr != nil {
			return nil, scanErr
		}
		leagues = append(leagues, &league)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *postgresLeagueRepository) Update(ctx context.Context, league *models.League) error {
	query := `
		UPDATE leagues
		SET name = $1, description = $2, max_teams = $3, is_private = $4,
		    updated_by = $5, updated_at = $6
		WHERE id = $7 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		league.Name,
		league.Description,
		league.MaxTeams,
		league.IsPrivate,
		league.UpdatedBy,
		league.UpdatedAt,
		league.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update league %d: %w", league.ID, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) SoftDelete(ctx context.Context, leagueID int, deletedBy int, deletedAt time.Time) error {
	query := `
		UPDATE leagues
		SET is_deleted = TRUE, deleted_by = $1, deleted_at = $2
		WHERE id = $3 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, deletedBy, deletedAt, leagueID)
	if err != nil {
		return fmt.Errorf("failed to soft delete league %d: %w", leagueID, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) AddTeam(ctx context.Context, leagueID, teamID int, joinedAt time.Time) (*models.LeagueTeam, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var maxTeams int
	lockQuery := `SELECT max_teams FROM leagues WHERE id = $1 AND is_deleted = FALSE FOR UPDATE`
	if err = tx.QueryRowContext(ctx, lockQuery, leagueID).Scan(&maxTeams); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to lock league %d: %w", leagueID, err)
	}

	// Удаленные команды не занимают место в лиге.
	var currentCount int
	countQuery := `
		SELECT COUNT(*)
		FROM league_teams lt
		JOIN teams t ON t.id = lt.team_id
		WHERE lt.league_id = $1 AND t.is_deleted = FALSE`
	if err = tx.QueryRowContext(ctx, countQuery, leagueID).Scan(&currentCount); err != nil {
		return nil, fmt.Errorf("failed to count members of league %d: %w", leagueID, err)
	}
	if currentCount >= maxTeams {
		return nil, ErrLeagueFull
	}

	membership := &models.LeagueTeam{
		LeagueID: leagueID,
		TeamID:   teamID,
		JoinedAt: joinedAt,
	}
	insertQuery := `
		INSERT INTO league_teams (league_id, team_id, joined_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	err = tx.QueryRowContext(ctx, insertQuery, leagueID, teamID, joinedAt).Scan(&membership.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "league_teams_league_id_team_id_key" {
					return nil, ErrLeagueTeamConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "league_teams_team_id_fkey" {
					return nil, ErrLeagueTeamInvalid
				}
			}
		}
		return nil, fmt.Errorf("failed to add team %d to league %d: %w", teamID, leagueID, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit league join: %w", err)
	}
	return membership, nil
}

func (r *postgresLeagueRepository) RemoveTeam(ctx context.Context, leagueID, teamID int) error {
	query := `DELETE FROM league_teams WHERE league_id = $1 AND team_id = $2`
	result, err := r.db.ExecContext(ctx, query, leagueID, teamID)
	if err != nil {
		return fmt.Errorf("failed to remove team %d from league %d: %w", teamID, leagueID, err)
	}
	return checkAffectedRows(result, ErrLeagueMemberNotFound)
}

func (r *postgresLeagueRepository) RemoveTeamFromAll(ctx context.Context, teamID int) (int64, error) {
	query := `DELETE FROM league_teams WHERE team_id = $1`
	result, err := r.db.ExecContext(ctx, query, teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove team %d from its leagues: %w", teamID, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *postgresLeagueRepository) ListMembers(ctx context.Context, leagueID int) ([]*models.LeagueTeam, error) {
	query := `
		SELECT lt.id, lt.league_id, lt.team_id, lt.joined_at,
		       t.id, t.name, t.owner_id, t.logo_key,
		       t.created_by, t.updated_by, t.created_at, t.updated_at
		FROM league_teams lt
		JOIN teams t ON t.id = lt.team_id
		WHERE lt.league_id = $1 AND t.is_deleted = FALSE
		ORDER BY lt.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of league %d: %w", leagueID, err)
	}
	defer rows.Close()

	members := make([]*models.LeagueTeam, 0)
	for rows.Next() {
		var member models.LeagueTeam
		var team models.Team
		if scanErr := rows.Scan(
			&member.ID,
			&member.LeagueID,
			&member.TeamID,
			&member.JoinedAt,
			&team.ID,
			&team.Name,
			&team.OwnerID,
			&team.LogoKey,
			&team.CreatedBy,
			&team.UpdatedBy,
			&team.CreatedAt,
			&team.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		member.Team = &team
		members = append(members, &member)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *postgresLeagueRepository) CountMembers(ctx context.Context, leagueID int) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM league_teams lt
		JOIN teams t ON t.id = lt.team_id
		WHERE lt.league_id = $1 AND t.is_deleted = FALSE`
	if err := r.db.QueryRowContext(ctx, query, leagueID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members of league %d: %w", leagueID, err)
	}
	return count, nil
}
