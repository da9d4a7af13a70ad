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
	ErrStandingNotFound       = errors.New("standing not found")
	ErrStandingMemberRequired = errors.New("standing requires league membership")
)

type StandingRepository interface {
	// AddPoints добавляет очки команде в лиге, создавая строку при первом
	// начислении (upsert по паре league_id, team_id).
	AddPoints(ctx context.Context, exec SQLExecutor, leagueID, teamID, points int) (*models.LeagueStanding, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.LeagueStanding, error)
	DeleteByLeagueAndTeam(ctx context.Context, leagueID, teamID int) error

	// DeleteByTeam снимает команду с зачета во всех лигах. Вызывается при
	// удалении команды; отсутствие строк не ошибка.
	DeleteByTeam(ctx context.Context, teamID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) AddPoints(ctx context.Context, exec SQLExecutor, leagueID, teamID, points int) (*models.LeagueStanding, error) {
	query := `
		INSERT INTO league_standings (league_id, team_id, points, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (league_id, team_id)
		DO UPDATE SET points = league_standings.points + EXCLUDED.points, updated_at = NOW()
		RETURNING id, league_id, team_id, points, updated_at`

	standing := &models.LeagueStanding{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, leagueID, teamID, points).Scan(
		&standing.ID,
		&standing.LeagueID,
		&standing.TeamID,
		&standing.Points,
		&standing.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "league_standings_membership_fkey" {
				return nil, ErrStandingMemberRequired
			}
		}
		return nil, fmt.Errorf("failed to add points for team %d in league %d: %w", teamID, leagueID, err)
	}
	return standing, nil
}

func (r *postgresStandingRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.LeagueStanding, error) {
	query := `
		SELECT s.id, s.league_id, s.team_id, s.points, s.updated_at,
		       t.id, t.name, t.owner_id, t.logo_key,
		       t.created_by, t.updated_by, t.created_at, t.updated_at
		FROM league_standings s
		JOIN teams t ON t.id = s.team_id
		WHERE s.league_id = $1 AND t.is_deleted = FALSE
		ORDER BY s.points DESC, t.name ASC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	standings := make([]*models.LeagueStanding, 0)
	for rows.Next() {
		var standing models.LeagueStanding
		var team models.Team
		if scanErr := rows.Scan(
			&standing.ID,
			&standing.LeagueID,
			&standing.TeamID,
			&standing.Points,
			&standing.UpdatedAt,
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
		standing.Team = &team
		standings = append(standings, &standing)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func (r *postgresStandingRepository) DeleteByLeagueAndTeam(ctx context.Context, leagueID, teamID int) error {
	query := `DELETE FROM league_standings WHERE league_id = $1 AND team_id = $2`
	result, err := r.db.ExecContext(ctx, query, leagueID, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete standing: %w", err)
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func (r *postgresStandingRepository) DeleteByTeam(ctx context.Context, teamID int) error {
	query := `DELETE FROM league_standings WHERE team_id = $1`
	if _, err := r.db.ExecContext(ctx, query, teamID); err != nil {
		return fmt.Errorf("failed to delete standings of team %d: %w", teamID, err)
	}
	return nil
}
