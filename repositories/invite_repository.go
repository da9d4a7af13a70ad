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
	ErrInviteNotFound       = errors.New("invite not found")
	ErrInviteTokenConflict  = errors.New("invite token conflict")
	ErrInviteLeagueConflict = errors.New("league already has a live invite")
	ErrInviteLeagueInvalid  = errors.New("invite league conflict or invalid")
)

// InviteRepository хранит приглашения лиг: одно живое приглашение на
// лигу, токен уникален глобально.
type InviteRepository interface {
	Create(ctx context.Context, invite *models.LeagueInvite) error
	GetByLeagueID(ctx context.Context, leagueID int) (*models.LeagueInvite, error)
	// GetByToken возвращает приглашение только для живой (не удаленной) лиги.
	GetByToken(ctx context.Context, token string) (*models.LeagueInvite, error)
	DeleteByLeagueID(ctx context.Context, leagueID int) error
	// DeleteOrphaned удаляет приглашения мягко удаленных лиг.
	DeleteOrphaned(ctx context.Context) (int64, error)
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

func (r *postgresInviteRepository) Create(ctx context.Context, invite *models.LeagueInvite) error {
	query := `
		INSERT INTO league_invites (league_id, token, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invite.LeagueID,
		invite.Token,
		invite.CreatedBy,
	).Scan(&invite.ID, &invite.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				switch pqErr.Constraint {
				case "league_invites_token_key":
					return ErrInviteTokenConflict
				case "league_invites_league_id_key":
					return ErrInviteLeagueConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "league_invites_league_id_fkey" {
					return ErrInviteLeagueInvalid
				}
			}
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *postgresInviteRepository) GetByLeagueID(ctx context.Context, leagueID int) (*models.LeagueInvite, error) {
	query := `
		SELECT id, league_id, token, created_by, created_at
		FROM league_invites
		WHERE league_id = $1`
	return r.findOne(ctx, query, leagueID)
}

func (r *postgresInviteRepository) GetByToken(ctx context.Context, token string) (*models.LeagueInvite, error) {
	query := `
		SELECT i.id, i.league_id, i.token, i.created_by, i.created_at
		FROM league_invites i
		JOIN leagues l ON l.id = i.league_id
		WHERE i.token = $1 AND l.is_deleted = FALSE`
	return r.findOne(ctx, query, token)
}

func (r *postgresInviteRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.LeagueInvite, error) {
	invite := &models.LeagueInvite{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&invite.ID,
		&invite.LeagueID,
		&invite.Token,
		&invite.CreatedBy,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	return invite, nil
}

func (r *postgresInviteRepository) DeleteByLeagueID(ctx context.Context, leagueID int) error {
	query := `DELETE FROM league_invites WHERE league_id = $1`
	result, err := r.db.ExecContext(ctx, query, leagueID)
	if err != nil {
		return fmt.Errorf("failed to delete invite for league %d: %w", leagueID, err)
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}

func (r *postgresInviteRepository) DeleteOrphaned(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM league_invites i
		USING leagues l
		WHERE l.id = i.league_id AND l.is_deleted = TRUE`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned invites: %w", err)
	}
	return result.RowsAffected()
}
