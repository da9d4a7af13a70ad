package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/Madiyar04/fantasy-league/realtime"
	"github.com/Madiyar04/fantasy-league/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateLeagueInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	MaxTeams    *int    `json:"max_teams"`
	IsPrivate   bool    `json:"is_private"`
}

type UpdateLeagueInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	MaxTeams    *int    `json:"max_teams"`
	IsPrivate   *bool   `json:"is_private"`
}

type LeagueService interface {
	CreateLeague(ctx context.Context, input CreateLeagueInput, currentUserID int) (*models.League, error)
	GetLeague(ctx context.Context, leagueID int) (*LeagueView, error)
	ListPublicLeagues(ctx context.Context) ([]*LeagueView, error)
	ListMyLeagues(ctx context.Context, currentUserID int) ([]*LeagueView, error)
	UpdateLeague(ctx context.Context, leagueID int, input UpdateLeagueInput, currentUserID int) (*models.League, error)
	DeleteLeague(ctx context.Context, leagueID, currentUserID int) error

	// AddTeamDirectly — вступление без токена, доступно владельцу лиги.
	// Проверки вместимости и дублей те же, что и при вступлении по
	// приглашению, и так же атомарны.
	AddTeamDirectly(ctx context.Context, leagueID, teamID, currentUserID int) error
	RemoveTeam(ctx context.Context, leagueID, teamID, currentUserID int) error

	AwardPoints(ctx context.Context, leagueID, teamID, points, currentUserID int) (*models.LeagueStanding, error)
	GetStandings(ctx context.Context, leagueID int) ([]StandingView, error)
}

type leagueService struct {
	leagueRepo   repositories.LeagueRepository
	teamRepo     repositories.TeamRepository
	userRepo     repositories.UserRepository
	inviteRepo   repositories.InviteRepository
	standingRepo repositories.StandingRepository
	hub          *realtime.Hub
	logger       *slog.Logger
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	inviteRepo repositories.InviteRepository,
	standingRepo repositories.StandingRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) LeagueService {
	return &leagueService{
		leagueRepo:   leagueRepo,
		teamRepo:     teamRepo,
		userRepo:     userRepo,
		inviteRepo:   inviteRepo,
		standingRepo: standingRepo,
		hub:          hub,
		logger:       logger,
	}
}

func (s *leagueService) CreateLeague(ctx context.Context, input CreateLeagueInput, currentUserID int) (*models.League, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrLeagueNameRequired
	}

	maxTeams := models.DefaultLeagueMaxTeams
	if input.MaxTeams != nil {
		maxTeams = *input.MaxTeams
	}
	if maxTeams <= 0 {
		return nil, ErrLeagueInvalidCapacity
	}

	league := &models.League{
		Name:        name,
		Description: input.Description,
		OwnerID:     currentUserID,
		MaxTeams:    maxTeams,
		IsPrivate:   input.IsPrivate,
	}
	league.StampCreated(currentUserID, time.Now())

	if err := s.leagueRepo.Create(ctx, league); err != nil {
		return nil, fmt.Errorf("failed to create league: %w", err)
	}
	return league, nil
}

// GetLeague собирает карточку лиги: владелец, члены и их число
// загружаются параллельно.
func (s *leagueService) GetLeague(ctx context.Context, leagueID int) (*LeagueView, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	var owner *models.User
	var members []*models.LeagueTeam

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.userRepo.GetByID(gCtx, league.OwnerID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil
			}
			return fmt.Errorf("failed to get league owner %d: %w", league.OwnerID, err)
		}
		owner = u
		return nil
	})
	g.Go(func() error {
		m, err := s.leagueRepo.ListMembers(gCtx, leagueID)
		if err != nil {
			return fmt.Errorf("failed to list members of league %d: %w", leagueID, err)
		}
		members = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	league.Members = members
	return NewLeagueView(league, owner, len(members)), nil
}

func (s *leagueService) ListPublicLeagues(ctx context.Context) ([]*LeagueView, error) {
	leagues, err := s.leagueRepo.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list public leagues: %w", err)
	}
	return s.leagueSummaries(ctx, leagues)
}

func (s *leagueService) ListMyLeagues(ctx context.Context, currentUserID int) ([]*LeagueView, error) {
	team, err := s.teamRepo.GetByOwnerID(ctx, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return []*LeagueView{}, nil
		}
		return nil, fmt.Errorf("failed to get team of user %d: %w", currentUserID, err)
	}
	leagues, err := s.leagueRepo.ListByMemberTeam(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues of team %d: %w", team.ID, err)
	}
	return s.leagueSummaries(ctx, leagues)
}

// leagueSummaries собирает краткие карточки лиг: имя владельца и число
// команд, без списка членов. Владельцы кэшируются в рамках вызова.
func (s *leagueService) leagueSummaries(ctx context.Context, leagues []*models.League) ([]*LeagueView, error) {
	owners := make(map[int]*models.User)
	views := make([]*LeagueView, 0, len(leagues))
	for _, league := range leagues {
		owner, ok := owners[league.OwnerID]
		if !ok {
			u, err := s.userRepo.GetByID(ctx, league.OwnerID)
			if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
				return nil, fmt.Errorf("failed to get owner of league %d: %w", league.ID, err)
			}
			owner = u
			owners[league.OwnerID] = owner
		}
		memberCount, err := s.leagueRepo.CountMembers(ctx, league.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count members of league %d: %w", league.ID, err)
		}
		views = append(views, NewLeagueView(league, owner, memberCount))
	}
	return views, nil
}

func (s *leagueService) requireLeagueOwner(ctx context.Context, leagueID, currentUserID int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	if league.OwnerID != currentUserID {
		return nil, ErrLeagueOwnerOnly
	}
	return league, nil
}

func (s *leagueService) UpdateLeague(ctx context.Context, leagueID int, input UpdateLeagueInput, currentUserID int) (*models.League, error) {
	league, err := s.requireLeagueOwner(ctx, leagueID, currentUserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrLeagueNameRequired
		}
		league.Name = name
	}
	if input.Description != nil {
		league.Description = input.Description
	}
	if input.MaxTeams != nil {
		if *input.MaxTeams <= 0 {
			return nil, ErrLeagueInvalidCapacity
		}
		// Уже принятые члены остаются, даже если новый предел ниже
		// текущего числа команд; новые вступления будут отклоняться.
		league.MaxTeams = *input.MaxTeams
	}
	if input.IsPrivate != nil {
		league.IsPrivate = *input.IsPrivate
	}
	league.StampUpdated(currentUserID, time.Now())

	if err := s.leagueRepo.Update(ctx, league); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to update league %d: %w", leagueID, err)
	}
	return league, nil
}

func (s *leagueService) DeleteLeague(ctx context.Context, leagueID, currentUserID int) error {
	if _, err := s.requireLeagueOwner(ctx, leagueID, currentUserID); err != nil {
		return err
	}

	if err := s.leagueRepo.SoftDelete(ctx, leagueID, currentUserID, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to delete league %d: %w", leagueID, err)
	}

	// Приглашение лиги умирает вместе с ней. Ошибка не фатальна:
	// осиротевшие приглашения подчищает фоновая задача.
	if err := s.inviteRepo.DeleteByLeagueID(ctx, leagueID); err != nil &&
		!errors.Is(err, repositories.ErrInviteNotFound) {
		s.logger.WarnContext(ctx, "failed to delete invite of deleted league",
			slog.Int("league_id", leagueID), slog.Any("error", err))
	}
	return nil
}

func (s *leagueService) AddTeamDirectly(ctx context.Context, leagueID, teamID, currentUserID int) error {
	if _, err := s.requireLeagueOwner(ctx, leagueID, currentUserID); err != nil {
		return err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	membership, err := s.leagueRepo.AddTeam(ctx, leagueID, teamID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueNotFound):
			return ErrLeagueNotFound
		case errors.Is(err, repositories.ErrLeagueFull):
			return ErrLeagueFull
		case errors.Is(err, repositories.ErrLeagueTeamConflict):
			return ErrAlreadyLeagueMember
		case errors.Is(err, repositories.ErrLeagueTeamInvalid):
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to add team %d to league %d: %w", teamID, leagueID, err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(leagueRoomID(leagueID), realtime.Message{
			Type: realtime.EventTeamJoined,
			Payload: map[string]interface{}{
				"league_id": leagueID,
				"team_id":   team.ID,
				"team_name": team.Name,
				"joined_at": membership.JoinedAt,
			},
		})
	}
	return nil
}

func (s *leagueService) RemoveTeam(ctx context.Context, leagueID, teamID, currentUserID int) error {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	// Удалить команду может владелец лиги либо владелец самой команды.
	if league.OwnerID != currentUserID {
		team, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("failed to get team %d: %w", teamID, err)
		}
		if team.OwnerID != currentUserID {
			return ErrForbiddenOperation
		}
	}

	if err := s.leagueRepo.RemoveTeam(ctx, leagueID, teamID); err != nil {
		if errors.Is(err, repositories.ErrLeagueMemberNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to remove team %d from league %d: %w", teamID, leagueID, err)
	}

	if err := s.standingRepo.DeleteByLeagueAndTeam(ctx, leagueID, teamID); err != nil &&
		!errors.Is(err, repositories.ErrStandingNotFound) {
		s.logger.WarnContext(ctx, "failed to delete standing of removed team",
			slog.Int("league_id", leagueID), slog.Int("team_id", teamID), slog.Any("error", err))
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(leagueRoomID(leagueID), realtime.Message{
			Type: realtime.EventTeamLeft,
			Payload: map[string]interface{}{
				"league_id": leagueID,
				"team_id":   teamID,
			},
		})
	}
	return nil
}

// AwardPoints начисляет команде очки в лиге. Только администратор.
func (s *leagueService) AwardPoints(ctx context.Context, leagueID, teamID, points, currentUserID int) (*models.LeagueStanding, error) {
	user, err := s.userRepo.GetByID(ctx, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", currentUserID, err)
	}
	if user.Role != models.RoleAdmin {
		return nil, ErrAdminOnly
	}
	if points <= 0 {
		return nil, ErrPointsInvalid
	}

	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	standing, err := s.standingRepo.AddPoints(ctx, nil, leagueID, teamID, points)
	if err != nil {
		if errors.Is(err, repositories.ErrStandingMemberRequired) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to award points in league %d: %w", leagueID, err)
	}

	standings, err := s.standingRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load standings for broadcast",
			slog.Int("league_id", leagueID), slog.Any("error", err))
	} else if s.hub != nil {
		s.hub.BroadcastToRoom(leagueRoomID(leagueID), realtime.Message{
			Type:    realtime.EventStandingsUpdated,
			Payload: StandingViews(standings),
		})
	}
	return standing, nil
}

func (s *leagueService) GetStandings(ctx context.Context, leagueID int) ([]StandingView, error) {
	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	standings, err := s.standingRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings of league %d: %w", leagueID, err)
	}
	return StandingViews(standings), nil
}
