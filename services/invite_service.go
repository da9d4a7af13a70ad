package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/Madiyar04/fantasy-league/realtime"
	"github.com/Madiyar04/fantasy-league/repositories"
)

const inviteTokenBytes = 24 // 32 символа в base64url

var ErrInviteTokenGeneration = errors.New("failed to generate unique invite token")

type InviteService interface {
	// GetOrCreateInvite идемпотентна: существующее живое приглашение
	// возвращается без изменений, иначе создается новое с уникальным токеном.
	GetOrCreateInvite(ctx context.Context, leagueID, currentUserID int) (*InviteView, error)
	// PreviewInvite доступна без аутентификации: публичная карточка лиги
	// по токену.
	PreviewInvite(ctx context.Context, token string) (*InvitePreview, error)
	JoinViaInvite(ctx context.Context, token string, currentUserID int) (*LeagueView, error)
}

type inviteService struct {
	inviteRepo repositories.InviteRepository
	leagueRepo repositories.LeagueRepository
	teamRepo   repositories.TeamRepository
	userRepo   repositories.UserRepository
	hub        *realtime.Hub
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	hub *realtime.Hub,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		userRepo:   userRepo,
		hub:        hub,
	}
}

func (s *inviteService) GetOrCreateInvite(ctx context.Context, leagueID, currentUserID int) (*InviteView, error) {
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

	invite, err := s.inviteRepo.GetByLeagueID(ctx, leagueID)
	if err == nil {
		return s.toInviteView(ctx, invite), nil
	}
	if !errors.Is(err, repositories.ErrInviteNotFound) {
		return nil, fmt.Errorf("failed to get invite for league %d: %w", leagueID, err)
	}

	maxAttempts := 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		token, genErr := generateInviteToken(inviteTokenBytes)
		if genErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInviteTokenGeneration, genErr)
		}

		invite = &models.LeagueInvite{
			LeagueID:  leagueID,
			Token:     token,
			CreatedBy: currentUserID,
		}
		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			return s.toInviteView(ctx, invite), nil
		}

		// Конкурентный первый запрос уже создал приглашение лиги —
		// возвращаем его, выдача остается идемпотентной.
		if errors.Is(err, repositories.ErrInviteLeagueConflict) {
			existing, getErr := s.inviteRepo.GetByLeagueID(ctx, leagueID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to get concurrently created invite: %w", getErr)
			}
			return s.toInviteView(ctx, existing), nil
		}

		if !errors.Is(err, repositories.ErrInviteTokenConflict) {
			if errors.Is(err, repositories.ErrInviteLeagueInvalid) {
				return nil, ErrLeagueNotFound
			}
			return nil, fmt.Errorf("failed to create invite for league %d: %w", leagueID, err)
		}
		// Коллизия токена — новая попытка.
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrInviteTokenGeneration, maxAttempts)
}

func (s *inviteService) toInviteView(ctx context.Context, invite *models.LeagueInvite) *InviteView {
	creator, err := s.userRepo.GetByID(ctx, invite.CreatedBy)
	if err != nil {
		creator = nil
	}
	return NewInviteView(invite, creator)
}

func (s *inviteService) PreviewInvite(ctx context.Context, token string) (*InvitePreview, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite by token: %w", err)
	}

	league, err := s.leagueRepo.GetByID(ctx, invite.LeagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", invite.LeagueID, err)
	}

	memberCount, err := s.leagueRepo.CountMembers(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members of league %d: %w", league.ID, err)
	}

	owner, err := s.userRepo.GetByID(ctx, league.OwnerID)
	if err != nil {
		owner = nil
	}

	return NewInvitePreview(league, owner, memberCount), nil
}

func (s *inviteService) JoinViaInvite(ctx context.Context, token string, currentUserID int) (*LeagueView, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite by token: %w", err)
	}

	// Вступает команда действующего пользователя; без команды вступить
	// нельзя — проверяется на сервере независимо от клиента.
	team, err := s.teamRepo.GetByOwnerID(ctx, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamRequired
		}
		return nil, fmt.Errorf("failed to get team of user %d: %w", currentUserID, err)
	}

	membership, err := s.leagueRepo.AddTeam(ctx, invite.LeagueID, team.ID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueNotFound):
			return nil, ErrInviteNotFound
		case errors.Is(err, repositories.ErrLeagueFull):
			return nil, ErrLeagueFull
		case errors.Is(err, repositories.ErrLeagueTeamConflict):
			return nil, ErrAlreadyLeagueMember
		case errors.Is(err, repositories.ErrLeagueTeamInvalid):
			return nil, ErrTeamRequired
		}
		return nil, fmt.Errorf("failed to join league %d: %w", invite.LeagueID, err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(leagueRoomID(invite.LeagueID), realtime.Message{
			Type: realtime.EventTeamJoined,
			Payload: map[string]interface{}{
				"league_id": invite.LeagueID,
				"team_id":   team.ID,
				"team_name": team.Name,
				"joined_at": membership.JoinedAt,
			},
		})
	}

	league, err := s.leagueRepo.GetByID(ctx, invite.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload league %d after join: %w", invite.LeagueID, err)
	}
	memberCount, err := s.leagueRepo.CountMembers(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members of league %d: %w", league.ID, err)
	}
	owner, err := s.userRepo.GetByID(ctx, league.OwnerID)
	if err != nil {
		owner = nil
	}
	return NewLeagueView(league, owner, memberCount), nil
}

func leagueRoomID(leagueID int) string {
	return "league_" + strconv.Itoa(leagueID)
}
