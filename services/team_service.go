package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/Madiyar04/fantasy-league/repositories"
	"github.com/Madiyar04/fantasy-league/storage"
)

type CreateTeamInput struct {
	Name      string `json:"name"`
	CreatorID int    `json:"-"`
}

type UpdateTeamInput struct {
	Name string `json:"name"`
}

type TeamService interface {
	// CreateTeam создает команду пользователя. У пользователя может быть
	// только одна команда.
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, teamID int) (*TeamView, error)
	GetMyTeam(ctx context.Context, currentUserID int) (*TeamView, error)
	UpdateTeam(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID, currentUserID int) error
	UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo     repositories.TeamRepository
	userRepo     repositories.UserRepository
	rosterRepo   repositories.RosterRepository
	leagueRepo   repositories.LeagueRepository
	standingRepo repositories.StandingRepository
	uploader     storage.FileUploader
	logger       *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	rosterRepo repositories.RosterRepository,
	leagueRepo repositories.LeagueRepository,
	standingRepo repositories.StandingRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:     teamRepo,
		userRepo:     userRepo,
		rosterRepo:   rosterRepo,
		leagueRepo:   leagueRepo,
		standingRepo: standingRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		Name:    name,
		OwnerID: input.CreatorID,
	}
	team.StampCreated(input.CreatorID, time.Now())

	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamOwnerConflict):
			return nil, ErrTeamAlreadyExists
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamOwnerInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, teamID int) (*TeamView, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return s.buildTeamView(ctx, team)
}

func (s *teamService) GetMyTeam(ctx context.Context, currentUserID int) (*TeamView, error) {
	team, err := s.teamRepo.GetByOwnerID(ctx, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team of user %d: %w", currentUserID, err)
	}
	return s.buildTeamView(ctx, team)
}

func (s *teamService) buildTeamView(ctx context.Context, team *models.Team) (*TeamView, error) {
	driverSlots, err := s.rosterRepo.ListDriverSlots(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list driver slots of team %d: %w", team.ID, err)
	}
	constructorSlots, err := s.rosterRepo.ListConstructorSlots(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list constructor slots of team %d: %w", team.ID, err)
	}
	team.DriverSlots = driverSlots
	team.ConstructorSlots = constructorSlots

	populateTeamLogoURL(team, s.uploader)
	for _, slot := range driverSlots {
		populateDriverPhotoURL(slot.Driver, s.uploader)
	}
	for _, slot := range constructorSlots {
		populateConstructorLogoURL(slot.Constructor, s.uploader)
	}

	owner, err := s.userRepo.GetByID(ctx, team.OwnerID)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to get owner of team %d: %w", team.ID, err)
		}
		owner = nil
	}
	return NewTeamView(team, owner), nil
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.OwnerID != currentUserID {
		return nil, ErrTeamOwnerOnly
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team.Name = name
	team.StampUpdated(currentUserID, time.Now())

	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID, currentUserID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.OwnerID != currentUserID {
		return ErrTeamOwnerOnly
	}

	if err := s.teamRepo.SoftDelete(ctx, teamID, currentUserID, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}

	// Удаленная команда выходит из всех лиг и снимается с зачета: мертвые
	// членства не должны занимать места и висеть в таблицах лиг.
	if _, err := s.leagueRepo.RemoveTeamFromAll(ctx, teamID); err != nil {
		s.logger.WarnContext(ctx, "failed to remove deleted team from its leagues",
			slog.Int("team_id", teamID), slog.Any("error", err))
	}
	if err := s.standingRepo.DeleteByTeam(ctx, teamID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete standings of deleted team",
			slog.Int("team_id", teamID), slog.Any("error", err))
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.OwnerID != currentUserID {
		return nil, ErrTeamOwnerOnly
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported logo content type %q", ErrValidationFailed, contentType)
	}

	key := fmt.Sprintf("teams/%d/logo%s", teamID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, fmt.Errorf("failed to save team logo key: %w", err)
	}
	team.LogoKey = &key
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}
