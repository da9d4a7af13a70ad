package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/Madiyar04/fantasy-league/repositories"
	"github.com/Madiyar04/fantasy-league/storage"
)

// RosterService поддерживает состав команды: фиксированный набор позиций
// для пилотов (0–4) и конструкторов (0–1).
type RosterService interface {
	AssignDriver(ctx context.Context, teamID, driverID, slotPosition, currentUserID int) (*models.TeamDriverSlot, error)
	RemoveDriver(ctx context.Context, teamID, slotPosition, currentUserID int) error
	AssignConstructor(ctx context.Context, teamID, constructorID, slotPosition, currentUserID int) (*models.TeamConstructorSlot, error)
	RemoveConstructor(ctx context.Context, teamID, slotPosition, currentUserID int) error
	GetRoster(ctx context.Context, teamID int) ([]*DriverSlotView, []*ConstructorSlotView, error)
}

type rosterService struct {
	rosterRepo      repositories.RosterRepository
	teamRepo        repositories.TeamRepository
	driverRepo      repositories.DriverRepository
	constructorRepo repositories.ConstructorRepository
	uploader        storage.FileUploader
}

func NewRosterService(
	rosterRepo repositories.RosterRepository,
	teamRepo repositories.TeamRepository,
	driverRepo repositories.DriverRepository,
	constructorRepo repositories.ConstructorRepository,
	uploader storage.FileUploader,
) RosterService {
	return &rosterService{
		rosterRepo:      rosterRepo,
		teamRepo:        teamRepo,
		driverRepo:      driverRepo,
		constructorRepo: constructorRepo,
		uploader:        uploader,
	}
}

// requireTeamOwner проверяет, что команда существует и принадлежит
// действующему пользователю.
func (s *rosterService) requireTeamOwner(ctx context.Context, teamID, currentUserID int) (*models.Team, error) {
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
	return team, nil
}

func (s *rosterService) AssignDriver(ctx context.Context, teamID, driverID, slotPosition, currentUserID int) (*models.TeamDriverSlot, error) {
	if slotPosition < 0 || slotPosition >= models.DriverSlotCount {
		return nil, fmt.Errorf("%w: driver slot position must be between 0 and %d, got %d",
			ErrSlotPositionInvalid, models.DriverSlotCount-1, slotPosition)
	}

	if _, err := s.requireTeamOwner(ctx, teamID, currentUserID); err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repositories.ErrDriverNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to get driver %d: %w", driverID, err)
	}
	if !driver.Active {
		return nil, ErrDriverInactive
	}

	userID := currentUserID
	slot := &models.TeamDriverSlot{
		TeamID:       teamID,
		DriverID:     driverID,
		SlotPosition: slotPosition,
		CreatedBy:    &userID,
	}
	if err := s.rosterRepo.CreateDriverSlot(ctx, slot); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSlotPositionConflict):
			return nil, ErrSlotOccupied
		case errors.Is(err, repositories.ErrSlotDriverConflict):
			return nil, ErrDriverAlreadyOnTeam
		case errors.Is(err, repositories.ErrSlotDriverInvalid):
			return nil, ErrDriverNotFound
		case errors.Is(err, repositories.ErrSlotTeamInvalid):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrSlotPositionCheckViolation):
			return nil, ErrSlotPositionInvalid
		}
		return nil, fmt.Errorf("failed to assign driver %d to slot %d: %w", driverID, slotPosition, err)
	}
	slot.Driver = driver
	return slot, nil
}

// RemoveDriver идемпотентен: удаление уже пустой позиции завершается
// успехом без побочных эффектов.
func (s *rosterService) RemoveDriver(ctx context.Context, teamID, slotPosition, currentUserID int) error {
	if slotPosition < 0 || slotPosition >= models.DriverSlotCount {
		return fmt.Errorf("%w: driver slot position must be between 0 and %d, got %d",
			ErrSlotPositionInvalid, models.DriverSlotCount-1, slotPosition)
	}
	if _, err := s.requireTeamOwner(ctx, teamID, currentUserID); err != nil {
		return err
	}
	if err := s.rosterRepo.DeleteDriverSlot(ctx, teamID, slotPosition); err != nil {
		if errors.Is(err, repositories.ErrSlotNotFound) {
			return nil
		}
		return fmt.Errorf("failed to remove driver slot %d: %w", slotPosition, err)
	}
	return nil
}

func (s *rosterService) AssignConstructor(ctx context.Context, teamID, constructorID, slotPosition, currentUserID int) (*models.TeamConstructorSlot, error) {
	if slotPosition < 0 || slotPosition >= models.ConstructorSlotCount {
		return nil, fmt.Errorf("%w: constructor slot position must be between 0 and %d, got %d",
			ErrSlotPositionInvalid, models.ConstructorSlotCount-1, slotPosition)
	}

	if _, err := s.requireTeamOwner(ctx, teamID, currentUserID); err != nil {
		return nil, err
	}

	constructor, err := s.constructorRepo.GetByID(ctx, constructorID)
	if err != nil {
		if errors.Is(err, repositories.ErrConstructorNotFound) {
			return nil, ErrConstructorNotFound
		}
		return nil, fmt.Errorf("failed to get constructor %d: %w", constructorID, err)
	}
	if !constructor.Active {
		return nil, ErrConstructorInactive
	}

	userID := currentUserID
	slot := &models.TeamConstructorSlot{
		TeamID:        teamID,
		ConstructorID: constructorID,
		SlotPosition:  slotPosition,
		CreatedBy:     &userID,
	}
	if err := s.rosterRepo.CreateConstructorSlot(ctx, slot); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSlotPositionConflict):
			return nil, ErrSlotOccupied
		case errors.Is(err, repositories.ErrSlotConstructorConflict):
			return nil, ErrConstructorAlreadyOnTeam
		case errors.Is(err, repositories.ErrSlotConstructorInvalid):
			return nil, ErrConstructorNotFound
		case errors.Is(err, repositories.ErrSlotTeamInvalid):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrSlotPositionCheckViolation):
			return nil, ErrSlotPositionInvalid
		}
		return nil, fmt.Errorf("failed to assign constructor %d to slot %d: %w", constructorID, slotPosition, err)
	}
	slot.Constructor = constructor
	return slot, nil
}

func (s *rosterService) RemoveConstructor(ctx context.Context, teamID, slotPosition, currentUserID int) error {
	if slotPosition < 0 || slotPosition >= models.ConstructorSlotCount {
		return fmt.Errorf("%w: constructor slot position must be between 0 and %d, got %d",
			ErrSlotPositionInvalid, models.ConstructorSlotCount-1, slotPosition)
	}
	if _, err := s.requireTeamOwner(ctx, teamID, currentUserID); err != nil {
		return err
	}
	if err := s.rosterRepo.DeleteConstructorSlot(ctx, teamID, slotPosition); err != nil {
		if errors.Is(err, repositories.ErrSlotNotFound) {
			return nil
		}
		return fmt.Errorf("failed to remove constructor slot %d: %w", slotPosition, err)
	}
	return nil
}

// GetRoster возвращает обе последовательности фиксированной длины в
// порядке позиций; незанятые позиции представлены явными nil.
func (s *rosterService) GetRoster(ctx context.Context, teamID int) ([]*DriverSlotView, []*ConstructorSlotView, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	driverSlots, err := s.rosterRepo.ListDriverSlots(ctx, teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list driver slots: %w", err)
	}
	constructorSlots, err := s.rosterRepo.ListConstructorSlots(ctx, teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list constructor slots: %w", err)
	}

	for _, slot := range driverSlots {
		populateDriverPhotoURL(slot.Driver, s.uploader)
	}
	for _, slot := range constructorSlots {
		populateConstructorLogoURL(slot.Constructor, s.uploader)
	}

	return DriverSlotViews(driverSlots), ConstructorSlotViews(constructorSlots), nil
}
