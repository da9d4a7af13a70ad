package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/Madiyar04/fantasy-league/repositories"
	"github.com/Madiyar04/fantasy-league/storage"
)

type DriverInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	RaceNumber int    `json:"race_number"`
	Country    string `json:"country"`
	Active     *bool  `json:"active"`
}

type ConstructorInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Active  *bool  `json:"active"`
}

// CatalogService управляет справочниками пилотов и конструкторов.
// Изменения доступны только администратору; чтение публично.
type CatalogService interface {
	CreateDriver(ctx context.Context, input DriverInput, currentUserID int) (*models.Driver, error)
	UpdateDriver(ctx context.Context, driverID int, input DriverInput, currentUserID int) (*models.Driver, error)
	GetDriver(ctx context.Context, driverID int) (*models.Driver, error)
	ListDrivers(ctx context.Context, onlyActive bool) ([]*models.Driver, error)
	UploadDriverPhoto(ctx context.Context, driverID, currentUserID int, contentType string, file io.Reader) (*models.Driver, error)

	CreateConstructor(ctx context.Context, input ConstructorInput, currentUserID int) (*models.Constructor, error)
	UpdateConstructor(ctx context.Context, constructorID int, input ConstructorInput, currentUserID int) (*models.Constructor, error)
	GetConstructor(ctx context.Context, constructorID int) (*models.Constructor, error)
	ListConstructors(ctx context.Context, onlyActive bool) ([]*models.Constructor, error)
	UploadConstructorLogo(ctx context.Context, constructorID, currentUserID int, contentType string, file io.Reader) (*models.Constructor, error)
}

type catalogService struct {
	driverRepo      repositories.DriverRepository
	constructorRepo repositories.ConstructorRepository
	userRepo        repositories.UserRepository
	uploader        storage.FileUploader
}

func NewCatalogService(
	driverRepo repositories.DriverRepository,
	constructorRepo repositories.ConstructorRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) CatalogService {
	return &catalogService{
		driverRepo:      driverRepo,
		constructorRepo: constructorRepo,
		userRepo:        userRepo,
		uploader:        uploader,
	}
}

func (s *catalogService) requireAdmin(ctx context.Context, currentUserID int) error {
	user, err := s.userRepo.GetByID(ctx, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %d: %w", currentUserID, err)
	}
	if user.Role != models.RoleAdmin {
		return ErrAdminOnly
	}
	return nil
}

func (s *catalogService) CreateDriver(ctx context.Context, input DriverInput, currentUserID int) (*models.Driver, error) {
	if err := s.requireAdmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.LastName) == "" {
		return nil, fmt.Errorf("%w: driver last name is required", ErrValidationFailed)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	driver := &models.Driver{
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		RaceNumber: input.RaceNumber,
		Country:    strings.TrimSpace(input.Country),
		Active:     active,
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repositories.ErrDriverNumberConflict) {
			return nil, ErrDriverNumberConflict
		}
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return driver, nil
}

func (s *catalogService) UpdateDriver(ctx context.Context, driverID int, input DriverInput, currentUserID int) (*models.Driver, error) {
	if err := s.requireAdmin(ctx, currentUserID); err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repositories.ErrDriverNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to get driver %d: %w", driverID, err)
	}

	if strings.TrimSpace(input.LastName) != "" {
		driver.LastName = strings.TrimSpace(input.LastName)
	}
	driver.FirstName = strings.TrimSpace(input.FirstName)
	if input.RaceNumber != 0 {
		driver.RaceNumber = input.RaceNumber
	}
	if strings.TrimSpace(input.Country) != "" {
		driver.Country = strings.TrimSpace(input.Country)
	}
	if input.Active != nil {
		driver.Active = *input.Active
	}

	if err := s.driverRepo.Update(ctx, driver); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDriverNumberConflict):
			return nil, ErrDriverNumberConflict
		case errors.Is(err, repositories.ErrDriverNotFound):
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to update driver %d: %w", driverID, err)
	}
	populateDriverPhotoURL(driver, s.uploader)
	return driver, nil
}

func (s *catalogService) GetDriver(ctx context.Context, driverID int) (*models.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repositories.ErrDriverNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to get driver %d: %w", driverID, err)
	}
	populateDriverPhotoURL(driver, s.uploader)
	return driver, nil
}

func (s *catalogService) ListDrivers(ctx context.Context, onlyActive bool) ([]*models.Driver, error) {
	drivers, err := s.driverRepo.List(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	for _, driver := range drivers {
		populateDriverPhotoURL(driver, s.uploader)
	}
	return drivers, nil
}

func (s *catalogService) UploadDriverPhoto(ctx context.Context, driverID, currentUserID int, contentType string, file io.Reader) (*models.Driver, error) {
	if err := s.requireAdmin(ctx, currentUserID); err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repositories.ErrDriverNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to get driver %d: %w", driverID, err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported photo content type %q", ErrValidationFailed, contentType)
	}

	key := fmt.Sprintf("drivers/%d/photo%s", driverID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload driver photo: %w", err)
	}
	if err := s.driverRepo.UpdatePhotoKey(ctx, driverID, &key); err != nil {
		return nil, fmt.Errorf("failed to save driver photo key: %w", err)
	}
	driver.PhotoKey = &key
	populateDriverPhotoURL(driver, s.uploader)
	return driver, nil
}

func (s *catalogService) CreateConstructor(ctx context.Context, input ConstructorInput, currentUserID int) (*models.Constructor, error) {
	if err := s.requireAdmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: constructor name is required", ErrValidationFailed)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	constructor := &models.Constructor{
		Name:    strings.TrimSpace(input.Name),
		Country: strings.TrimSpace(input.Country),
		Active:  active,
	}
	if err := s.constructorRepo.Create(ctx, constructor); err != nil {
		if errors.Is(err, repositories.ErrConstructorNameConflict) {
			return nil, ErrConstructorNameConflict
		}
		return nil, fmt.Errorf("failed to create constructor: %w", err)
	}
	return constructor, nil
}

func (s *catalogService) UpdateConstructor(ctx context.Context, constructorID int, input ConstructorInput, currentUserID int) (*models.Constructor, error) {
	if err := s.requireAdmin(ctx, currentUserID); err != nil {
		return nil, err
	}

	constructor, err := s.constructorRepo.GetByID(ctx, constructorID)
	if err != nil {
		if errors.Is(err, repositories.ErrConstructorNotFound) {
			return nil, ErrConstructorNotFound
		}
		return nil, fmt.Errorf("failed to get constructor %d: %w", constructorID, err)
	}

	if strings.TrimSpace(input.Name) != "" {
		constructor.Name = strings.TrimSpace(input.Name)
	}
	if strings.TrimSpace(input.Country) != "" {
		constructor.Country = strings.TrimSpace(input.Country)
	}
	if input.Active != nil {
		constructor.Active = *input.Active
	}

	if err := s.constructorRepo.Update(ctx, constructor); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConstructorNameConflict):
			return nil, ErrConstructorNameConflict
		case errors.Is(err, repositories.ErrConstructorNotFound):
			return nil, ErrConstructorNotFound
		}
		return nil, fmt.Errorf("failed to update constructor %d: %w", constructorID, err)
	}
	populateConstructorLogoURL(constructor, s.uploader)
	return constructor, nil
}

func (s *catalogService) GetConstructor(ctx context.Context, constructorID int) (*models.Constructor, error) {
	constructor, err := s.constructorRepo.GetByID(ctx, constructorID)
	if err != nil {
		if errors.Is(err, repositories.ErrConstructorNotFound) {
			return nil, ErrConstructorNotFound
		}
		return nil, fmt.Errorf("failed to get constructor %d: %w", constructorID, err)
	}
	populateConstructorLogoURL(constructor, s.uploader)
	return constructor, nil
}

func (s *catalogService) ListConstructors(ctx context.Context, onlyActive bool) ([]*models.Constructor, error) {
	constructors, err := s.constructorRepo.List(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list constructors: %w", err)
	}
	for _, constructor := range constructors {
		populateConstructorLogoURL(constructor, s.uploader)
	}
	return constructors, nil
}

func (s *catalogService) UploadConstructorLogo(ctx context.Context, constructorID, currentUserID int, contentType string, file io.Reader) (*models.Constructor, error) {
	if err := s.requireAdmin(ctx, currentUserID); err != nil {
		return nil, err
	}

	constructor, err := s.constructorRepo.GetByID(ctx, constructorID)
	if err != nil {
		if errors.Is(err, repositories.ErrConstructorNotFound) {
			return nil, ErrConstructorNotFound
		}
		return nil, fmt.Errorf("failed to get constructor %d: %w", constructorID, err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported logo content type %q", ErrValidationFailed, contentType)
	}

	key := fmt.Sprintf("constructors/%d/logo%s", constructorID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload constructor logo: %w", err)
	}
	if err := s.constructorRepo.UpdateLogoKey(ctx, constructorID, &key); err != nil {
		return nil, fmt.Errorf("failed to save constructor logo key: %w", err)
	}
	constructor.LogoKey = &key
	populateConstructorLogoURL(constructor, s.uploader)
	return constructor, nil
}
