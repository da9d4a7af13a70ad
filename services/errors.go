package services

import "errors"

// Общие ошибки сервисного слоя. Обработчики транслируют их в HTTP-статусы
// через errors.Is, не разбирая текст сообщений.
var (
	// Ресурс не найден
	ErrNotFound            = errors.New("requested resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrConstructorNotFound = errors.New("constructor not found")
	ErrLeagueNotFound      = errors.New("league not found")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrMembershipNotFound  = errors.New("team is not a member of this league")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrTeamNameRequired      = errors.New("team name is required")
	ErrLeagueNameRequired    = errors.New("league name is required")
	ErrLeagueInvalidCapacity = errors.New("league max teams must be positive")
	ErrSlotPositionInvalid   = errors.New("slot position is out of range")
	ErrDriverInactive        = errors.New("driver is not active")
	ErrConstructorInactive   = errors.New("constructor is not active")
	ErrTeamRequired          = errors.New("user must create a team first")
	ErrPointsInvalid         = errors.New("points must be positive")

	// Конфликты
	ErrUserEmailConflict        = errors.New("email address is already in use")
	ErrTeamAlreadyExists        = errors.New("user already owns a team")
	ErrTeamNameConflict         = errors.New("team name is already in use")
	ErrSlotOccupied             = errors.New("slot is already occupied")
	ErrDriverAlreadyOnTeam      = errors.New("driver is already on the team")
	ErrConstructorAlreadyOnTeam = errors.New("constructor is already on the team")
	ErrLeagueFull               = errors.New("league is full")
	ErrAlreadyLeagueMember      = errors.New("team is already a member of this league")
	ErrDriverNumberConflict     = errors.New("race number is already in use")
	ErrConstructorNameConflict  = errors.New("constructor name is already in use")

	// Аутентификация и авторизация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrLeagueOwnerOnly        = errors.New("only the league owner can perform this action")
	ErrTeamOwnerOnly          = errors.New("only the team owner can perform this action")
	ErrAdminOnly              = errors.New("only an administrator can perform this action")
)
