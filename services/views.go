package services

import (
	"time"

	"github.com/Madiyar04/fantasy-league/models"
)

// Внешние представления. Чистые функции проекции: внутренние записи
// (аудит, служебные идентификаторы) наружу не утекают.

type DriverSlotView struct {
	SlotPosition int     `json:"slot_position"`
	DriverID     int     `json:"driver_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	RaceNumber   int     `json:"race_number"`
	Country      string  `json:"country"`
	PhotoURL     *string `json:"photo_url,omitempty"`
}

type ConstructorSlotView struct {
	SlotPosition  int     `json:"slot_position"`
	ConstructorID int     `json:"constructor_id"`
	Name          string  `json:"name"`
	Country       string  `json:"country"`
	LogoURL       *string `json:"logo_url,omitempty"`
}

type TeamView struct {
	ID               int                    `json:"id"`
	Name             string                 `json:"name"`
	OwnerName        string                 `json:"owner_name"`
	LogoURL          *string                `json:"logo_url,omitempty"`
	DriverSlots      []*DriverSlotView      `json:"driver_slots"`
	ConstructorSlots []*ConstructorSlotView `json:"constructor_slots"`
}

type LeagueView struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerName   string    `json:"owner_name"`
	MaxTeams    int       `json:"max_teams"`
	IsPrivate   bool      `json:"is_private"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`

	Members []LeagueMemberView `json:"members,omitempty"`
}

type LeagueMemberView struct {
	TeamID   int       `json:"team_id"`
	TeamName string    `json:"team_name"`
	JoinedAt time.Time `json:"joined_at"`
}

type InviteView struct {
	Token         string    `json:"token"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedByName string    `json:"created_by_name"`
}

// InvitePreview — публичная карточка лиги для страницы приглашения,
// доступная до входа в систему.
type InvitePreview struct {
	LeagueName       string `json:"league_name"`
	Description      string `json:"description,omitempty"`
	OwnerName        string `json:"owner_name"`
	CurrentTeamCount int    `json:"current_team_count"`
	MaxTeams         int    `json:"max_teams"`
	IsLeagueFull     bool   `json:"is_league_full"`
}

type StandingView struct {
	Rank     int    `json:"rank"`
	TeamID   int    `json:"team_id"`
	TeamName string `json:"team_name"`
	Points   int    `json:"points"`
}

// DriverSlotViews возвращает последовательность фиксированной длины
// (DriverSlotCount): занятые позиции заполняются, пустые остаются nil.
func DriverSlotViews(slots []*models.TeamDriverSlot) []*DriverSlotView {
	views := make([]*DriverSlotView, models.DriverSlotCount)
	for _, slot := range slots {
		if slot == nil || slot.SlotPosition < 0 || slot.SlotPosition >= models.DriverSlotCount {
			continue
		}
		view := &DriverSlotView{
			SlotPosition: slot.SlotPosition,
			DriverID:     slot.DriverID,
		}
		if slot.Driver != nil {
			view.FirstName = slot.Driver.FirstName
			view.LastName = slot.Driver.LastName
			view.RaceNumber = slot.Driver.RaceNumber
			view.Country = slot.Driver.Country
			view.PhotoURL = slot.Driver.PhotoURL
		}
		views[slot.SlotPosition] = view
	}
	return views
}

func ConstructorSlotViews(slots []*models.TeamConstructorSlot) []*ConstructorSlotView {
	views := make([]*ConstructorSlotView, models.ConstructorSlotCount)
	for _, slot := range slots {
		if slot == nil || slot.SlotPosition < 0 || slot.SlotPosition >= models.ConstructorSlotCount {
			continue
		}
		view := &ConstructorSlotView{
			SlotPosition:  slot.SlotPosition,
			ConstructorID: slot.ConstructorID,
		}
		if slot.Constructor != nil {
			view.Name = slot.Constructor.Name
			view.Country = slot.Constructor.Country
			view.LogoURL = slot.Constructor.LogoURL
		}
		views[slot.SlotPosition] = view
	}
	return views
}

func NewTeamView(team *models.Team, owner *models.User) *TeamView {
	view := &TeamView{
		ID:               team.ID,
		Name:             team.Name,
		LogoURL:          team.LogoURL,
		DriverSlots:      DriverSlotViews(team.DriverSlots),
		ConstructorSlots: ConstructorSlotViews(team.ConstructorSlots),
	}
	if owner != nil {
		view.OwnerName = FullName(owner.FirstName, owner.LastName)
	}
	return view
}

func NewLeagueView(league *models.League, owner *models.User, memberCount int) *LeagueView {
	view := &LeagueView{
		ID:          league.ID,
		Name:        league.Name,
		Description: derefString(league.Description),
		MaxTeams:    league.MaxTeams,
		IsPrivate:   league.IsPrivate,
		MemberCount: memberCount,
		CreatedAt:   league.CreatedAt,
	}
	if owner != nil {
		view.OwnerName = FullName(owner.FirstName, owner.LastName)
	}
	for _, member := range league.Members {
		memberView := LeagueMemberView{
			TeamID:   member.TeamID,
			JoinedAt: member.JoinedAt,
		}
		if member.Team != nil {
			memberView.TeamName = member.Team.Name
		}
		view.Members = append(view.Members, memberView)
	}
	return view
}

func NewInviteView(invite *models.LeagueInvite, creator *models.User) *InviteView {
	view := &InviteView{
		Token:     invite.Token,
		CreatedAt: invite.CreatedAt,
	}
	if creator != nil {
		view.CreatedByName = FullName(creator.FirstName, creator.LastName)
	}
	return view
}

func NewInvitePreview(league *models.League, owner *models.User, memberCount int) *InvitePreview {
	preview := &InvitePreview{
		LeagueName:       league.Name,
		Description:      derefString(league.Description),
		CurrentTeamCount: memberCount,
		MaxTeams:         league.MaxTeams,
		IsLeagueFull:     memberCount >= league.MaxTeams,
	}
	if owner != nil {
		preview.OwnerName = FullName(owner.FirstName, owner.LastName)
	}
	return preview
}

// StandingViews проставляет плотные ранги: команды с равными очками
// делят место.
func StandingViews(standings []*models.LeagueStanding) []StandingView {
	views := make([]StandingView, 0, len(standings))
	rank := 0
	prevPoints := -1
	for i, standing := range standings {
		if i == 0 || standing.Points != prevPoints {
			rank++
		}
		prevPoints = standing.Points
		view := StandingView{
			Rank:   rank,
			TeamID: standing.TeamID,
			Points: standing.Points,
		}
		if standing.Team != nil {
			view.TeamName = standing.Team.Name
		}
		views = append(views, view)
	}
	return views
}
