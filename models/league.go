package models

import "time"

const DefaultLeagueMaxTeams = 15

type League struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	OwnerID     int     `json:"owner_id" db:"owner_id"`
	MaxTeams    int     `json:"max_teams" db:"max_teams"`
	IsPrivate   bool    `json:"is_private" db:"is_private"`
	AuditFields

	Owner   *User         `json:"owner,omitempty" db:"-"`
	Members []*LeagueTeam `json:"members,omitempty" db:"-"`
}

// LeagueTeam — членство команды в лиге. Пара (league_id, team_id)
// уникальна: команда вступает в лигу не более одного раза.
type LeagueTeam struct {
	ID       int       `json:"id" db:"id"`
	LeagueID int       `json:"league_id" db:"league_id"`
	TeamID   int       `json:"team_id" db:"team_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
