package models

import "time"

// LeagueStanding — накопленные очки команды в рамках лиги.
type LeagueStanding struct {
	ID        int       `json:"id" db:"id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Points    int       `json:"points" db:"points"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
