package models

import "time"

// LeagueInvite — единственное живое приглашение лиги. Токен уникален
// глобально, league_id уникален среди живых приглашений: выдача токена
// идемпотентна для лиги.
type LeagueInvite struct {
	ID        int       `json:"id" db:"id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	Token     string    `json:"-" db:"token"`
	CreatedBy int       `json:"-" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	League *League `json:"league,omitempty" db:"-"`
}
