package models

import "time"

// AuditFields — общие поля аудита и мягкого удаления.
// Встраивается в пользовательские сущности (Team, League) по композиции,
// вместо иерархии базовых типов.
type AuditFields struct {
	CreatedBy *int       `json:"-" db:"created_by"`
	UpdatedBy *int       `json:"-" db:"updated_by"`
	DeletedBy *int       `json:"-" db:"deleted_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
	IsDeleted bool       `json:"-" db:"is_deleted"`
}

// StampCreated проставляет метки создания от имени пользователя.
func (a *AuditFields) StampCreated(userID int, now time.Time) {
	a.CreatedBy = &userID
	a.UpdatedBy = &userID
	a.CreatedAt = now
	a.UpdatedAt = now
}

// StampUpdated проставляет метки обновления.
func (a *AuditFields) StampUpdated(userID int, now time.Time) {
	a.UpdatedBy = &userID
	a.UpdatedAt = now
}

// StampDeleted помечает запись удалённой (мягкое удаление).
func (a *AuditFields) StampDeleted(userID int, now time.Time) {
	a.DeletedBy = &userID
	a.DeletedAt = &now
	a.IsDeleted = true
}
