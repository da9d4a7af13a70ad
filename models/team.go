package models

// Team — фэнтези-команда. У каждого пользователя ровно одна команда
// (уникальный owner_id).
type Team struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	OwnerID int    `json:"owner_id" db:"owner_id"`
	AuditFields

	Owner            *User                  `json:"owner,omitempty" db:"-"`
	DriverSlots      []*TeamDriverSlot      `json:"driver_slots,omitempty" db:"-"`
	ConstructorSlots []*TeamConstructorSlot `json:"constructor_slots,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
