package models

import "time"

// Размеры состава фиксированы: пять пилотов (позиции 0–4) и два
// конструктора (позиции 0–1).
const (
	DriverSlotCount      = 5
	ConstructorSlotCount = 2
)

// TeamDriverSlot связывает команду с пилотом на конкретной позиции.
// Инварианты: (team_id, slot_position) уникальна, (team_id, driver_id)
// уникальна. Запись не изменяется на месте — только удаление и
// повторное добавление.
type TeamDriverSlot struct {
	ID           int       `json:"id" db:"id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	DriverID     int       `json:"driver_id" db:"driver_id"`
	SlotPosition int       `json:"slot_position" db:"slot_position"`
	CreatedBy    *int      `json:"-" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Driver *Driver `json:"driver,omitempty" db:"-"`
}

type TeamConstructorSlot struct {
	ID            int       `json:"id" db:"id"`
	TeamID        int       `json:"team_id" db:"team_id"`
	ConstructorID int       `json:"constructor_id" db:"constructor_id"`
	SlotPosition  int       `json:"slot_position" db:"slot_position"`
	CreatedBy     *int      `json:"-" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Constructor *Constructor `json:"constructor,omitempty" db:"-"`
}
