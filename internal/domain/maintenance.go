package domain

import "time"

type MaintenanceType string

const (
	MaintenanceRenovation MaintenanceType = "renovation"
	MaintenanceRepair     MaintenanceType = "repair"
	MaintenanceInspection MaintenanceType = "inspection"
)

// Blocking reports whether an open window of this type takes the room
// out of sellable inventory.
func (t MaintenanceType) Blocking() bool {
	return t == MaintenanceRenovation || t == MaintenanceRepair
}

type MaintenanceLog struct {
	ID          int64           `json:"id"`
	RoomID      int64           `json:"room_id"`
	Type        MaintenanceType `json:"type"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
	IsCompleted bool            `json:"is_completed"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BlocksRange reports whether this window keeps the room out of
// inventory for any date in [from, to). An open-ended window blocks
// everything from its start onward.
func (m *MaintenanceLog) BlocksRange(from, to time.Time) bool {
	if m.IsCompleted || !m.Type.Blocking() {
		return false
	}
	if m.EndTime == nil {
		return m.StartTime.Before(to)
	}
	return m.StartTime.Before(to) && from.Before(*m.EndTime)
}
