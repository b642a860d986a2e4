package repository

import (
	"context"
	"strconv"
	"time"

	"gorm.io/gorm"

	"innkeeper/internal/domain"
)

var blockingMaintenanceTypes = []string{
	string(domain.MaintenanceRenovation),
	string(domain.MaintenanceRepair),
}

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func toDomainMaintenance(m maintenanceLogModel) domain.MaintenanceLog {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}
	return domain.MaintenanceLog{
		ID:          m.ID,
		RoomID:      m.RoomID,
		Type:        domain.MaintenanceType(m.Type),
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		IsCompleted: m.IsCompleted,
		Notes:       notes,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *MaintenanceRepository) Create(ctx context.Context, log *domain.MaintenanceLog) error {
	var notes *string
	if log.Notes != "" {
		v := log.Notes
		notes = &v
	}
	m := maintenanceLogModel{
		RoomID:      log.RoomID,
		Type:        string(log.Type),
		StartTime:   log.StartTime,
		EndTime:     log.EndTime,
		IsCompleted: log.IsCompleted,
		Notes:       notes,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	log.ID = m.ID
	log.CreatedAt = m.CreatedAt
	return nil
}

func (r *MaintenanceRepository) Complete(ctx context.Context, id int64, endTime time.Time) error {
	res := r.db.WithContext(ctx).Model(&maintenanceLogModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_completed": true, "end_time": endTime})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "maintenance log", ID: strconv.FormatInt(id, 10)}
	}
	return nil
}

// HasBlockingWindow reports whether the room has an open blocking
// maintenance window overlapping [from, to).
func (r *MaintenanceRepository) HasBlockingWindow(ctx context.Context, roomID int64, from, to time.Time) (bool, error) {
	var cnt int64
	q := `
SELECT COUNT(1)
FROM maintenance_logs
WHERE room_id = ?
  AND is_completed = ?
  AND type IN (?, ?)
  AND start_time < ?
  AND (end_time IS NULL OR end_time > ?)
`
	err := r.db.WithContext(ctx).
		Raw(q, roomID, false, blockingMaintenanceTypes[0], blockingMaintenanceTypes[1], to, from).
		Scan(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// BlockedRoomIDs lists rooms of a type with an open blocking window
// overlapping [from, to).
func (r *MaintenanceRepository) BlockedRoomIDs(ctx context.Context, roomTypeID int64, from, to time.Time) ([]int64, error) {
	var ids []int64
	q := `
SELECT DISTINCT ml.room_id
FROM maintenance_logs ml
JOIN rooms r ON r.id = ml.room_id
WHERE r.room_type_id = ?
  AND ml.is_completed = ?
  AND ml.type IN (?, ?)
  AND ml.start_time < ?
  AND (ml.end_time IS NULL OR ml.end_time > ?)
`
	err := r.db.WithContext(ctx).
		Raw(q, roomTypeID, false, blockingMaintenanceTypes[0], blockingMaintenanceTypes[1], to, from).
		Scan(&ids).Error
	return ids, err
}

func (r *MaintenanceRepository) ListForRoom(ctx context.Context, roomID int64) ([]domain.MaintenanceLog, error) {
	var ms []maintenanceLogModel
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("start_time DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.MaintenanceLog, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomainMaintenance(m))
	}
	return out, nil
}
