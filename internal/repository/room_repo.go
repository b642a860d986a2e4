package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"innkeeper/internal/domain"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func toDomainRoom(m roomModel) (*domain.Room, error) {
	room := &domain.Room{
		ID:           m.ID,
		RoomNumber:   m.RoomNumber,
		RoomTypeID:   m.RoomTypeID,
		Status:       domain.RoomStatus(m.Status),
		Floor:        m.Floor,
		MaxOccupancy: m.MaxOccupancy,
		BedCount:     m.BedCount,
		BasePrice:    m.BasePrice,
		Smoking:      m.Smoking,
		PetFriendly:  m.PetFriendly,
		Accessible:   m.Accessible,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	if len(m.SeasonalPricing) > 0 {
		if err := json.Unmarshal(m.SeasonalPricing, &room.SeasonalPricing); err != nil {
			return nil, err
		}
	}
	if len(m.Names) > 0 {
		if err := json.Unmarshal(m.Names, &room.Names); err != nil {
			return nil, err
		}
	}
	if len(m.Descriptions) > 0 {
		if err := json.Unmarshal(m.Descriptions, &room.Descriptions); err != nil {
			return nil, err
		}
	}
	return room, nil
}

func toRoomModel(r *domain.Room) (roomModel, error) {
	m := roomModel{
		ID:           r.ID,
		RoomNumber:   r.RoomNumber,
		RoomTypeID:   r.RoomTypeID,
		Status:       string(r.Status),
		Floor:        r.Floor,
		MaxOccupancy: r.MaxOccupancy,
		BedCount:     r.BedCount,
		BasePrice:    r.BasePrice,
		Smoking:      r.Smoking,
		PetFriendly:  r.PetFriendly,
		Accessible:   r.Accessible,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}

	var err error
	if len(r.SeasonalPricing) > 0 {
		if m.SeasonalPricing, err = json.Marshal(r.SeasonalPricing); err != nil {
			return m, err
		}
	}
	if len(r.Names) > 0 {
		if m.Names, err = json.Marshal(r.Names); err != nil {
			return m, err
		}
	}
	if len(r.Descriptions) > 0 {
		if m.Descriptions, err = json.Marshal(r.Descriptions); err != nil {
			return m, err
		}
	}
	return m, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m, err := toRoomModel(room)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	room.ID = m.ID
	room.CreatedAt = m.CreatedAt
	room.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "room", ID: strconv.FormatInt(id, 10)}
		}
		return nil, err
	}
	return toDomainRoom(m)
}

func (r *RoomRepository) GetByNumber(ctx context.Context, number string) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, "room_number = ?", number).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "room", ID: number}
		}
		return nil, err
	}
	return toDomainRoom(m)
}

func (r *RoomRepository) ListActiveByType(ctx context.Context, roomTypeID int64) ([]domain.Room, error) {
	var ms []roomModel
	err := r.db.WithContext(ctx).
		Where("room_type_id = ? AND is_active = ?", roomTypeID, true).
		Order("room_number").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Room, 0, len(ms))
	for _, m := range ms {
		room, err := toDomainRoom(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, nil
}

func (r *RoomRepository) GetType(ctx context.Context, id int64) (*domain.RoomType, error) {
	var m roomTypeModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "room type", ID: strconv.FormatInt(id, 10)}
		}
		return nil, err
	}
	rt := &domain.RoomType{
		ID:           m.ID,
		Code:         m.Code,
		MaxOccupancy: m.MaxOccupancy,
		BasePrice:    m.BasePrice,
		IsActive:     m.IsActive,
	}
	if len(m.SeasonalPricing) > 0 {
		if err := json.Unmarshal(m.SeasonalPricing, &rt.SeasonalPricing); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (r *RoomRepository) CreateType(ctx context.Context, t *domain.RoomType) error {
	m := roomTypeModel{
		ID:           t.ID,
		Code:         t.Code,
		MaxOccupancy: t.MaxOccupancy,
		BasePrice:    t.BasePrice,
		IsActive:     t.IsActive,
	}
	if len(t.SeasonalPricing) > 0 {
		var err error
		if m.SeasonalPricing, err = json.Marshal(t.SeasonalPricing); err != nil {
			return err
		}
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	t.ID = m.ID
	return nil
}

func (r *RoomRepository) UpdateStatus(ctx context.Context, roomID int64, status domain.RoomStatus) error {
	return r.db.WithContext(ctx).Model(&roomModel{}).
		Where("id = ?", roomID).
		Update("status", string(status)).Error
}

func (r *RoomRepository) UpdateStatuses(ctx context.Context, roomIDs []int64, status domain.RoomStatus) error {
	if len(roomIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&roomModel{}).
		Where("id IN ?", roomIDs).
		Update("status", string(status)).Error
}

// BasePriceByID returns the nightly base price for a single room.
func (r *RoomRepository) BasePriceByID(ctx context.Context, id int64) (decimal.Decimal, error) {
	room, err := r.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return room.BasePrice, nil
}
