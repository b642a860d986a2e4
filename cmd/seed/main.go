package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"innkeeper/internal/database"
	"innkeeper/internal/domain"
	"innkeeper/internal/repository"
)

// Seeds a local database with a small property: three room types and a
// dozen rooms, plus one maintenance window to exercise the blocking
// rules.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "innkeeper.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM gateway_events")
	db.Exec("DELETE FROM refunds")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM room_nights")
	db.Exec("DELETE FROM booking_rooms")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM booking_sequences")
	db.Exec("DELETE FROM maintenance_logs")
	db.Exec("DELETE FROM rooms")
	db.Exec("DELETE FROM room_types")

	ctx := context.Background()
	roomRepo := repository.NewRoomRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	summer := decimal.NewFromFloat(1.25)
	winter := decimal.NewFromFloat(0.9)
	seasonal := map[string]decimal.Decimal{
		"summer": summer,
		"winter": winter,
	}

	log.Println("Creating room types...")
	types := []*domain.RoomType{
		{Code: "STD", MaxOccupancy: 2, BasePrice: decimal.NewFromInt(1000), SeasonalPricing: seasonal, IsActive: true},
		{Code: "DLX", MaxOccupancy: 3, BasePrice: decimal.NewFromInt(1600), SeasonalPricing: seasonal, IsActive: true},
		{Code: "STE", MaxOccupancy: 4, BasePrice: decimal.NewFromInt(2800), SeasonalPricing: seasonal, IsActive: true},
	}
	for _, t := range types {
		if err := roomRepo.CreateType(ctx, t); err != nil {
			log.Fatal("room type seed failed:", err)
		}
	}

	log.Println("Creating rooms...")
	for floor := 1; floor <= 4; floor++ {
		for i := 1; i <= 3; i++ {
			t := types[(floor+i)%len(types)]
			room := &domain.Room{
				RoomNumber:      fmt.Sprintf("%d%02d", floor, i),
				RoomTypeID:      t.ID,
				Status:          domain.RoomAvailable,
				Floor:           floor,
				MaxOccupancy:    t.MaxOccupancy,
				BedCount:        (t.MaxOccupancy + 1) / 2,
				BasePrice:       t.BasePrice,
				SeasonalPricing: seasonal,
				PetFriendly:     floor == 1,
				Accessible:      floor == 1,
				Names: map[string]string{
					"en": fmt.Sprintf("Room %d%02d", floor, i),
					"de": fmt.Sprintf("Zimmer %d%02d", floor, i),
				},
				Descriptions: map[string]string{
					"en": fmt.Sprintf("%s room on floor %d", t.Code, floor),
				},
				IsActive: true,
			}
			if err := roomRepo.Create(ctx, room); err != nil {
				log.Fatal("room seed failed:", err)
			}
		}
	}

	log.Println("Creating maintenance window...")
	var firstRoom domain.Room
	rooms, err := roomRepo.ListActiveByType(ctx, types[0].ID)
	if err != nil || len(rooms) == 0 {
		log.Fatal("no seeded rooms found")
	}
	firstRoom = rooms[0]

	start := time.Now().AddDate(0, 0, 7)
	end := start.AddDate(0, 0, 3)
	if err := maintenanceRepo.Create(ctx, &domain.MaintenanceLog{
		RoomID:    firstRoom.ID,
		Type:      domain.MaintenanceRenovation,
		Notes:     "Bathroom renovation",
		StartTime: start,
		EndTime:   &end,
	}); err != nil {
		log.Fatal("maintenance seed failed:", err)
	}

	log.Println("Seed completed")
	log.Printf("Room types: STD (1000), DLX (1600), STE (2800); 12 rooms on 4 floors")
	log.Printf("Room %s under renovation %s..%s", firstRoom.RoomNumber,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
}
