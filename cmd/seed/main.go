package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"boxoffice/internal/editor"
	"boxoffice/internal/events"
	"boxoffice/internal/seatmap"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/logger"

	"github.com/joho/godotenv"
)

type Seeder struct {
	db     *database.DB
	events events.Service
}

// sectorSpec is one sector of a seeded venue
type sectorSpec struct {
	name        string
	price       float64
	rows        int
	seatsPerRow int
	columns     int
	// sold seat indexes in the first row
	sold []int
}

type eventSpec struct {
	name    string
	venue   string
	startIn time.Duration
	sectors []sectorSpec
}

var seedEvents = []eventSpec{
	{
		name:    "Symphony Under the Stars",
		venue:   "Riverside Amphitheatre",
		startIn: 21 * 24 * time.Hour,
		sectors: []sectorSpec{
			{name: "VIP", price: 350, rows: 2, seatsPerRow: 5, columns: 1, sold: []int{0, 1}},
			{name: "Platea", price: 120, rows: 6, seatsPerRow: 12, columns: 2},
			{name: "Balcony", price: 60, rows: 4, seatsPerRow: 16, columns: 2, sold: []int{7}},
		},
	},
	{
		name:    "Indie Night",
		venue:   "The Warehouse",
		startIn: 45 * 24 * time.Hour,
		sectors: []sectorSpec{
			{name: "Front", price: 80, rows: 3, seatsPerRow: 10, columns: 2},
			{name: "General", price: 40, rows: 8, seatsPerRow: 14, columns: 2},
		},
	},
}

func main() {
	fmt.Println("🌱 Starting Box Office Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()
	appLogger := logger.New(logger.Options{Level: cfg.LogLevel})
	logger.SetDefault(appLogger)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{
		db:     db,
		events: events.NewService(events.NewRepository(db.GetPostgreSQL()), cache.NewService(db.GetRedisClient(), appLogger), appLogger),
	}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\n🌱 Seeding events...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Seat maps are ready for the storefront.")
}

// CleanDatabase removes every event; seat maps live on the event rows
func (s *Seeder) CleanDatabase() error {
	if err := s.db.GetPostgreSQL().Exec("TRUNCATE TABLE events CASCADE").Error; err != nil {
		return fmt.Errorf("failed to truncate events: %w", err)
	}
	return nil
}

func (s *Seeder) SeedAll(ctx context.Context) error {
	for _, ev := range seedEvents {
		event, err := s.events.CreateEvent(ctx, "seeder", events.CreateEventRequest{
			Name:     ev.name,
			Venue:    ev.venue,
			StartsAt: time.Now().Add(ev.startIn).Truncate(time.Hour),
			Status:   "published",
		})
		if err != nil {
			return fmt.Errorf("failed to create %q: %w", ev.name, err)
		}

		e, err := authorSeatMap(ev.sectors)
		if err != nil {
			return fmt.Errorf("failed to author seat map for %q: %w", ev.name, err)
		}
		update, err := e.Save(ctx, s.events, event.ID)
		if err != nil {
			return fmt.Errorf("failed to save seat map for %q: %w", ev.name, err)
		}

		fmt.Printf("✅ %s (%s)\n", ev.name, event.ID)
		for _, sector := range update.Sectores {
			fmt.Printf("   %-8s %4d seats, %4d available, $%.2f\n", sector.Nombre, sector.Total, sector.Disponible, sector.Precio)
		}
	}
	return nil
}

// authorSeatMap builds a venue the same way an operator would in the studio
func authorSeatMap(sectors []sectorSpec) (*editor.Editor, error) {
	e := editor.New()
	for i, sector := range sectors {
		if err := e.StartSector(i); err != nil {
			return nil, err
		}
		name, price := sector.name, sector.price
		if err := e.UpdateDraft(editor.DraftPatch{Name: &name, Price: &price}); err != nil {
			return nil, err
		}
		rows, err := e.GenerateRows(sector.rows, sector.seatsPerRow, sector.columns)
		if err != nil {
			return nil, err
		}
		if _, err := e.CommitSector(); err != nil {
			return nil, err
		}
		for _, idx := range sector.sold {
			if _, err := e.SetSpecialSeat(rows[0].ID, idx, editor.SpecialSeatPatch{Status: seatmap.SpecialSold}); err != nil {
				return nil, err
			}
		}
	}
	return e, nil
}
