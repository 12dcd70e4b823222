package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"venueledger/internal/events"
	"venueledger/internal/shared/config"
	"venueledger/internal/shared/database"
	"venueledger/internal/tables"
	"venueledger/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

type Seeder struct {
	db  *database.DB
	loc *time.Location
}

func main() {
	fmt.Println("🌱 Starting venue ledger seeder...")

	_ = godotenv.Load()

	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := config.LoadWithFile(path)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
		cfg = fileCfg
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, loc: cfg.Venue.Location()}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")
}

// CleanDatabase truncates every ledger table, children first
func (s *Seeder) CleanDatabase() error {
	tableNames := []string{
		"day_closures",
		"fnb_orders",
		"seating_sessions",
		"reservation_tables",
		"reservations",
		"venue_tables",
		"ticket_checkins",
		"ticket_codes",
		"ticket_order_items",
		"ticket_orders",
		"events",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tableNames {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedEvents(userIDs["admin"]); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	if err := s.SeedTables(); err != nil {
		return fmt.Errorf("failed to seed tables: %w", err)
	}

	// cached event pages would point at truncated rows
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates one account per role
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// every seeded account uses "qwerty"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Venue", "Manager", "admin@venue.test", users.RoleAdmin},
		{"staff", "Floor", "Staff", "staff@venue.test", users.RoleStaff},
		{"customer", "Jamie", "Guest", "guest@venue.test", users.RoleCustomer},
	}

	for _, userData := range usersData {
		user := users.User{
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedEvents creates a week of evening shows starting today
func (s *Seeder) SeedEvents(adminID uuid.UUID) error {
	fmt.Println("  🎷 Seeding events...")

	today := time.Now().In(s.loc)
	eventsData := []struct {
		name     string
		prefix   string
		price    int64
		capacity int
		dayShift int
	}{
		{"Friday Jazz Night", "JAZ", 500, 120, 0},
		{"Rock Bar Live", "RBX", 350, 0, 1},
		{"Sunday Acoustic", "ACO", 250, 60, 2},
	}

	for _, ev := range eventsData {
		day := today.AddDate(0, 0, ev.dayShift)
		startsAt := time.Date(day.Year(), day.Month(), day.Day(), 20, 0, 0, 0, s.loc)

		event := events.Event{
			Name:             ev.name,
			StartsAt:         startsAt.UTC(),
			TicketPrice:      decimal.NewFromInt(ev.price),
			TicketCodePrefix: ev.prefix,
			Capacity:         ev.capacity,
			CreatedBy:        &adminID,
			UpdatedBy:        &adminID,
		}
		if err := s.db.PostgreSQL.Omit(clause.Associations).Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", ev.name, err)
		}
		fmt.Printf("    ✅ Created event: %s (%s, %s)\n", event.Name, event.TicketCodePrefix, startsAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// SeedTables lays out the floor plan
func (s *Seeder) SeedTables() error {
	fmt.Println("  🪑 Seeding tables...")

	for i := 1; i <= 8; i++ {
		capacity := 2
		switch {
		case i > 6:
			capacity = 8
		case i > 3:
			capacity = 4
		}

		table := tables.Table{
			Name:     fmt.Sprintf("T%d", i),
			Capacity: capacity,
			IsActive: true,
		}
		if err := s.db.PostgreSQL.Create(&table).Error; err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.Name, err)
		}
		fmt.Printf("    ✅ Created table: %s (seats %d)\n", table.Name, table.Capacity)
	}

	return nil
}
