package main

import (
	"log"

	"github.com/studentportal/portal-api/config"
	"github.com/studentportal/portal-api/database"
)

// Standalone seeder for environments where SEED_ON_STARTUP is
// disabled.
func main() {
	if err := config.LoadENV(); err != nil {
		log.Printf("Warning: could not load .env: %v", err)
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	seeder := database.NewSeeder(store.GetDB())
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
