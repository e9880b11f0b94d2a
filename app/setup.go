package app

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/studentportal/portal-api/api"
	"github.com/studentportal/portal-api/config"
	"github.com/studentportal/portal-api/database"
	"github.com/studentportal/portal-api/router"
	"github.com/studentportal/portal-api/services/cron"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running and reachable")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Failed to run database migrations")
		return err
	}

	// Seed the admin user, subject catalog and chat channels unless
	// disabled.
	if os.Getenv("SEED_ON_STARTUP") != "false" {
		seeder := database.NewSeeder(store.GetDB())
		if err := seeder.SeedAll(); err != nil {
			log.Printf("Warning: seeding failed: %v", err)
		}
	}

	// Background jobs (token cleanup, stale approval report)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		cronManager = cron.NewCronManager(store.GetDB())
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: failed to start cron jobs: %v", err)
		}
	}

	// Defer closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, store)

	return server.Run()
}
