package middleware

import (
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	dbName := os.Getenv("TEST_DB_NAME")
	if dbName == "" {
		dbName = "portal_test"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, os.Getenv("DB_USER_NAME"), os.Getenv("DB_PASSWORD"), dbName, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.AdminAuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := session.Unscoped().Delete(&model.AdminAuditLog{}).Error; err != nil {
		t.Fatalf("failed to clean audit logs: %v", err)
	}
	if err := session.Unscoped().Delete(&model.User{}).Error; err != nil {
		t.Fatalf("failed to clean users: %v", err)
	}

	return db
}

func TestAdminAuditLogSnapshots(t *testing.T) {
	db := setupAuditTestDB(t)

	admin := &model.User{
		FullName:     "Audit Admin",
		Email:        "audit-admin@example.com",
		PasswordHash: "x",
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	target := &model.User{
		FullName:     "Audited Student",
		Email:        "audited-student@example.com",
		PasswordHash: "x",
		Role:         model.RoleStudent,
		Status:       model.StatusActive,
	}
	if err := db.Create(target).Error; err != nil {
		t.Fatalf("failed to create target user: %v", err)
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("adminUser", admin)
		return c.Next()
	})
	app.Patch("/users/:id", AdminAuditLog(db, "update", "user"), func(c *fiber.Ctx) error {
		return db.Model(&model.User{}).Where("id = ?", c.Params("id")).
			Update("status", model.StatusBlocked).Error
	})

	req := httptest.NewRequest(fiber.MethodPatch,
		fmt.Sprintf("/users/%d", target.ID),
		strings.NewReader(`{"status":"blocked"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var entry model.AdminAuditLog
	if err := db.Where("resource = ? AND resource_id = ?", "user", target.ID).
		First(&entry).Error; err != nil {
		t.Fatalf("audit entry not recorded: %v", err)
	}

	if entry.AdminID != admin.ID {
		t.Errorf("expected admin %d, got %d", admin.ID, entry.AdminID)
	}
	if len(entry.NewValue) == 0 {
		t.Fatal("expected new_value snapshot, got null")
	}
	if !strings.Contains(string(entry.NewValue), "blocked") {
		t.Errorf("new_value missing submitted change: %s", entry.NewValue)
	}
	if len(entry.OldValue) == 0 {
		t.Fatal("expected old_value snapshot, got null")
	}
	if !strings.Contains(string(entry.OldValue), "audited-student@example.com") {
		t.Errorf("old_value missing pre-update state: %s", entry.OldValue)
	}
	if !strings.Contains(string(entry.OldValue), string(model.StatusActive)) {
		t.Errorf("old_value should show the status before the update: %s", entry.OldValue)
	}
}
