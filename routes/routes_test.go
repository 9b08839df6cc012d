package routes

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cabanas/config"
)

func hasRoute(app *fiber.App, method, path string) bool {
	for _, stack := range app.Stack() {
		for _, route := range stack {
			if route.Method == method && route.Path == path {
				return true
			}
		}
	}
	return false
}

func TestClientFacingPaths(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	config.DB = db

	app := fiber.New()
	SetupRoutes(app, db)

	want := []struct {
		method string
		path   string
	}{
		{fiber.MethodPost, "/auth/login"},
		{fiber.MethodPost, "/auth/refresh"},
		{fiber.MethodGet, "/public/cabanas/:slug"},
		{fiber.MethodPost, "/payment/webhook"},
		{fiber.MethodGet, "/api/v1/reservas/check-availability"},
		{fiber.MethodPost, "/api/v1/reservas/:id/pagar"},
		{fiber.MethodPost, "/api/v1/reservas/:id/cancel"},
	}
	for _, w := range want {
		if !hasRoute(app, w.method, w.path) {
			t.Errorf("route %s %s is not registered", w.method, w.path)
		}
	}

	if hasRoute(app, fiber.MethodGet, "/api/v1/reservas/availability") {
		t.Error("availability check must live at /check-availability")
	}
}
