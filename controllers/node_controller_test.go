package controller

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cabanas/config"
	"cabanas/models"
	"cabanas/services"
)

func newControllerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newNodeTestApp(db *gorm.DB, user *models.User) *fiber.App {
	nc := NewNodeController(db, log.New(os.Stdout, "NODE: ", log.LstdFlags))
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})
	app.Get("/nodes/roots", nc.GetRootNodes)
	return app
}

func TestGetRootNodesListsSharedEntryPoints(t *testing.T) {
	db := newControllerTestDB(t)

	owner := models.User{Email: "owner@example.com", PasswordHash: "x", IsActive: true}
	reader := models.User{Email: "reader@example.com", PasswordHash: "x", IsActive: true}
	for _, u := range []*models.User{&owner, &reader} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	root, err := services.CreateNode(db, owner.ID, nil, models.NodePage, "Manual", "", nil)
	if err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	shared, err := services.CreateNode(db, owner.ID, &root.ID, models.NodePage, "Compartido", "", nil)
	if err != nil {
		t.Fatalf("failed to create shared node: %v", err)
	}
	if _, err := services.CreateNode(db, owner.ID, &shared.ID, models.NodeText, "", "Detalle", nil); err != nil {
		t.Fatalf("failed to create grandchild: %v", err)
	}
	mine, err := services.CreateNode(db, reader.ID, nil, models.NodePage, "Propio", "", nil)
	if err != nil {
		t.Fatalf("failed to create own root: %v", err)
	}

	// The reader is granted the mid-tree node only
	grant := models.NodePermission{NodeID: shared.ID, UserID: reader.ID, Permission: models.PermissionRead}
	if err := db.Create(&grant).Error; err != nil {
		t.Fatalf("failed to grant read: %v", err)
	}

	app := newNodeTestApp(db, &reader)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/nodes/roots", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	var body struct {
		Data struct {
			Own    []models.Node `json:"own"`
			Shared []models.Node `json:"shared"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if len(body.Data.Own) != 1 || body.Data.Own[0].ID != mine.ID {
		t.Errorf("own listing = %+v, want just node %d", body.Data.Own, mine.ID)
	}

	// Only the granted node appears; its parent and children stay out
	if len(body.Data.Shared) != 1 {
		t.Fatalf("shared listing has %d nodes, want 1", len(body.Data.Shared))
	}
	if body.Data.Shared[0].ID != shared.ID {
		t.Errorf("shared entry id = %d, want %d", body.Data.Shared[0].ID, shared.ID)
	}
}
