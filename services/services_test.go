package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cabanas/config"
	"cabanas/models"
	"cabanas/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleClient,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

func createTestTeamWithAdmin(t *testing.T, db *gorm.DB, admin *models.User) *models.Team {
	t.Helper()

	team, err := CreateTeam(db, admin.ID, "Equipo Bosque", "")
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	return team
}

func createTestCabin(t *testing.T, db *gorm.DB, teamID uint, name string, priceCents int64) *models.Cabin {
	t.Helper()

	cabin := models.Cabin{
		TeamID:             teamID,
		Name:               name,
		Slug:               utils.Slugify(name),
		Capacity:           4,
		PricePerNightCents: priceCents,
		State:              models.CabinAvailable,
	}
	if err := db.Create(&cabin).Error; err != nil {
		t.Fatalf("failed to create cabin %s: %v", name, err)
	}
	return &cabin
}

func date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}
