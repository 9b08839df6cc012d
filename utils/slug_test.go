package utils

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cabanas/models"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cabaña del Lago", "cabana-del-lago"},
		{"  El   Refugio  ", "el-refugio"},
		{"Árbol & Niño", "arbol-nino"},
		{"MAYÚSCULAS", "mayusculas"},
		{"ya-es-slug", "ya-es-slug"},
		{"123 Cabañas!", "123-cabanas"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniqueSlugCollisionSuffix(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Store{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	for i, want := range []string{"tienda-bosque", "tienda-bosque-1", "tienda-bosque-2"} {
		slug, err := UniqueSlug(db, &models.Store{}, "Tienda Bosque")
		if err != nil {
			t.Fatalf("UniqueSlug failed: %v", err)
		}
		if slug != want {
			t.Fatalf("slug %d = %q, want %q", i, slug, want)
		}
		store := models.Store{OwnerID: 1, Name: "Tienda Bosque", Slug: slug}
		if err := db.Create(&store).Error; err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
	}
}

func TestUniqueSlugEmptyName(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Store{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	slug, err := UniqueSlug(db, &models.Store{}, "¡¡¡")
	if err != nil {
		t.Fatalf("UniqueSlug failed: %v", err)
	}
	if slug != "item" {
		t.Errorf("slug for unsluggable name = %q, want %q", slug, "item")
	}
}
