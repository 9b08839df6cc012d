package utils

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cabanas/config"
	"cabanas/models"
)

func newAuthTestDB(t *testing.T) *gorm.DB {
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

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.EncryptionKey = "test-signing-key"

	user := &models.User{TokenVersion: 3}
	user.ID = 42

	access, refresh, err := GenerateJWTToken(user)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("tokens must not be empty")
	}

	claims, err := ParseJWTToken(access)
	if err != nil {
		t.Fatalf("failed to parse access token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("token version = %d, want 3", claims.TokenVersion)
	}
}

func TestParseJWTTokenRejectsWrongKey(t *testing.T) {
	config.AppConfig.EncryptionKey = "key-one"

	user := &models.User{}
	user.ID = 1
	access, _, err := GenerateJWTToken(user)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}

	config.AppConfig.EncryptionKey = "key-two"
	if _, err := ParseJWTToken(access); err == nil {
		t.Error("token signed with a different key must not validate")
	}
}

func TestParseJWTTokenRejectsGarbage(t *testing.T) {
	config.AppConfig.EncryptionKey = "test-signing-key"

	if _, err := ParseJWTToken("not-a-token"); err == nil {
		t.Error("garbage input must not validate")
	}
}

func TestIssueTokensPersistsRefreshToken(t *testing.T) {
	config.DB = newAuthTestDB(t)
	config.AppConfig.EncryptionKey = "test-signing-key"

	user := models.User{Email: "issue@example.com", PasswordHash: "x", IsActive: true}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, refresh, err := IssueTokens(&user, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("failed to issue tokens: %v", err)
	}

	var stored models.RefreshToken
	if err := config.DB.Where("token = ?", refresh).First(&stored).Error; err != nil {
		t.Fatalf("refresh token was not persisted: %v", err)
	}
	if stored.UserID != user.ID {
		t.Errorf("stored user id = %d, want %d", stored.UserID, user.ID)
	}
	if stored.UserAgent != "test-agent" || stored.IPAddress != "127.0.0.1" {
		t.Errorf("stored client info = (%q, %q), want (test-agent, 127.0.0.1)",
			stored.UserAgent, stored.IPAddress)
	}
	if stored.RevokedAt != nil {
		t.Error("fresh refresh token must not be revoked")
	}
}

func TestRefreshTokensRotatesStoredToken(t *testing.T) {
	config.DB = newAuthTestDB(t)
	config.AppConfig.EncryptionKey = "test-signing-key"

	user := models.User{Email: "rotate@example.com", PasswordHash: "x", IsActive: true}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, refresh, err := IssueTokens(&user, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("failed to issue tokens: %v", err)
	}

	access2, refresh2, err := RefreshTokens(refresh, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}
	if access2 == "" || refresh2 == "" {
		t.Fatal("refreshed tokens must not be empty")
	}
	if refresh2 == refresh {
		t.Error("rotation must mint a new refresh token")
	}

	// The presented token is spent; replaying it fails
	if _, _, err := RefreshTokens(refresh, "test-agent", "127.0.0.1"); err == nil {
		t.Error("a rotated refresh token must not be accepted twice")
	}

	var old models.RefreshToken
	if err := config.DB.Where("token = ?", refresh).First(&old).Error; err != nil {
		t.Fatalf("failed to load old token: %v", err)
	}
	if old.RevokedAt == nil {
		t.Error("rotated refresh token must be marked revoked")
	}
}

func TestRefreshTokensRejectsUnknownToken(t *testing.T) {
	config.DB = newAuthTestDB(t)
	config.AppConfig.EncryptionKey = "test-signing-key"

	user := models.User{Email: "unknown@example.com", PasswordHash: "x", IsActive: true}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	// A valid signature is not enough: the token must also be on record
	_, refresh, err := GenerateJWTToken(&user)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}
	if _, _, err := RefreshTokens(refresh, "test-agent", "127.0.0.1"); err == nil {
		t.Error("an unrecorded refresh token must not be accepted")
	}
}

func TestRevokeUserRefreshTokens(t *testing.T) {
	config.DB = newAuthTestDB(t)
	config.AppConfig.EncryptionKey = "test-signing-key"

	user := models.User{Email: "revoke@example.com", PasswordHash: "x", IsActive: true}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, refresh, err := IssueTokens(&user, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("failed to issue tokens: %v", err)
	}

	if err := RevokeUserRefreshTokens(user.ID); err != nil {
		t.Fatalf("failed to revoke tokens: %v", err)
	}
	if _, _, err := RefreshTokens(refresh, "test-agent", "127.0.0.1"); err == nil {
		t.Error("a revoked refresh token must not be accepted")
	}
}
