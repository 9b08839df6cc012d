package services

import (
	"testing"

	"cabanas/models"
)

func TestSelfOrAdmin(t *testing.T) {
	user := &models.User{}
	user.ID = 7
	staff := &models.User{IsAdmin: true}
	staff.ID = 1

	if !SelfOrAdmin(user, 7) {
		t.Error("users can edit their own resources")
	}
	if SelfOrAdmin(user, 8) {
		t.Error("users cannot edit other accounts")
	}
	if !SelfOrAdmin(staff, 8) {
		t.Error("platform staff can edit any account")
	}
}

func TestStorePermissions(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	teamAdmin := createTestUser(t, db, "teamadmin@example.com")
	teamMember := createTestUser(t, db, "member@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")

	team := createTestTeamWithAdmin(t, db, teamAdmin)
	if err := db.Create(&models.TeamMember{TeamID: team.ID, UserID: teamMember.ID, Role: models.TeamRoleMember}).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	store := models.Store{OwnerID: owner.ID, Name: "Tienda Bosque", Slug: "tienda-bosque", IsActive: true}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := db.Create(&models.StoreTeam{StoreID: store.ID, TeamID: team.ID}).Error; err != nil {
		t.Fatalf("failed to assign team: %v", err)
	}

	cases := []struct {
		name       string
		actor      *models.User
		canManage  bool
		canContent bool
	}{
		{"owner", owner, true, true},
		{"team admin", teamAdmin, true, true},
		{"team member", teamMember, false, true},
		{"outsider", outsider, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			manage, err := CanManageStore(db, tc.actor, &store)
			if err != nil {
				t.Fatalf("CanManageStore failed: %v", err)
			}
			if manage != tc.canManage {
				t.Errorf("CanManageStore = %v, want %v", manage, tc.canManage)
			}

			content, err := CanEditStoreContent(db, tc.actor, &store)
			if err != nil {
				t.Fatalf("CanEditStoreContent failed: %v", err)
			}
			if content != tc.canContent {
				t.Errorf("CanEditStoreContent = %v, want %v", content, tc.canContent)
			}
		})
	}
}

func TestNodeGrants(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	reader := createTestUser(t, db, "reader@example.com")
	editor := createTestUser(t, db, "editor@example.com")
	teammate := createTestUser(t, db, "teammate@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")

	node, err := CreateNode(db, owner.ID, nil, models.NodePage, "Compartido", "", nil)
	if err != nil {
		t.Fatalf("failed to create node: %v", err)
	}

	if err := db.Create(&models.NodePermission{NodeID: node.ID, UserID: reader.ID, Permission: models.PermissionRead}).Error; err != nil {
		t.Fatalf("failed to grant read: %v", err)
	}
	if err := db.Create(&models.NodePermission{NodeID: node.ID, UserID: editor.ID, Permission: models.PermissionEdit}).Error; err != nil {
		t.Fatalf("failed to grant edit: %v", err)
	}

	// Team grant reaches members through their membership
	team := createTestTeamWithAdmin(t, db, teammate)
	if err := db.Create(&models.TeamNodePermission{NodeID: node.ID, TeamID: team.ID, Permission: models.PermissionRead}).Error; err != nil {
		t.Fatalf("failed to grant team read: %v", err)
	}

	cases := []struct {
		name              string
		actor             *models.User
		read, write, adm  bool
	}{
		{"owner", owner, true, true, true},
		{"direct read grant", reader, true, false, false},
		{"direct edit grant", editor, true, true, false},
		{"team read grant", teammate, true, false, false},
		{"outsider", outsider, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got, _ := CanReadNode(db, tc.actor, node); got != tc.read {
				t.Errorf("CanReadNode = %v, want %v", got, tc.read)
			}
			if got, _ := CanWriteNode(db, tc.actor, node); got != tc.write {
				t.Errorf("CanWriteNode = %v, want %v", got, tc.write)
			}
			if got, _ := CanAdminNode(db, tc.actor, node); got != tc.adm {
				t.Errorf("CanAdminNode = %v, want %v", got, tc.adm)
			}
		})
	}
}

func TestIsTeamMemberAndAdmin(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	member := createTestUser(t, db, "member@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	team := createTestTeamWithAdmin(t, db, admin)

	if err := db.Create(&models.TeamMember{TeamID: team.ID, UserID: member.ID, Role: models.TeamRoleMember}).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	if ok, _ := IsTeamMember(db, member.ID, team.ID); !ok {
		t.Error("member should be a team member")
	}
	if ok, _ := IsTeamAdmin(db, member.ID, team.ID); ok {
		t.Error("member is not an admin")
	}
	if ok, _ := IsTeamAdmin(db, admin.ID, team.ID); !ok {
		t.Error("creator should be an admin")
	}
	if ok, _ := IsTeamMember(db, outsider.ID, team.ID); ok {
		t.Error("outsider is not a member")
	}
}
