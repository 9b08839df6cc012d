package services

import (
	"errors"
	"testing"

	"cabanas/models"
	"cabanas/utils"
)

func TestCreateTeamAddsCreatorAsAdmin(t *testing.T) {
	db := newTestDB(t)
	creator := createTestUser(t, db, "creator@example.com")

	team, err := CreateTeam(db, creator.ID, "Equipo Bosque", "Cabañas del sur")
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	var member models.TeamMember
	if err := db.Where("team_id = ? AND user_id = ?", team.ID, creator.ID).First(&member).Error; err != nil {
		t.Fatalf("creator has no membership: %v", err)
	}
	if member.Role != models.TeamRoleAdmin {
		t.Errorf("creator role = %q, want %q", member.Role, models.TeamRoleAdmin)
	}
}

func TestSoleAdminCannotLeave(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	member := createTestUser(t, db, "member@example.com")
	team := createTestTeamWithAdmin(t, db, admin)

	if err := db.Create(&models.TeamMember{TeamID: team.ID, UserID: member.ID, Role: models.TeamRoleMember}).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	if err := LeaveTeam(db, admin.ID, team.ID); !errors.Is(err, ErrSoleAdmin) {
		t.Fatalf("sole admin leaving: got %v, want ErrSoleAdmin", err)
	}

	// Plain members come and go freely
	if err := LeaveTeam(db, member.ID, team.ID); err != nil {
		t.Fatalf("member should be able to leave: %v", err)
	}

	// With a second admin, the first one can leave
	second := createTestUser(t, db, "second@example.com")
	if err := db.Create(&models.TeamMember{TeamID: team.ID, UserID: second.ID, Role: models.TeamRoleAdmin}).Error; err != nil {
		t.Fatalf("failed to add second admin: %v", err)
	}
	if err := LeaveTeam(db, admin.ID, team.ID); err != nil {
		t.Fatalf("admin with a peer should be able to leave: %v", err)
	}
}

func TestLeaveTeamNotMember(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	team := createTestTeamWithAdmin(t, db, admin)

	if err := LeaveTeam(db, outsider.ID, team.ID); !errors.Is(err, ErrNotTeamMember) {
		t.Errorf("outsider leaving: got %v, want ErrNotTeamMember", err)
	}
}

func TestInvitationLifecycle(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	invitee := createTestUser(t, db, "invitee@example.com")
	team := createTestTeamWithAdmin(t, db, admin)

	invitation, err := CreateInvitation(db, team.ID, admin.ID, utils.Pointer("invitee@example.com"), nil)
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}
	if invitation.Status != models.InvitationPending {
		t.Errorf("new invitation status = %q, want %q", invitation.Status, models.InvitationPending)
	}
	if invitation.Token == "" {
		t.Error("invitation token is empty")
	}

	if err := AcceptInvitation(db, invitee, invitation.ID); err != nil {
		t.Fatalf("failed to accept invitation: %v", err)
	}

	ok, err := IsTeamMember(db, invitee.ID, team.ID)
	if err != nil {
		t.Fatalf("membership check failed: %v", err)
	}
	if !ok {
		t.Error("invitee should be a team member after accepting")
	}

	// Accepting twice fails: the invitation is no longer pending
	if err := AcceptInvitation(db, invitee, invitation.ID); !errors.Is(err, ErrInvitationProcessed) {
		t.Errorf("double accept: got %v, want ErrInvitationProcessed", err)
	}
}

func TestInvitationAddressing(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	team := createTestTeamWithAdmin(t, db, admin)

	invitation, err := CreateInvitation(db, team.ID, admin.ID, utils.Pointer("someone-else@example.com"), nil)
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	if err := AcceptInvitation(db, stranger, invitation.ID); !errors.Is(err, ErrInvitationNotForUser) {
		t.Errorf("stranger accepting: got %v, want ErrInvitationNotForUser", err)
	}

	// Phone addressing works too
	phoned := createTestUser(t, db, "phoned@example.com")
	db.Model(phoned).Update("phone", "+521234567890")
	phoned.Phone = utils.Pointer("+521234567890")

	byPhone, err := CreateInvitation(db, team.ID, admin.ID, nil, utils.Pointer("+521234567890"))
	if err != nil {
		t.Fatalf("failed to create phone invitation: %v", err)
	}
	if err := RejectInvitation(db, phoned, byPhone.ID); err != nil {
		t.Fatalf("failed to reject phone invitation: %v", err)
	}

	var got models.Invitation
	db.First(&got, byPhone.ID)
	if got.Status != models.InvitationRejected {
		t.Errorf("rejected invitation status = %q, want %q", got.Status, models.InvitationRejected)
	}
}
