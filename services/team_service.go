package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cabanas/models"
)

var (
	ErrNotTeamMember        = errors.New("user is not a member of this team")
	ErrSoleAdmin            = errors.New("the only admin cannot leave the team; promote another admin first")
	ErrInvitationProcessed  = errors.New("invitation has already been processed")
	ErrInvitationNotForUser = errors.New("invitation is addressed to someone else")
)

// CreateTeam creates a team and inserts the creator as its first ADMIN
// in one transaction.
func CreateTeam(db *gorm.DB, creatorID uint, name, description string) (*models.Team, error) {
	team := models.Team{Name: name, Description: description}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		member := models.TeamMember{
			TeamID: team.ID,
			UserID: creatorID,
			Role:   models.TeamRoleAdmin,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// LeaveTeam removes the user's membership. The last remaining ADMIN may
// not leave: the team would be orphaned.
func LeaveTeam(db *gorm.DB, userID, teamID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var member models.TeamMember
		if err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotTeamMember
			}
			return err
		}

		if member.Role == models.TeamRoleAdmin {
			var adminCount int64
			if err := tx.Model(&models.TeamMember{}).
				Where("team_id = ? AND role = ?", teamID, models.TeamRoleAdmin).
				Count(&adminCount).Error; err != nil {
				return err
			}
			if adminCount == 1 {
				return ErrSoleAdmin
			}
		}

		return tx.Delete(&member).Error
	})
}

// CreateInvitation records a pending invitation with a fresh token.
func CreateInvitation(db *gorm.DB, teamID, createdByID uint, email, phone *string) (*models.Invitation, error) {
	invitation := models.Invitation{
		TeamID:      teamID,
		Email:       email,
		Phone:       phone,
		Token:       uuid.NewString(),
		CreatedByID: createdByID,
		Status:      models.InvitationPending,
	}
	if err := db.Create(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// AcceptInvitation marks the invitation accepted and creates the
// membership, provided it is pending and addressed to the user.
func AcceptInvitation(db *gorm.DB, user *models.User, invitationID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		if err := tx.First(&invitation, invitationID).Error; err != nil {
			return err
		}
		if err := checkInvitationTarget(&invitation, user); err != nil {
			return err
		}

		invitation.Status = models.InvitationAccepted
		if err := tx.Save(&invitation).Error; err != nil {
			return err
		}

		member := models.TeamMember{
			TeamID: invitation.TeamID,
			UserID: user.ID,
			Role:   models.TeamRoleMember,
		}
		return tx.Create(&member).Error
	})
}

// RejectInvitation marks the invitation rejected under the same
// addressing and pending checks as accepting.
func RejectInvitation(db *gorm.DB, user *models.User, invitationID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		if err := tx.First(&invitation, invitationID).Error; err != nil {
			return err
		}
		if err := checkInvitationTarget(&invitation, user); err != nil {
			return err
		}

		invitation.Status = models.InvitationRejected
		return tx.Save(&invitation).Error
	})
}

func checkInvitationTarget(invitation *models.Invitation, user *models.User) error {
	addressed := false
	if invitation.Email != nil && *invitation.Email == user.Email {
		addressed = true
	}
	if invitation.Phone != nil && user.Phone != nil && *invitation.Phone == *user.Phone {
		addressed = true
	}
	if !addressed {
		return ErrInvitationNotForUser
	}
	if invitation.Status != models.InvitationPending {
		return ErrInvitationProcessed
	}
	return nil
}
