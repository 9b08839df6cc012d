package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cabanas/models"
	"cabanas/services"
	"cabanas/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{DB: db, Logger: logger}
}

type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type InviteMemberRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

// CreateTeam creates a team with the caller as its first ADMIN.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team, err := services.CreateTeam(tc.DB, user.ID, req.Name, req.Description)
	if err != nil {
		tc.Logger.Printf("Failed to create team: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create team", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

// GetMyTeams lists teams where the caller is a member.
func (tc *TeamController) GetMyTeams(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var teams []models.Team
	if err := tc.DB.
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ? AND team_members.deleted_at IS NULL", user.ID).
		Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}

	return c.JSON(utils.SuccessResponse(teams))
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	ok, err := services.IsTeamMember(tc.DB, user.ID, teamID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this team", nil)
	}

	var team models.Team
	if err := tc.DB.Preload("Members").Preload("Members.User").First(&team, teamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	return c.JSON(utils.SuccessResponse(team))
}

// UpdateTeam edits the team name and description. ADMIN only.
func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	if err := tc.requireAdmin(user, teamID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only team admins can do this", nil)
	}

	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var req UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}

	if err := tc.DB.Save(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
	}

	return c.JSON(utils.SuccessResponse(team))
}

// DeleteTeam removes the team and its memberships. ADMIN only.
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	if err := tc.requireAdmin(user, teamID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only team admins can do this", nil)
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
	if err != nil {
		tc.Logger.Printf("Failed to delete team %d: %v", teamID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team", err)
	}

	return c.JSON(fiber.Map{"message": "Team deleted"})
}

// GetMembers lists the team roster with user details.
func (tc *TeamController) GetMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	ok, err := services.IsTeamMember(tc.DB, user.ID, teamID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this team", nil)
	}

	var members []models.TeamMember
	if err := tc.DB.Preload("User").Where("team_id = ?", teamID).Find(&members).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch members", err)
	}

	return c.JSON(utils.SuccessResponse(members))
}

// InviteMember creates a pending invitation addressed by email or phone
// and mails the token when an address was given. ADMIN only.
func (tc *TeamController) InviteMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	if err := tc.requireAdmin(user, teamID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only team admins can invite members", nil)
	}

	var req InviteMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if req.Email == nil && req.Phone == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "An email or phone is required", nil)
	}
	if req.Email != nil {
		if err := utils.ValidateInviteEmail(*req.Email); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
		}
	}

	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	invitation, err := services.CreateInvitation(tc.DB, teamID, user.ID, req.Email, req.Phone)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create invitation", err)
	}

	if req.Email != nil {
		if err := utils.SendInvitationEmail(*req.Email, team.Name, invitation.Token); err != nil {
			// The invitation stands; the invitee can still accept in-app
			tc.Logger.Printf("Failed to send invitation email to %s: %v", *req.Email, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(invitation))
}

// LeaveTeam removes the caller from the team, unless they are its sole ADMIN.
func (tc *TeamController) LeaveTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	if err := services.LeaveTeam(tc.DB, user.ID, teamID); err != nil {
		switch {
		case errors.Is(err, services.ErrSoleAdmin):
			return utils.ErrorResponse(c, fiber.StatusConflict, "The only admin cannot leave the team", err)
		case errors.Is(err, services.ErrNotTeamMember):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not a member of this team", err)
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to leave team", err)
		}
	}

	return c.JSON(fiber.Map{"message": "You left the team"})
}

// RemoveMember kicks another member out of the team. ADMIN only; the
// sole-admin rule applies the same as leaving.
func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))
	memberUserID := utils.ParseUint(c.Params("userId"))

	if err := tc.requireAdmin(user, teamID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only team admins can remove members", nil)
	}

	if err := services.LeaveTeam(tc.DB, memberUserID, teamID); err != nil {
		switch {
		case errors.Is(err, services.ErrSoleAdmin):
			return utils.ErrorResponse(c, fiber.StatusConflict, "Cannot remove the only admin of the team", err)
		case errors.Is(err, services.ErrNotTeamMember):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "User is not a member of this team", err)
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", err)
		}
	}

	return c.JSON(fiber.Map{"message": "Member removed"})
}

// GetMyInvitations lists pending invitations addressed to the caller's
// email or phone.
func (tc *TeamController) GetMyInvitations(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := tc.DB.Preload("Team").Where("status = ?", models.InvitationPending)
	if user.Phone != nil {
		query = query.Where("email = ? OR phone = ?", user.Email, *user.Phone)
	} else {
		query = query.Where("email = ?", user.Email)
	}

	var invitations []models.Invitation
	if err := query.Find(&invitations).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch invitations", err)
	}

	return c.JSON(utils.SuccessResponse(invitations))
}

func (tc *TeamController) AcceptInvitation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	invitationID := utils.ParseUint(c.Params("id"))

	if err := services.AcceptInvitation(tc.DB, user, invitationID); err != nil {
		return tc.invitationError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Invitation accepted"})
}

func (tc *TeamController) RejectInvitation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	invitationID := utils.ParseUint(c.Params("id"))

	if err := services.RejectInvitation(tc.DB, user, invitationID); err != nil {
		return tc.invitationError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Invitation rejected"})
}

func (tc *TeamController) invitationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Invitation not found", nil)
	case errors.Is(err, services.ErrInvitationNotForUser):
		return utils.ErrorResponse(c, fiber.StatusForbidden, "This invitation is addressed to someone else", nil)
	case errors.Is(err, services.ErrInvitationProcessed):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Invitation has already been processed", nil)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process invitation", err)
	}
}

func (tc *TeamController) requireAdmin(user *models.User, teamID uint) error {
	if user.IsAdmin {
		return nil
	}
	ok, err := services.IsTeamAdmin(tc.DB, user.ID, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return services.ErrNotTeamMember
	}
	return nil
}
