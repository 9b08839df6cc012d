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

type NodeController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewNodeController(db *gorm.DB, logger *log.Logger) *NodeController {
	return &NodeController{DB: db, Logger: logger}
}

type CreateNodeRequest struct {
	ParentID *uint  `json:"parent_id"`
	Type     string `json:"type" validate:"required,oneof=page text heading todo"`
	Title    string `json:"title" validate:"omitempty,max=300"`
	Content  string `json:"content"`
	Order    *int   `json:"order" validate:"omitempty,gte=0"`
}

type UpdateNodeRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=300"`
	Content *string `json:"content"`
}

type MoveNodeRequest struct {
	ParentID *uint `json:"parent_id"`
	Order    *int  `json:"order" validate:"omitempty,gte=0"`
}

type ShareNodeRequest struct {
	UserID     *uint  `json:"user_id"`
	TeamID     *uint  `json:"team_id"`
	Permission string `json:"permission" validate:"required,oneof=read edit admin"`
}

type BatchUpdateRequest struct {
	Updates []services.NodeUpdate `json:"updates" validate:"required,min=1,dive"`
}

// CreateNode creates a note node owned by the caller.
func (nc *NodeController) CreateNode(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	node, err := services.CreateNode(nc.DB, user.ID, req.ParentID, req.Type, req.Title, req.Content, req.Order)
	if err != nil {
		return nc.nodeError(c, err, "Failed to create node")
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(node))
}

// GetRootNodes lists the caller's own top-level nodes plus the nodes
// shared with them directly or through a team. A shared entry is the
// granted node itself, whatever its depth in the owner's tree; it is the
// entry point into that subtree.
func (nc *NodeController) GetRootNodes(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var own []models.Node
	if err := nc.DB.
		Where("owner_id = ? AND parent_id IS NULL", user.ID).
		Order("\"order\"").
		Find(&own).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch nodes", err)
	}

	var shared []models.Node
	err := nc.DB.
		Distinct("nodes.*").
		Joins("LEFT JOIN node_permissions ON node_permissions.node_id = nodes.id AND node_permissions.deleted_at IS NULL").
		Joins("LEFT JOIN team_node_permissions ON team_node_permissions.node_id = nodes.id AND team_node_permissions.deleted_at IS NULL").
		Joins("LEFT JOIN team_members ON team_members.team_id = team_node_permissions.team_id AND team_members.deleted_at IS NULL").
		Where("nodes.owner_id <> ?", user.ID).
		Where("node_permissions.user_id = ? OR team_members.user_id = ?", user.ID, user.ID).
		Find(&shared).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch shared nodes", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"own":    own,
		"shared": shared,
	}))
}

func (nc *NodeController) GetNode(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanReadNode)
	if node == nil {
		return resp
	}

	return c.JSON(utils.SuccessResponse(node))
}

// GetChildren lists a node's direct children ordered by position.
func (nc *NodeController) GetChildren(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanReadNode)
	if node == nil {
		return resp
	}

	var children []models.Node
	if err := nc.DB.
		Where("parent_id = ?", node.ID).
		Order("\"order\"").
		Find(&children).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch children", err)
	}

	return c.JSON(utils.SuccessResponse(children))
}

// SearchNodes searches the caller's own nodes by title and content.
func (nc *NodeController) SearchNodes(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	term := c.Query("q")
	if term == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "q is required", nil)
	}

	pattern := "%" + term + "%"
	var nodes []models.Node
	if err := nc.DB.
		Where("owner_id = ?", user.ID).
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Limit(50).
		Find(&nodes).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Search failed", err)
	}

	return c.JSON(utils.SuccessResponse(nodes))
}

// UpdateNode edits a node's title and content. Needs a write grant.
func (nc *NodeController) UpdateNode(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanWriteNode)
	if node == nil {
		return resp
	}

	var req UpdateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.Title != nil {
		node.Title = *req.Title
	}
	if req.Content != nil {
		node.Content = *req.Content
	}

	if err := nc.DB.Save(node).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update node", err)
	}

	return c.JSON(utils.SuccessResponse(node))
}

// DeleteNode removes a node and, recursively, its descendants. Needs an
// admin grant.
func (nc *NodeController) DeleteNode(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanAdminNode)
	if node == nil {
		return resp
	}

	err := nc.DB.Transaction(func(tx *gorm.DB) error {
		return deleteNodeTree(tx, node.ID)
	})
	if err != nil {
		nc.Logger.Printf("Failed to delete node %d: %v", node.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete node", err)
	}

	return c.JSON(fiber.Map{"message": "Node deleted"})
}

func deleteNodeTree(tx *gorm.DB, nodeID uint) error {
	var childIDs []uint
	if err := tx.Model(&models.Node{}).Where("parent_id = ?", nodeID).Pluck("id", &childIDs).Error; err != nil {
		return err
	}
	for _, childID := range childIDs {
		if err := deleteNodeTree(tx, childID); err != nil {
			return err
		}
	}
	if err := tx.Where("node_id = ?", nodeID).Delete(&models.NodePermission{}).Error; err != nil {
		return err
	}
	if err := tx.Where("node_id = ?", nodeID).Delete(&models.TeamNodePermission{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Node{}, nodeID).Error
}

// MoveNode reparents and reorders a node. Needs a write grant; the
// owner and cycle invariants live in the service layer.
func (nc *NodeController) MoveNode(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanWriteNode)
	if node == nil {
		return resp
	}

	var req MoveNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	moved, err := services.MoveNode(nc.DB, node.ID, req.ParentID, req.Order)
	if err != nil {
		return nc.nodeError(c, err, "Failed to move node")
	}

	return c.JSON(utils.SuccessResponse(moved))
}

// ToggleComplete flips a todo node's completion state.
func (nc *NodeController) ToggleComplete(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanWriteNode)
	if node == nil {
		return resp
	}

	toggled, err := services.ToggleComplete(nc.DB, node.ID)
	if err != nil {
		return nc.nodeError(c, err, "Failed to toggle node")
	}

	return c.JSON(utils.SuccessResponse(toggled))
}

// ShareNode grants a user or a team access to the node. Needs an admin
// grant. Re-sharing with the same target updates the permission level.
func (nc *NodeController) ShareNode(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanAdminNode)
	if node == nil {
		return resp
	}

	var req ShareNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if (req.UserID == nil) == (req.TeamID == nil) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Exactly one of user_id or team_id is required", nil)
	}

	if req.UserID != nil {
		var target models.User
		if err := nc.DB.First(&target, *req.UserID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
		}

		var grant models.NodePermission
		err := nc.DB.Where("node_id = ? AND user_id = ?", node.ID, target.ID).First(&grant).Error
		switch {
		case err == nil:
			grant.Permission = req.Permission
			if err := nc.DB.Save(&grant).Error; err != nil {
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update share", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			grant = models.NodePermission{NodeID: node.ID, UserID: target.ID, Permission: req.Permission}
			if err := nc.DB.Create(&grant).Error; err != nil {
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to share node", err)
			}
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to share node", err)
		}
		return c.JSON(utils.SuccessResponse(grant))
	}

	var team models.Team
	if err := nc.DB.First(&team, *req.TeamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var grant models.TeamNodePermission
	err := nc.DB.Where("node_id = ? AND team_id = ?", node.ID, team.ID).First(&grant).Error
	switch {
	case err == nil:
		grant.Permission = req.Permission
		if err := nc.DB.Save(&grant).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update share", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		grant = models.TeamNodePermission{NodeID: node.ID, TeamID: team.ID, Permission: req.Permission}
		if err := nc.DB.Create(&grant).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to share node", err)
		}
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to share node", err)
	}
	return c.JSON(utils.SuccessResponse(grant))
}

// GetShareInfo lists the node's direct and team grants. Needs an admin
// grant.
func (nc *NodeController) GetShareInfo(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanAdminNode)
	if node == nil {
		return resp
	}

	var userGrants []models.NodePermission
	if err := nc.DB.Where("node_id = ?", node.ID).Find(&userGrants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch shares", err)
	}
	var teamGrants []models.TeamNodePermission
	if err := nc.DB.Where("node_id = ?", node.ID).Find(&teamGrants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch shares", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"users": userGrants,
		"teams": teamGrants,
	}))
}

// Unshare revokes a user or team grant. Needs an admin grant.
func (nc *NodeController) Unshare(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	node, resp := nc.loadNode(c, user, services.CanAdminNode)
	if node == nil {
		return resp
	}

	if userID := utils.ParseUint(c.Query("user_id")); userID != 0 {
		result := nc.DB.Where("node_id = ? AND user_id = ?", node.ID, userID).Delete(&models.NodePermission{})
		if result.Error != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to revoke share", result.Error)
		}
		if result.RowsAffected == 0 {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Share not found", nil)
		}
		return c.JSON(fiber.Map{"message": "Share revoked"})
	}

	if teamID := utils.ParseUint(c.Query("team_id")); teamID != 0 {
		result := nc.DB.Where("node_id = ? AND team_id = ?", node.ID, teamID).Delete(&models.TeamNodePermission{})
		if result.Error != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to revoke share", result.Error)
		}
		if result.RowsAffected == 0 {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Share not found", nil)
		}
		return c.JSON(fiber.Map{"message": "Share revoked"})
	}

	return utils.ErrorResponse(c, fiber.StatusBadRequest, "user_id or team_id query parameter is required", nil)
}

// BatchUpdate applies drag-and-drop position updates atomically over
// the caller's own nodes.
func (nc *NodeController) BatchUpdate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req BatchUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updated, err := services.BatchUpdateNodes(nc.DB, user.ID, req.Updates)
	if err != nil {
		return nc.nodeError(c, err, "Failed to update nodes")
	}

	return c.JSON(utils.SuccessResponse(updated))
}

func (nc *NodeController) nodeError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNodeNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Node not found", nil)
	case errors.Is(err, services.ErrParentMismatch):
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Parent node must belong to the same owner", nil)
	case errors.Is(err, services.ErrNodeCycle):
		return utils.ErrorResponse(c, fiber.StatusConflict, "A node cannot become a descendant of itself", nil)
	case errors.Is(err, services.ErrNotTodoNode):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only todo nodes can be completed", nil)
	case errors.Is(err, services.ErrUnknownNodeType):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown node type", nil)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, fallback, err)
	}
}

// loadNode fetches the node in :id and runs the given permission check.
// On failure it writes the response and returns a nil node.
func (nc *NodeController) loadNode(c *fiber.Ctx, user *models.User,
	check func(*gorm.DB, *models.User, *models.Node) (bool, error)) (*models.Node, error) {

	var node models.Node
	if err := nc.DB.First(&node, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Node not found", nil)
	}

	ok, err := check(nc.DB, user, &node)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check permissions", err)
	}
	if !ok && !user.IsAdmin {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this node", nil)
	}
	return &node, nil
}
