package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cabanas/models"
	"cabanas/services"
	"cabanas/utils"
)

type TaskController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTaskController(db *gorm.DB, logger *log.Logger) *TaskController {
	return &TaskController{DB: db, Logger: logger}
}

type CreateTaskRequest struct {
	TeamID       uint       `json:"team_id" validate:"required"`
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description" validate:"omitempty,max=5000"`
	AssignedToID *uint      `json:"assigned_to_id"`
	DueDate      *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title        *string    `json:"title" validate:"omitempty,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=5000"`
	Status       *string    `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	AssignedToID *uint      `json:"assigned_to_id"`
	DueDate      *time.Time `json:"due_date"`
}

type CreateTaskCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// CreateTask creates a task in one of the caller's teams. The assignee,
// when given, must belong to the same team.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	ok, err := services.IsTeamMember(tc.DB, user.ID, req.TeamID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this team", nil)
	}

	if req.AssignedToID != nil {
		if bad, resp := tc.checkAssignee(c, req.TeamID, *req.AssignedToID); bad {
			return resp
		}
	}

	task := models.Task{
		TeamID:       req.TeamID,
		CreatedByID:  user.ID,
		AssignedToID: req.AssignedToID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       models.TaskTodo,
		DueDate:      req.DueDate,
	}

	if err := tc.DB.Create(&task).Error; err != nil {
		tc.Logger.Printf("Failed to create task: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

// ListTeamTasks lists a team's tasks with optional status and assignee
// filters.
func (tc *TaskController) ListTeamTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("teamId"))

	ok, err := services.IsTeamMember(tc.DB, user.ID, teamID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this team", nil)
	}

	query := tc.DB.Where("team_id = ?", teamID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		query = query.Where("assigned_to_id = ?", utils.ParseUint(assignee))
	}

	var tasks []models.Task
	if err := query.Order("due_date IS NULL, due_date ASC, id ASC").Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	return c.JSON(utils.SuccessResponse(tasks))
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := tc.loadTeamTask(c, user)
	if task == nil {
		return err
	}

	if err := tc.DB.Preload("Comments").First(task, task.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	return c.JSON(utils.SuccessResponse(task))
}

// UpdateTask edits a task. Any member of the team may update it,
// including status moves between TODO, IN_PROGRESS and DONE.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := tc.loadTeamTask(c, user)
	if task == nil {
		return err
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.AssignedToID != nil {
		if bad, resp := tc.checkAssignee(c, task.TeamID, *req.AssignedToID); bad {
			return resp
		}
		task.AssignedToID = req.AssignedToID
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := tc.DB.Save(task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
	}

	return c.JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := tc.loadTeamTask(c, user)
	if task == nil {
		return err
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	return c.JSON(fiber.Map{"message": "Task deleted"})
}

// AddComment posts a comment on a task of the caller's team.
func (tc *TaskController) AddComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := tc.loadTeamTask(c, user)
	if task == nil {
		return err
	}

	var req CreateTaskCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	comment := models.TaskComment{
		TaskID:  task.ID,
		UserID:  user.ID,
		Content: req.Content,
	}
	if err := tc.DB.Create(&comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add comment", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(comment))
}

// DeleteComment removes the caller's own comment.
func (tc *TaskController) DeleteComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := tc.loadTeamTask(c, user)
	if task == nil {
		return err
	}

	commentID := utils.ParseUint(c.Params("commentId"))
	var comment models.TaskComment
	if err := tc.DB.Where("id = ? AND task_id = ?", commentID, task.ID).First(&comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
	}
	if !services.SelfOrAdmin(user, comment.UserID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only delete your own comments", nil)
	}

	if err := tc.DB.Delete(&comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete comment", err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// checkAssignee verifies the assignee belongs to the team. When it does
// not, the error response is written and the first return is true.
func (tc *TaskController) checkAssignee(c *fiber.Ctx, teamID, assigneeID uint) (bool, error) {
	ok, err := services.IsTeamMember(tc.DB, assigneeID, teamID)
	if err != nil {
		return true, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check assignee", err)
	}
	if !ok {
		return true, utils.ErrorResponse(c, fiber.StatusBadRequest, "Assignee is not a member of the team", nil)
	}
	return false, nil
}

// loadTeamTask fetches the task in :id and checks team membership. On
// failure it writes the response and returns a nil task.
func (tc *TaskController) loadTeamTask(c *fiber.Ctx, user *models.User) (*models.Task, error) {
	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	ok, err := services.IsTeamMember(tc.DB, user.ID, task.TeamID)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this task's team", nil)
	}
	return &task, nil
}
