package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses
const (
	TaskTodo       = "TODO"
	TaskInProgress = "IN_PROGRESS"
	TaskDone       = "DONE"
)

// Task is a work item scoped to a team. Any member of the team can
// create and update tasks; assignment is optional.
type Task struct {
	gorm.Model
	TeamID       uint  `gorm:"not null;index" json:"team_id"`
	CreatedByID  uint  `gorm:"not null;index" json:"created_by_id"`
	AssignedToID *uint `gorm:"index" json:"assigned_to_id,omitempty"`

	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"default:'TODO';index" json:"status"` // TODO, IN_PROGRESS, DONE
	DueDate     *time.Time `json:"due_date,omitempty"`

	// Relations
	Team       Team          `json:"-"`
	CreatedBy  User          `gorm:"foreignKey:CreatedByID" json:"-"`
	AssignedTo *User         `gorm:"foreignKey:AssignedToID" json:"-"`
	Comments   []TaskComment `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}

// TaskComment is a comment on a task.
type TaskComment struct {
	gorm.Model
	TaskID  uint   `gorm:"not null;index" json:"task_id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Content string `gorm:"type:text;not null" json:"content"`

	// Relations
	Task Task `json:"-"`
	User User `json:"-"`
}
