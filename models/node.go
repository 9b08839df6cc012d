package models

import "gorm.io/gorm"

// Node types
const (
	NodePage    = "page"
	NodeText    = "text"
	NodeHeading = "heading"
	NodeTodo    = "todo"
)

// Node permission kinds
const (
	PermissionRead  = "read"
	PermissionEdit  = "edit"
	PermissionAdmin = "admin"
)

// Node is a hierarchical note item. Invariants enforced by the service
// layer: a child's parent must share the same owner, only todo nodes may
// be completed, and a move must not make a node its own descendant.
type Node struct {
	gorm.Model
	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`
	OwnerID  uint  `gorm:"not null;index" json:"owner_id"`

	Type        string `gorm:"not null" json:"type"` // page, text, heading, todo
	Title       string `json:"title"`
	Content     string `gorm:"type:text" json:"content"`
	Order       int    `gorm:"default:0" json:"order"`
	IsCompleted bool   `gorm:"default:false" json:"is_completed"`

	// Relations
	Parent          *Node                `gorm:"foreignKey:ParentID" json:"-"`
	Children        []Node               `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Owner           User                 `gorm:"foreignKey:OwnerID" json:"-"`
	Permissions     []NodePermission     `gorm:"foreignKey:NodeID" json:"permissions,omitempty"`
	TeamPermissions []TeamNodePermission `gorm:"foreignKey:NodeID" json:"team_permissions,omitempty"`
}

// NodePermission grants a user direct access to a node.
type NodePermission struct {
	gorm.Model
	NodeID     uint   `gorm:"not null;index;uniqueIndex:idx_node_user" json:"node_id"`
	UserID     uint   `gorm:"not null;index;uniqueIndex:idx_node_user" json:"user_id"`
	Permission string `gorm:"default:'read'" json:"permission"` // read, edit, admin

	// Relations
	Node Node `json:"-"`
	User User `json:"-"`
}

// TeamNodePermission grants every member of a team access to a node.
type TeamNodePermission struct {
	gorm.Model
	NodeID     uint   `gorm:"not null;index;uniqueIndex:idx_node_team" json:"node_id"`
	TeamID     uint   `gorm:"not null;index;uniqueIndex:idx_node_team" json:"team_id"`
	Permission string `gorm:"default:'read'" json:"permission"` // read, edit, admin

	// Relations
	Node Node `json:"-"`
	Team Team `json:"-"`
}
