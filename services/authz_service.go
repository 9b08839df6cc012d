package services

import (
	"gorm.io/gorm"

	"cabanas/models"
)

// Authorization predicates. Each takes the acting user and the target
// resource, returns a plain boolean, and is evaluated per request; the
// results are never cached.

// IsTeamMember reports whether the user belongs to the team with any role.
func IsTeamMember(db *gorm.DB, userID, teamID uint) (bool, error) {
	var count int64
	err := db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

// IsTeamAdmin reports whether the user is an ADMIN of the team.
func IsTeamAdmin(db *gorm.DB, userID, teamID uint) (bool, error) {
	var count int64
	err := db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ? AND role = ?", teamID, userID, models.TeamRoleAdmin).
		Count(&count).Error
	return count > 0, err
}

// SelfOrAdmin allows writes to personal resources by their owner or by
// platform staff.
func SelfOrAdmin(actor *models.User, targetUserID uint) bool {
	return actor.ID == targetUserID || actor.IsAdmin
}

// CanManageStore covers store-level mutations: the owner, platform
// staff, or an ADMIN of any team associated with the store.
func CanManageStore(db *gorm.DB, actor *models.User, store *models.Store) (bool, error) {
	if actor.IsAdmin || store.OwnerID == actor.ID {
		return true, nil
	}
	var count int64
	err := db.Model(&models.StoreTeam{}).
		Joins("JOIN team_members ON team_members.team_id = store_teams.team_id").
		Where("store_teams.store_id = ?", store.ID).
		Where("team_members.deleted_at IS NULL").
		Where("team_members.user_id = ? AND team_members.role = ?", actor.ID, models.TeamRoleAdmin).
		Count(&count).Error
	return count > 0, err
}

// CanEditStoreContent covers content CRUD under a store: any member of
// an associated team, the owner, or platform staff.
func CanEditStoreContent(db *gorm.DB, actor *models.User, store *models.Store) (bool, error) {
	if actor.IsAdmin || store.OwnerID == actor.ID {
		return true, nil
	}
	var count int64
	err := db.Model(&models.StoreTeam{}).
		Joins("JOIN team_members ON team_members.team_id = store_teams.team_id").
		Where("store_teams.store_id = ?", store.ID).
		Where("team_members.deleted_at IS NULL").
		Where("team_members.user_id = ?", actor.ID).
		Count(&count).Error
	return count > 0, err
}

// CanReadNode: owner always; otherwise any direct or team grant.
func CanReadNode(db *gorm.DB, actor *models.User, node *models.Node) (bool, error) {
	if node.OwnerID == actor.ID {
		return true, nil
	}
	return nodeHasGrant(db, actor.ID, node.ID,
		[]string{models.PermissionRead, models.PermissionEdit, models.PermissionAdmin})
}

// CanWriteNode: owner always; otherwise an edit or admin grant.
func CanWriteNode(db *gorm.DB, actor *models.User, node *models.Node) (bool, error) {
	if node.OwnerID == actor.ID {
		return true, nil
	}
	return nodeHasGrant(db, actor.ID, node.ID,
		[]string{models.PermissionEdit, models.PermissionAdmin})
}

// CanAdminNode: sharing and deletion need the owner or an admin grant.
func CanAdminNode(db *gorm.DB, actor *models.User, node *models.Node) (bool, error) {
	if node.OwnerID == actor.ID {
		return true, nil
	}
	return nodeHasGrant(db, actor.ID, node.ID, []string{models.PermissionAdmin})
}

func nodeHasGrant(db *gorm.DB, userID, nodeID uint, kinds []string) (bool, error) {
	var count int64
	err := db.Model(&models.NodePermission{}).
		Where("node_id = ? AND user_id = ? AND permission IN ?", nodeID, userID, kinds).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = db.Model(&models.TeamNodePermission{}).
		Joins("JOIN team_members ON team_members.team_id = team_node_permissions.team_id").
		Where("team_members.deleted_at IS NULL").
		Where("team_node_permissions.node_id = ? AND team_members.user_id = ?", nodeID, userID).
		Where("team_node_permissions.permission IN ?", kinds).
		Count(&count).Error
	return count > 0, err
}
