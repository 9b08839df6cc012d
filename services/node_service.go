package services

import (
	"errors"

	"gorm.io/gorm"

	"cabanas/models"
)

var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrParentMismatch     = errors.New("parent node must belong to the same owner")
	ErrNodeCycle          = errors.New("a node cannot become a descendant of itself")
	ErrNotTodoNode        = errors.New("only todo nodes can be completed")
	ErrUnknownNodeType    = errors.New("unknown node type")
)

// maxNodeDepth bounds ancestor walks so a corrupted parent chain cannot
// loop forever.
const maxNodeDepth = 100

var nodeTypes = map[string]bool{
	models.NodePage:    true,
	models.NodeText:    true,
	models.NodeHeading: true,
	models.NodeTodo:    true,
}

// CreateNode validates the node invariants and inserts it. When a
// parent is given and no explicit order, the node goes to the end of
// its siblings.
func CreateNode(db *gorm.DB, ownerID uint, parentID *uint, nodeType, title, content string, order *int) (*models.Node, error) {
	if !nodeTypes[nodeType] {
		return nil, ErrUnknownNodeType
	}

	node := models.Node{
		OwnerID: ownerID,
		Type:    nodeType,
		Title:   title,
		Content: content,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			var parent models.Node
			if err := tx.First(&parent, *parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNodeNotFound
				}
				return err
			}
			if parent.OwnerID != ownerID {
				return ErrParentMismatch
			}
			node.ParentID = parentID

			if order == nil {
				var siblings int64
				if err := tx.Model(&models.Node{}).Where("parent_id = ?", *parentID).Count(&siblings).Error; err != nil {
					return err
				}
				node.Order = int(siblings)
			}
		}
		if order != nil {
			node.Order = *order
		}
		return tx.Create(&node).Error
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// MoveNode reparents and/or reorders a node. The target parent must
// share the node's owner and must not be the node itself or any of its
// descendants.
func MoveNode(db *gorm.DB, nodeID uint, newParentID *uint, newOrder *int) (*models.Node, error) {
	var node models.Node
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&node, nodeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNodeNotFound
			}
			return err
		}

		if newParentID != nil {
			var parent models.Node
			if err := tx.First(&parent, *newParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNodeNotFound
				}
				return err
			}
			if parent.OwnerID != node.OwnerID {
				return ErrParentMismatch
			}
			descends, err := isSelfOrDescendant(tx, node.ID, parent.ID)
			if err != nil {
				return err
			}
			if descends {
				return ErrNodeCycle
			}
		}

		node.ParentID = newParentID
		if newOrder != nil {
			node.Order = *newOrder
		}
		if err := tx.Save(&node).Error; err != nil {
			return err
		}

		// Compact sibling order around the moved node
		if node.ParentID != nil && newOrder != nil {
			var siblings []models.Node
			if err := tx.Where("parent_id = ? AND id <> ?", *node.ParentID, node.ID).
				Order("\"order\"").Find(&siblings).Error; err != nil {
				return err
			}
			current := 0
			for i := range siblings {
				if current == node.Order {
					current++
				}
				siblings[i].Order = current
				if err := tx.Model(&siblings[i]).Update("order", current).Error; err != nil {
					return err
				}
				current++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// isSelfOrDescendant walks candidate's ancestor chain looking for nodeID.
func isSelfOrDescendant(tx *gorm.DB, nodeID, candidateID uint) (bool, error) {
	currentID := candidateID
	for depth := 0; depth < maxNodeDepth; depth++ {
		if currentID == nodeID {
			return true, nil
		}
		var current models.Node
		if err := tx.Select("id", "parent_id").First(&current, currentID).Error; err != nil {
			return false, err
		}
		if current.ParentID == nil {
			return false, nil
		}
		currentID = *current.ParentID
	}
	return false, ErrNodeCycle
}

// ToggleComplete flips a todo node's completion flag.
func ToggleComplete(db *gorm.DB, nodeID uint) (*models.Node, error) {
	var node models.Node
	if err := db.First(&node, nodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, err
	}
	if node.Type != models.NodeTodo {
		return nil, ErrNotTodoNode
	}
	node.IsCompleted = !node.IsCompleted
	if err := db.Model(&node).Update("is_completed", node.IsCompleted).Error; err != nil {
		return nil, err
	}
	return &node, nil
}

// NodeUpdate is one entry of a batch update (drag-and-drop reorder).
type NodeUpdate struct {
	ID       uint  `json:"id" validate:"required"`
	ParentID *uint `json:"parent_id"`
	Order    int   `json:"order"`
}

// BatchUpdateNodes applies position updates atomically; each reparent
// goes through the same owner and cycle checks as a single move.
func BatchUpdateNodes(db *gorm.DB, ownerID uint, updates []NodeUpdate) ([]models.Node, error) {
	var updated []models.Node
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			var node models.Node
			if err := tx.First(&node, u.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNodeNotFound
				}
				return err
			}
			if node.OwnerID != ownerID {
				return ErrParentMismatch
			}

			if u.ParentID != nil {
				var parent models.Node
				if err := tx.First(&parent, *u.ParentID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrNodeNotFound
					}
					return err
				}
				if parent.OwnerID != node.OwnerID {
					return ErrParentMismatch
				}
				descends, err := isSelfOrDescendant(tx, node.ID, parent.ID)
				if err != nil {
					return err
				}
				if descends {
					return ErrNodeCycle
				}
			}

			node.ParentID = u.ParentID
			node.Order = u.Order
			if err := tx.Save(&node).Error; err != nil {
				return err
			}
			updated = append(updated, node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
