package services

import (
	"errors"
	"testing"

	"cabanas/models"
	"cabanas/utils"
)

func TestCreateNodeAppendsToSiblings(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	page, err := CreateNode(db, owner.ID, nil, models.NodePage, "Manual de la cabaña", "", nil)
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	first, err := CreateNode(db, owner.ID, &page.ID, models.NodeText, "", "Reglas", nil)
	if err != nil {
		t.Fatalf("failed to create child: %v", err)
	}
	second, err := CreateNode(db, owner.ID, &page.ID, models.NodeText, "", "Horarios", nil)
	if err != nil {
		t.Fatalf("failed to create child: %v", err)
	}

	if first.Order != 0 || second.Order != 1 {
		t.Errorf("sibling orders = %d, %d, want 0, 1", first.Order, second.Order)
	}
}

func TestCreateNodeRejectsForeignParent(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	page, err := CreateNode(db, owner.ID, nil, models.NodePage, "Privado", "", nil)
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	if _, err := CreateNode(db, other.ID, &page.ID, models.NodeText, "", "", nil); !errors.Is(err, ErrParentMismatch) {
		t.Errorf("foreign parent: got %v, want ErrParentMismatch", err)
	}
}

func TestCreateNodeUnknownType(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	if _, err := CreateNode(db, owner.ID, nil, "spreadsheet", "", "", nil); !errors.Is(err, ErrUnknownNodeType) {
		t.Errorf("unknown type: got %v, want ErrUnknownNodeType", err)
	}
}

func TestMoveNodeRejectsCycles(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	root, _ := CreateNode(db, owner.ID, nil, models.NodePage, "Raíz", "", nil)
	child, _ := CreateNode(db, owner.ID, &root.ID, models.NodePage, "Hijo", "", nil)
	grandchild, _ := CreateNode(db, owner.ID, &child.ID, models.NodePage, "Nieto", "", nil)

	// Moving the root under its own grandchild would form a cycle
	if _, err := MoveNode(db, root.ID, &grandchild.ID, nil); !errors.Is(err, ErrNodeCycle) {
		t.Errorf("move under descendant: got %v, want ErrNodeCycle", err)
	}

	// Moving a node under itself is the degenerate cycle
	if _, err := MoveNode(db, child.ID, &child.ID, nil); !errors.Is(err, ErrNodeCycle) {
		t.Errorf("move under self: got %v, want ErrNodeCycle", err)
	}

	// A legal reparent still works
	moved, err := MoveNode(db, grandchild.ID, &root.ID, utils.Pointer(0))
	if err != nil {
		t.Fatalf("legal move failed: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != root.ID {
		t.Error("grandchild should now hang off the root")
	}
}

func TestToggleCompleteOnlyTodos(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	todo, _ := CreateNode(db, owner.ID, nil, models.NodeTodo, "Comprar leña", "", nil)
	text, _ := CreateNode(db, owner.ID, nil, models.NodeText, "", "Nota", nil)

	toggled, err := ToggleComplete(db, todo.ID)
	if err != nil {
		t.Fatalf("failed to toggle todo: %v", err)
	}
	if !toggled.IsCompleted {
		t.Error("todo should be completed after toggle")
	}

	back, err := ToggleComplete(db, todo.ID)
	if err != nil {
		t.Fatalf("failed to toggle back: %v", err)
	}
	if back.IsCompleted {
		t.Error("todo should be open after second toggle")
	}

	if _, err := ToggleComplete(db, text.ID); !errors.Is(err, ErrNotTodoNode) {
		t.Errorf("toggling a text node: got %v, want ErrNotTodoNode", err)
	}
}

func TestBatchUpdateNodesIsAtomic(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	a, _ := CreateNode(db, owner.ID, nil, models.NodeText, "", "A", nil)
	b, _ := CreateNode(db, owner.ID, nil, models.NodeText, "", "B", nil)
	foreign, _ := CreateNode(db, other.ID, nil, models.NodeText, "", "X", nil)

	// Second entry touches someone else's node; nothing may be applied
	_, err := BatchUpdateNodes(db, owner.ID, []NodeUpdate{
		{ID: a.ID, Order: 5},
		{ID: foreign.ID, Order: 1},
	})
	if !errors.Is(err, ErrParentMismatch) {
		t.Fatalf("batch with foreign node: got %v, want ErrParentMismatch", err)
	}

	var got models.Node
	db.First(&got, a.ID)
	if got.Order != 0 {
		t.Errorf("order after failed batch = %d, want 0 (rollback)", got.Order)
	}

	// A clean batch applies every entry
	updated, err := BatchUpdateNodes(db, owner.ID, []NodeUpdate{
		{ID: a.ID, Order: 1},
		{ID: b.ID, Order: 0},
	})
	if err != nil {
		t.Fatalf("clean batch failed: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("updated %d nodes, want 2", len(updated))
	}
}
