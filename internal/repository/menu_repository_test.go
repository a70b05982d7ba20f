package repository

import (
	"context"
	"testing"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
)

func TestInMemoryMenuRepository_GetAll(t *testing.T) {
	repo := NewInMemoryMenuRepository()

	items, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 7 {
		t.Fatalf("expected 7 seeded items, got %d", len(items))
	}

	// menu order is preserved
	if items[0].ID != "1" || items[6].ID != "7" {
		t.Errorf("unexpected order: first=%s last=%s", items[0].ID, items[6].ID)
	}
}

func TestInMemoryMenuRepository_GetByIDReturnsCopy(t *testing.T) {
	repo := NewInMemoryMenuRepository()
	ctx := context.Background()

	item, err := repo.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item.Price = price("0.01")
	item.ModifierGroups[1].Options[0].PriceDelta = price("99")

	again, err := repo.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.Price.Equal(price("13.99")) {
		t.Errorf("repository item was mutated through a returned copy: %s", again.Price)
	}
	if !again.ModifierGroups[1].Options[0].PriceDelta.Equal(price("2.00")) {
		t.Errorf("modifier option was mutated through a returned copy")
	}

	if _, err := repo.GetByID(ctx, "999"); err != ErrMenuItemNotFound {
		t.Errorf("expected ErrMenuItemNotFound, got %v", err)
	}
}

func TestInMemoryMenuRepository_Replace(t *testing.T) {
	repo := NewInMemoryMenuRepository()
	ctx := context.Background()

	repo.Replace([]models.MenuItem{
		{ID: "b", Name: "Bao", Category: "Starters", Price: price("6")},
		{ID: "a", Name: "Aperol Spritz", Category: "Drinks", Price: price("11")},
		{ID: "b", Name: "Bao (2pc)", Category: "Starters", Price: price("7")},
	})

	items, _ := repo.GetAll(ctx)
	if len(items) != 2 {
		t.Fatalf("expected 2 items after replace, got %d", len(items))
	}
	if items[0].Name != "Bao (2pc)" {
		t.Errorf("expected later duplicate to win, got %s", items[0].Name)
	}

	cats := repo.Categories(ctx)
	if len(cats) != 2 || cats[0] != "Drinks" || cats[1] != "Starters" {
		t.Errorf("unexpected categories: %v", cats)
	}
}
