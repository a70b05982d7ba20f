package service

import (
	"context"
	"strings"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/repository"
)

// MenuService handles business logic for the menu
type MenuService struct {
	repo repository.MenuRepository
}

// NewMenuService creates a new menu service
func NewMenuService(repo repository.MenuRepository) *MenuService {
	return &MenuService{
		repo: repo,
	}
}

// ListItems returns the menu, optionally narrowed to one category
func (s *MenuService) ListItems(ctx context.Context, category string) ([]models.MenuItem, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return items, nil
	}

	filtered := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(item.Category, category) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// GetItem returns a menu item by ID
func (s *MenuService) GetItem(ctx context.Context, id string) (*models.MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}
