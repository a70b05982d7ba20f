package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrMenuItemNotFound = errors.New("menu item not found")
)

// MenuRepository defines the interface for menu data access
type MenuRepository interface {
	GetAll(ctx context.Context) ([]models.MenuItem, error)
	GetByID(ctx context.Context, id string) (*models.MenuItem, error)
}

// InMemoryMenuRepository holds the current menu snapshot in memory.
// The whole snapshot can be swapped atomically when a new catalog is loaded.
type InMemoryMenuRepository struct {
	mu    sync.RWMutex
	items map[string]models.MenuItem
	order []string
}

// NewInMemoryMenuRepository creates a repository seeded with the house menu
func NewInMemoryMenuRepository() *InMemoryMenuRepository {
	r := &InMemoryMenuRepository{}
	r.Replace(seedMenu())
	return r
}

// Replace swaps the whole menu. Items keep the order they are given in.
func (r *InMemoryMenuRepository) Replace(items []models.MenuItem) {
	byID := make(map[string]models.MenuItem, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := byID[item.ID]; !dup {
			order = append(order, item.ID)
		}
		byID[item.ID] = item.Clone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = byID
	r.order = order
}

// GetAll returns every menu item in menu order
func (r *InMemoryMenuRepository) GetAll(ctx context.Context) ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.items[id].Clone())
	}
	return items, nil
}

// GetByID returns a copy of a menu item by its ID
func (r *InMemoryMenuRepository) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, ErrMenuItemNotFound
	}
	c := item.Clone()
	return &c, nil
}

// Categories returns the distinct categories, sorted
func (r *InMemoryMenuRepository) Categories(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, item := range r.items {
		c := strings.TrimSpace(item.Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func promo(s string) *decimal.Decimal {
	p := price(s)
	return &p
}

// seedMenu is the house menu used when no catalog source is configured
func seedMenu() []models.MenuItem {
	fries := models.SuggestedItem{ID: "fries", Name: "Hand-cut Fries", Price: price("4.00")}
	lemonade := models.SuggestedItem{ID: "lemonade", Name: "House Lemonade", Price: price("3.50")}
	garlicBread := models.SuggestedItem{ID: "garlic-bread", Name: "Garlic Bread", Price: price("5.00"), PromoPrice: promo("3.00"), PromoActive: true}

	return []models.MenuItem{
		{
			ID: "1", Name: "Classic Burger", Category: "Burgers", Available: true,
			Description: "Double smash patty, american cheese, pickles",
			Price:       price("13.99"),
			ModifierGroups: []models.ModifierGroup{
				{
					ID: "doneness", Name: "Doneness", Required: true, MinSelections: 1, MaxSelections: 1,
					Options: []models.ModifierOption{
						{ID: "medium-rare", Name: "Medium Rare", PriceDelta: price("0")},
						{ID: "medium", Name: "Medium", PriceDelta: price("0"), Default: true},
						{ID: "well-done", Name: "Well Done", PriceDelta: price("0")},
					},
				},
				{
					ID: "add-ons", Name: "Add-ons", MaxSelections: 3,
					Options: []models.ModifierOption{
						{ID: "bacon", Name: "Bacon", PriceDelta: price("2.00")},
						{ID: "avocado", Name: "Avocado", PriceDelta: price("1.75")},
						{ID: "fried-egg", Name: "Fried Egg", PriceDelta: price("1.50")},
						{ID: "lettuce-wrap", Name: "Lettuce Wrap (no bun)", PriceDelta: price("-1.00")},
					},
				},
			},
			Upsells: []models.UpsellLink{
				{ID: "burger-fries", SuggestedItem: fries, Message: "Make it a meal"},
				{ID: "burger-lemonade", SuggestedItem: lemonade},
			},
		},
		{
			ID: "2", Name: "Margherita Pizza", Category: "Pizza", Available: true,
			Description: "San Marzano tomato, fior di latte, basil",
			Price:       price("14.99"), PromoPrice: promo("11.99"), PromoActive: true,
			ModifierGroups: []models.ModifierGroup{
				{
					ID: "pizza-size", Name: "Size", Required: true, MinSelections: 1, MaxSelections: 1,
					Options: []models.ModifierOption{
						{ID: "12in", Name: "12 inch", PriceDelta: price("0"), Default: true},
						{ID: "16in", Name: "16 inch", PriceDelta: price("4.00")},
					},
				},
				{
					ID: "pizza-toppings", Name: "Extra Toppings",
					Options: []models.ModifierOption{
						{ID: "mushroom", Name: "Mushroom", PriceDelta: price("1.25")},
						{ID: "pepperoni", Name: "Pepperoni", PriceDelta: price("1.75")},
						{ID: "olives", Name: "Olives", PriceDelta: price("1.00")},
					},
				},
			},
			Upsells: []models.UpsellLink{
				{ID: "pizza-garlic-bread", SuggestedItem: garlicBread, Message: "Add garlic bread for the table"},
			},
		},
		{
			ID: "3", Name: "Caesar Salad", Category: "Salads", Available: true,
			Price: price("9.49"),
			ModifierGroups: []models.ModifierGroup{
				{
					ID: "protein", Name: "Add Protein", MaxSelections: 1,
					Options: []models.ModifierOption{
						{ID: "chicken", Name: "Grilled Chicken", PriceDelta: price("4.00")},
						{ID: "shrimp", Name: "Shrimp", PriceDelta: price("5.50")},
					},
				},
			},
		},
		{
			ID: "4", Name: "Chicken Wings", Category: "Starters", Available: true,
			Price: price("11.00"),
			ModifierGroups: []models.ModifierGroup{
				{
					ID: "sauce", Name: "Sauce", Required: true, MinSelections: 1, MaxSelections: 2,
					Options: []models.ModifierOption{
						{ID: "buffalo", Name: "Buffalo", PriceDelta: price("0")},
						{ID: "honey-garlic", Name: "Honey Garlic", PriceDelta: price("0")},
						{ID: "ghost-pepper", Name: "Ghost Pepper", PriceDelta: price("0.50")},
					},
				},
			},
			Upsells: []models.UpsellLink{
				{ID: "wings-fries", SuggestedItem: fries},
			},
		},
		{
			ID: "5", Name: "Hand-cut Fries", Category: "Sides", Available: true,
			Price: price("4.00"),
		},
		{
			ID: "6", Name: "House Lemonade", Category: "Drinks", Available: true,
			Price: price("3.50"),
		},
		{
			ID: "7", Name: "Tiramisu", Category: "Desserts", Available: false,
			Price: price("7.50"),
		},
	}
}
