package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/eatsential/eatsential-backend/internal/logger"
	"github.com/eatsential/eatsential-backend/internal/types"
)

type MenuItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*types.MenuItem) ([]*types.MenuItem, error)
	// ListActive returns menu items of all active restaurants with the owning
	// restaurant and allergen tags preloaded.
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.MenuItem, error)
	// ListByRestaurantIDs returns menu items of the given active restaurants.
	ListByRestaurantIDs(ctx context.Context, tx *gorm.DB, restaurantIDs []string) ([]*types.MenuItem, error)
}

type menuItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMenuItemRepo(db *gorm.DB, baseLog *logger.Logger) MenuItemRepo {
	repoLog := baseLog.With("repo", "MenuItemRepo")
	return &menuItemRepo{db: db, log: repoLog}
}

func (mr *menuItemRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.MenuItem) ([]*types.MenuItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(items) == 0 {
		return []*types.MenuItem{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (mr *menuItemRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.MenuItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.MenuItem
	if err := transaction.WithContext(ctx).
		Preload("Restaurant").
		Preload("Allergens").
		Joins("JOIN restaurants ON restaurants.id = menu_items.restaurant_id").
		Where("restaurants.is_active = ?", true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *menuItemRepo) ListByRestaurantIDs(ctx context.Context, tx *gorm.DB, restaurantIDs []string) ([]*types.MenuItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.MenuItem
	if len(restaurantIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Restaurant").
		Preload("Allergens").
		Joins("JOIN restaurants ON restaurants.id = menu_items.restaurant_id").
		Where("menu_items.restaurant_id IN ?", restaurantIDs).
		Where("restaurants.is_active = ?", true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
