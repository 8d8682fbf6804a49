package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/eatsential/eatsential-backend/internal/logger"
	"github.com/eatsential/eatsential-backend/internal/types"
)

type RestaurantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, restaurant *types.Restaurant) (*types.Restaurant, error)
	Save(ctx context.Context, tx *gorm.DB, restaurant *types.Restaurant) (*types.Restaurant, error)
	// GetByIDOrName resolves an existing catalog row by place id first,
	// falling back to an exact name match.
	GetByIDOrName(ctx context.Context, tx *gorm.DB, placeID, name string) (*types.Restaurant, error)
	// ListActiveWithMenus returns all active restaurants with menu items and
	// their allergen tags preloaded.
	ListActiveWithMenus(ctx context.Context, tx *gorm.DB) ([]*types.Restaurant, error)
	// ListByIDsWithMenus returns active restaurants among the given place ids
	// with menu items and allergen tags preloaded.
	ListByIDsWithMenus(ctx context.Context, tx *gorm.DB, placeIDs []string) ([]*types.Restaurant, error)
}

type restaurantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRestaurantRepo(db *gorm.DB, baseLog *logger.Logger) RestaurantRepo {
	repoLog := baseLog.With("repo", "RestaurantRepo")
	return &restaurantRepo{db: db, log: repoLog}
}

func (rr *restaurantRepo) Create(ctx context.Context, tx *gorm.DB, restaurant *types.Restaurant) (*types.Restaurant, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if err := transaction.WithContext(ctx).Create(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (rr *restaurantRepo) Save(ctx context.Context, tx *gorm.DB, restaurant *types.Restaurant) (*types.Restaurant, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if err := transaction.WithContext(ctx).Save(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (rr *restaurantRepo) GetByIDOrName(ctx context.Context, tx *gorm.DB, placeID, name string) (*types.Restaurant, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var result types.Restaurant
	if err := transaction.WithContext(ctx).
		Where("id = ? OR name = ?", placeID, name).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (rr *restaurantRepo) ListActiveWithMenus(ctx context.Context, tx *gorm.DB) ([]*types.Restaurant, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Restaurant
	if err := transaction.WithContext(ctx).
		Preload("MenuItems.Allergens").
		Where("is_active = ?", true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *restaurantRepo) ListByIDsWithMenus(ctx context.Context, tx *gorm.DB, placeIDs []string) ([]*types.Restaurant, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Restaurant
	if len(placeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("MenuItems.Allergens").
		Where("id IN ?", placeIDs).
		Where("is_active = ?", true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
