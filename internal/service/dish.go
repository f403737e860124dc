package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
)

// ErrDishNotFound is returned when a dish id does not exist.
var ErrDishNotFound = errors.New("dish not found")

// DefaultSearchLimit caps dish search results when the caller gives no limit.
const DefaultSearchLimit = 100

// DishFilter narrows a dish search. Exclude drops dishes whose name or
// ingredients contain any of the keywords.
type DishFilter struct {
	Query   string
	Cuisine string
	Exclude []string
	Limit   int
	Offset  int
}

// DishService handles dish catalog operations
type DishService struct {
	db *gorm.DB
}

// NewDishService creates a new DishService instance
func NewDishService(db *gorm.DB) *DishService {
	return &DishService{db: db}
}

// CreateDish creates a new dish
func (s *DishService) CreateDish(ctx context.Context, dish *model.Dish) (*model.Dish, error) {
	if err := s.db.WithContext(ctx).Create(dish).Error; err != nil {
		return nil, err
	}
	return dish, nil
}

// GetDish retrieves a dish by ID
func (s *DishService) GetDish(ctx context.Context, id uuid.UUID) (*model.Dish, error) {
	var dish model.Dish
	if err := s.db.WithContext(ctx).First(&dish, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	return &dish, nil
}

// UpdateDish replaces the mutable fields of a dish.
func (s *DishService) UpdateDish(ctx context.Context, id uuid.UUID, dish *model.Dish) (*model.Dish, error) {
	res := s.db.WithContext(ctx).Model(&model.Dish{}).Where("id = ?", id).Select(
		"name", "cuisine", "prep_minutes", "calories", "ingredients", "cost", "shelf_life_days", "tags", "nutrition",
	).Updates(dish)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDishNotFound
	}
	return s.GetDish(ctx, id)
}

// DeleteDish deletes a dish
func (s *DishService) DeleteDish(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.Dish{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDishNotFound
	}
	return nil
}

// SearchDishes lists dishes matching the filter, oldest first.
func (s *DishService) SearchDishes(ctx context.Context, filter DishFilter) ([]*model.Dish, error) {
	query := s.db.WithContext(ctx).Model(&model.Dish{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		like := containsPattern(q)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER("+s.ingredientsText()+") LIKE ? ESCAPE '\\'", like, like)
	}
	if c := strings.TrimSpace(filter.Cuisine); c != "" {
		query = query.Where("LOWER(cuisine) = ?", strings.ToLower(c))
	}
	for _, ex := range filter.Exclude {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}
		like := containsPattern(ex)
		query = query.Where("LOWER(name) NOT LIKE ? ESCAPE '\\' AND LOWER("+s.ingredientsText()+") NOT LIKE ? ESCAPE '\\'", like, like)
	}

	limit := filter.Limit
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	var dishes []*model.Dish
	if err := query.Order("created_at ASC").Order("id ASC").Limit(limit).Offset(filter.Offset).Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

// GetDishesByIDs loads dishes in the order of ids. Any unknown id fails the
// whole lookup with ErrDishNotFound.
func (s *DishService) GetDishesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Dish, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []*model.Dish
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Dish, len(found))
	for _, d := range found {
		byID[d.ID] = d
	}

	out := make([]*model.Dish, 0, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDishNotFound, id)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *DishService) ingredientsText() string {
	if s.db.Dialector.Name() == "postgres" {
		return "ingredients::text"
	}
	return "ingredients"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term literally as a
// lowercase substring.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
