package services

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/seed"
)

// categoryService serves the shared category catalog and per-user
// preference overlays. The catalog is small and read-heavy, so it is
// cached in memory and reloaded after a reseed.
type categoryService struct {
	db *gorm.DB

	mu     sync.RWMutex
	byID   map[string]models.Category
	byName map[string]models.Category
	sorted []models.Category
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// loadCatalog fills the cache from the database. Callers must not hold
// the lock.
func (s *categoryService) loadCatalog() error {
	var categories []models.Category
	if err := s.db.Preload("Rules").Order("name asc").Find(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byID := make(map[string]models.Category, len(categories))
	byName := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
		byName[c.Name] = c
	}

	s.mu.Lock()
	s.byID = byID
	s.byName = byName
	s.sorted = categories
	s.mu.Unlock()
	return nil
}

func (s *categoryService) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.byID != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.loadCatalog()
}

func (s *categoryService) invalidate() {
	s.mu.Lock()
	s.byID = nil
	s.byName = nil
	s.sorted = nil
	s.mu.Unlock()
}

// ListCategories returns the full catalog ordered by name.
func (s *categoryService) ListCategories() ([]models.Category, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.sorted) == 0 {
		return nil, apperrors.ErrNoCategories
	}
	out := make([]models.Category, len(s.sorted))
	copy(out, s.sorted)
	return out, nil
}

// GetCategory looks a category up by its slug ID.
func (s *categoryService) GetCategory(id string) (*models.Category, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}
	return &c, nil
}

// GetCategoryByName looks a category up by its display name.
func (s *categoryService) GetCategoryByName(name string) (*models.Category, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byName[name]
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}
	return &c, nil
}

// UpsertPreference creates or updates a user's overlay for a category.
// Passing nil for both fields clears nothing; each field overwrites the
// stored value, including back to null.
func (s *categoryService) UpsertPreference(userID, categoryID string, customPriority *int, monthlyLimit *decimal.Decimal) (*models.UserCategoryPreference, error) {
	if _, err := s.GetCategory(categoryID); err != nil {
		return nil, err
	}
	if customPriority != nil && (*customPriority < 1 || *customPriority > 10) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "custom priority must be between 1 and 10")
	}
	if monthlyLimit != nil && monthlyLimit.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "monthly limit cannot be negative")
	}

	pref := &models.UserCategoryPreference{
		UserID:         userID,
		CategoryID:     categoryID,
		CustomPriority: customPriority,
	}
	if monthlyLimit != nil {
		pref.MonthlyLimit = decimal.NullDecimal{Decimal: *monthlyLimit, Valid: true}
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"custom_priority", "monthly_limit", "updated_at"}),
	}).Create(pref).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pref, nil
}

// GetUserPreferences returns all preference overlays for a user.
func (s *categoryService) GetUserPreferences(userID string) ([]models.UserCategoryPreference, error) {
	var prefs []models.UserCategoryPreference
	if err := s.db.Where("user_id = ?", userID).Find(&prefs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return prefs, nil
}

// Reseed replaces the catalog and its rules with the built-in seed data
// and reloads the cache. Returns the number of categories written.
func (s *categoryService) Reseed() (int, error) {
	catalog := seed.Catalog()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.CategoryRule{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		for i := range catalog {
			if err := tx.Create(&catalog[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return 0, apperrors.Wrap(apperrors.ErrConflict, err)
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.invalidate()
	if err := s.loadCatalog(); err != nil {
		return 0, err
	}
	return len(catalog), nil
}
