package services

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/logger"
	"budgetwise/internal/merchant"
	"budgetwise/internal/models"
)

// Match tier weights for rule scoring. An exact hit is worth the most,
// a loose token overlap the least. Description matches carry secondary
// evidence and are discounted against merchant matches.
const (
	tierExact        = 2.0
	tierContains     = 1.5
	tierContainedIn  = 1.2
	tierTokenOverlap = 0.8

	descriptionFactor  = 0.8
	fallbackConfidence = 0.3
)

// rankingService classifies expenses into categories and maintains the
// per-user merchant overrides that pin a merchant to a category.
type rankingService struct {
	db         *gorm.DB
	categories CategoryServicer

	regexCache sync.Map // pattern string -> *regexp.Regexp, nil for invalid
}

// NewRankingService creates a new RankingServicer.
func NewRankingService(db *gorm.DB, categories CategoryServicer) RankingServicer {
	return &rankingService{db: db, categories: categories}
}

// Classify resolves the most likely category for an expense. A merchant
// override wins unconditionally; otherwise every category's rules are
// scored against the normalized merchant and description, and the score
// gap between the top two candidates becomes the confidence.
func (s *rankingService) Classify(userID, rawMerchant, description string) (*RankingResult, error) {
	normalized := merchant.Normalize(rawMerchant)

	if normalized != "" {
		var override models.UserMerchantOverride
		err := s.db.Where("user_id = ? AND merchant = ?", userID, normalized).First(&override).Error
		if err == nil {
			cat, cerr := s.categories.GetCategory(override.CategoryID)
			if cerr != nil {
				return nil, cerr
			}
			return &RankingResult{
				CategoryID:   cat.ID,
				CategoryName: cat.Name,
				Confidence:   1.0,
				Source:       "override",
			}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	cats, err := s.categories.ListCategories()
	if err != nil {
		return nil, err
	}

	normalizedDesc := merchant.Normalize(description)
	ranked := make([]CategoryScore, 0, len(cats))
	for _, cat := range cats {
		score := s.scoreCategory(cat, normalized, normalizedDesc)
		ranked = append(ranked, CategoryScore{CategoryID: cat.ID, CategoryName: cat.Name, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CategoryName < ranked[j].CategoryName
	})

	if len(ranked) == 0 || ranked[0].Score == 0 {
		return s.fallbackResult(cats)
	}

	s1 := ranked[0].Score
	s2 := 0.0
	if len(ranked) > 1 {
		s2 = ranked[1].Score
	}
	confidence := s1 * (1 - s2/s1)
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}

	alternatives := make([]CategoryScore, 0, len(ranked))
	for _, c := range ranked {
		if c.Score > 0 {
			alternatives = append(alternatives, c)
		}
	}

	return &RankingResult{
		CategoryID:   ranked[0].CategoryID,
		CategoryName: ranked[0].CategoryName,
		Confidence:   confidence,
		Source:       "rules",
		Alternatives: alternatives,
	}, nil
}

// fallbackResult returns the catch-all category at degraded confidence
// when no rule fired. This is a defined result, not an error.
func (s *rankingService) fallbackResult(cats []models.Category) (*RankingResult, error) {
	for _, name := range []string{"Other", "Uncategorized", "Misc"} {
		for _, cat := range cats {
			if cat.Name == name {
				return &RankingResult{
					CategoryID:   cat.ID,
					CategoryName: cat.Name,
					Confidence:   fallbackConfidence,
					Source:       "fallback",
				}, nil
			}
		}
	}
	return nil, apperrors.WithMessage(apperrors.ErrNoCategories, "no fallback category in catalog")
}

// scoreCategory sums rule evidence for one category. Merchant patterns
// are tested against the merchant at full weight and against the
// description at the secondary-evidence discount; keywords only carry
// description evidence.
func (s *rankingService) scoreCategory(cat models.Category, normMerchant, normDesc string) float64 {
	score := 0.0
	for _, rule := range cat.Rules {
		priority := float64(rule.Priority)
		if priority <= 0 {
			priority = 1
		}
		for _, pattern := range rule.MerchantPatterns {
			score += priority * s.tierScore(rule.MatchType, pattern, normMerchant)
			score += priority * s.tierScore(rule.MatchType, pattern, normDesc) * descriptionFactor
		}
		for _, keyword := range rule.Keywords {
			score += priority * s.tierScore(rule.MatchType, keyword, normDesc) * descriptionFactor
		}
	}
	return score
}

// tierScore grades how well a single pattern matches a text. The match
// type scopes which tiers apply: exact rules only ever hit the exact
// tier, regex rules score a compiled match at the contains tier, and
// substring rules walk the full ladder.
func (s *rankingService) tierScore(matchType models.MatchType, pattern, text string) float64 {
	if pattern == "" || text == "" {
		return 0
	}
	pattern = strings.ToLower(pattern)

	switch matchType {
	case models.MatchTypeExact:
		if pattern == text {
			return tierExact
		}
		return 0
	case models.MatchTypeRegex:
		if re := s.compile(pattern); re != nil && re.MatchString(text) {
			return tierContains
		}
		return 0
	}

	switch {
	case pattern == text:
		return tierExact
	case strings.Contains(text, pattern):
		return tierContains
	case strings.Contains(pattern, text):
		return tierContainedIn
	case tokensOverlap(pattern, text):
		return tierTokenOverlap
	}
	return 0
}

func (s *rankingService) compile(pattern string) *regexp.Regexp {
	if cached, ok := s.regexCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Get().Warnw("invalid regex in category rule", "pattern", pattern, "error", err)
		re = nil
	}
	s.regexCache.Store(pattern, re)
	return re
}

func tokensOverlap(a, b string) bool {
	bTokens := make(map[string]struct{})
	for _, t := range strings.Fields(b) {
		bTokens[t] = struct{}{}
	}
	for _, t := range strings.Fields(a) {
		if _, ok := bTokens[t]; ok {
			return true
		}
	}
	return false
}

// HandleCorrection pins a merchant to a category for this user. The pin
// is permanent and unconditional; a later correction simply overwrites
// it. This is the classifier's only learning mechanism.
func (s *rankingService) HandleCorrection(userID, rawMerchant, categoryID string) (*models.UserMerchantOverride, error) {
	normalized := merchant.Normalize(rawMerchant)
	if normalized == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "merchant is required")
	}
	if _, err := s.categories.GetCategory(categoryID); err != nil {
		return nil, err
	}

	override := &models.UserMerchantOverride{
		UserID:     userID,
		Merchant:   normalized,
		CategoryID: categoryID,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "merchant"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_id", "updated_at"}),
	}).Create(override).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return override, nil
}

// GetPriorityOrder returns categories sorted by budgeting priority,
// highest first. A user's custom priority replaces the necessity score
// when one is set.
func (s *rankingService) GetPriorityOrder(userID string) ([]PriorityEntry, error) {
	cats, err := s.categories.ListCategories()
	if err != nil {
		return nil, err
	}
	prefs, err := s.categories.GetUserPreferences(userID)
	if err != nil {
		return nil, err
	}

	custom := make(map[string]int, len(prefs))
	for _, p := range prefs {
		if p.CustomPriority != nil {
			custom[p.CategoryID] = *p.CustomPriority
		}
	}

	entries := make([]PriorityEntry, 0, len(cats))
	for _, cat := range cats {
		entry := PriorityEntry{
			CategoryID:     cat.ID,
			CategoryName:   cat.Name,
			Priority:       cat.NecessityScore,
			NecessityScore: cat.NecessityScore,
		}
		if p, ok := custom[cat.ID]; ok {
			entry.Priority = p
			entry.Customized = true
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].CategoryName < entries[j].CategoryName
	})
	return entries, nil
}
