package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
)

const (
	CategoryDresses = "dresses"
	CategoryTops    = "tops"
	CategoryBottoms = "bottoms"
	CategoryGeneral = "general"
)

const (
	baseScore              = 0.5
	favorableKeywordWeight = 0.15
	favorableCategoryBoost = 0.2
	neutralCategoryBoost   = 0.05
	avoidCategoryPenalty   = 0.2
)

type scoringProfile struct {
	favorable           []string
	favorableCategories []string
	neutralCategories   []string
	avoidCategories     []string
}

var scoringProfiles = map[string]scoringProfile{
	domain.ShapePear: {
		favorable:           []string{"a-line", "wide-leg", "boat neck", "bootcut", "flare", "off-shoulder", "embellished"},
		favorableCategories: []string{"skirt", "blouse", "top"},
		neutralCategories:   []string{"dress", "jacket"},
		avoidCategories:     []string{"legging", "skinny"},
	},
	domain.ShapeApple: {
		favorable:           []string{"empire", "v-neck", "wrap", "flowy", "tunic", "straight leg", "bootcut"},
		favorableCategories: []string{"tunic", "dress"},
		neutralCategories:   []string{"cardigan", "jacket"},
		avoidCategories:     []string{"crop", "belt"},
	},
	domain.ShapeHourglass: {
		favorable:           []string{"wrap", "fitted", "belted", "tailored", "pencil", "high-waist"},
		favorableCategories: []string{"dress", "skirt"},
		neutralCategories:   []string{"top", "jeans"},
		avoidCategories:     []string{"tunic", "poncho"},
	},
	domain.ShapeInvertedTriangle: {
		favorable:           []string{"a-line", "wide-leg", "v-neck", "raglan", "flare", "full skirt"},
		favorableCategories: []string{"skirt", "pants", "trousers"},
		neutralCategories:   []string{"dress"},
		avoidCategories:     []string{"halter"},
	},
	domain.ShapeRectangle: {
		favorable:           []string{"peplum", "belted", "ruffle", "layered", "pleated", "wrap"},
		favorableCategories: []string{"top", "skirt"},
		neutralCategories:   []string{"dress", "pants"},
		avoidCategories:     []string{"shift"},
	},
	domain.ShapeVShape: {
		favorable:           []string{"slim fit", "tapered", "v-neck", "straight leg", "crew neck"},
		favorableCategories: []string{"shirt", "t-shirt", "polo"},
		neutralCategories:   []string{"pants", "jeans"},
		avoidCategories:     []string{"tank"},
	},
	domain.ShapeOval: {
		favorable:           []string{"vertical", "dark", "structured", "straight leg", "longline", "single-breasted"},
		favorableCategories: []string{"jacket", "blazer", "shirt"},
		neutralCategories:   []string{"pants", "trousers"},
		avoidCategories:     []string{"bodysuit", "tight"},
	},
}

// KeywordScorer is the canonical additive formula: base 0.5, +0.15 per
// favorable keyword, +0.2 per favorable category, +0.05 per neutral
// category, -0.2 per avoid category, clamped to [0,1]. Hybrid shapes take
// the best score across their components.
type KeywordScorer struct{}

func (KeywordScorer) Score(product domain.Product, shape string) float64 {
	text := product.SearchText()
	categoryText := categoryHaystack(product)

	best := math.Inf(-1)
	for _, component := range domain.ShapeComponents(shape) {
		profile, ok := scoringProfiles[component]
		if !ok {
			best = math.Max(best, baseScore)
			continue
		}
		score := baseScore
		score += favorableKeywordWeight * float64(countMatches(text, profile.favorable))
		score += favorableCategoryBoost * float64(countMatches(categoryText, profile.favorableCategories))
		score += neutralCategoryBoost * float64(countMatches(categoryText, profile.neutralCategories))
		score -= avoidCategoryPenalty * float64(countMatches(categoryText, profile.avoidCategories))
		best = math.Max(best, clamp01(score))
	}
	if math.IsInf(best, -1) {
		return baseScore
	}
	return best
}

// MatchFractionScorer scores by the share of favorable keywords present.
// Kept as an alternate strategy for comparisons; not used in production wiring.
type MatchFractionScorer struct{}

func (MatchFractionScorer) Score(product domain.Product, shape string) float64 {
	text := product.SearchText()
	best := 0.0
	for _, component := range domain.ShapeComponents(shape) {
		profile, ok := scoringProfiles[component]
		if !ok || len(profile.favorable) == 0 {
			continue
		}
		fraction := float64(countMatches(text, profile.favorable)) / float64(len(profile.favorable))
		best = math.Max(best, fraction)
	}
	return best
}

// SuitabilityScorer wraps a scoring strategy with the category, size and
// reasoning helpers used by both the fallback ranking and AI enrichment.
type SuitabilityScorer struct {
	strategy ports.Scorer
}

func NewSuitabilityScorer(strategy ports.Scorer) *SuitabilityScorer {
	if strategy == nil {
		strategy = KeywordScorer{}
	}
	return &SuitabilityScorer{strategy: strategy}
}

func (s *SuitabilityScorer) Score(product domain.Product, shape string) float64 {
	return clamp01(s.strategy.Score(product, shape))
}

// Category classifies by substring, first match wins.
func (s *SuitabilityScorer) Category(product domain.Product) string {
	text := categoryHaystack(product) + " " + strings.ToLower(product.Title)
	switch {
	case strings.Contains(text, "dress"):
		return CategoryDresses
	case strings.Contains(text, "top"), strings.Contains(text, "shirt"), strings.Contains(text, "blouse"):
		return CategoryTops
	case strings.Contains(text, "pant"), strings.Contains(text, "jean"), strings.Contains(text, "trouser"):
		return CategoryBottoms
	default:
		return CategoryGeneral
	}
}

func (s *SuitabilityScorer) SizeAdvice(shape, category string) string {
	for _, component := range domain.ShapeComponents(shape) {
		if advice, ok := sizeAdvice[sizeKey{shape: component, category: category}]; ok {
			return advice
		}
	}
	return defaultSizeAdvice
}

func (s *SuitabilityScorer) Reasoning(product domain.Product, shape string, score float64) string {
	switch {
	case score > 0.7:
		return fmt.Sprintf("%s is an excellent match for a %s figure: its cut and details work with your proportions.", product.Title, shape)
	case score > 0.5:
		return fmt.Sprintf("%s is a good match for a %s figure and should flatter your shape.", product.Title, shape)
	default:
		return fmt.Sprintf("%s is suitable for a %s figure; consider your personal style preference.", product.Title, shape)
	}
}

func (s *SuitabilityScorer) StylingTip(category string) string {
	if tip, ok := stylingTips[category]; ok {
		return tip
	}
	return stylingTips[CategoryGeneral]
}

// Rank is the deterministic fallback ranking: threshold on the 0-100 scale,
// stable descending sort (ties keep catalog order), one entry per product,
// truncated to count.
func (s *SuitabilityScorer) Rank(products []domain.Product, shape string, count, minScore int) []domain.Recommendation {
	if count <= 0 || len(products) == 0 {
		return []domain.Recommendation{}
	}

	type scored struct {
		product domain.Product
		raw     float64
		score   int
	}
	candidates := make([]scored, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, product := range products {
		if _, dup := seen[product.ID]; dup {
			continue
		}
		seen[product.ID] = struct{}{}

		raw := s.Score(product, shape)
		score := ToPercent(raw)
		if score < minScore {
			continue
		}
		candidates = append(candidates, scored{product: product, raw: raw, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].raw > candidates[j].raw
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}

	out := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		category := s.Category(c.product)
		out = append(out, domain.Recommendation{
			Product:         c.product,
			Score:           c.score,
			RecommendedSize: s.SizeAdvice(shape, category),
			Reasoning:       s.Reasoning(c.product, shape, c.raw),
			Category:        category,
			StylingTip:      s.StylingTip(category),
		})
	}
	return out
}

// ToPercent maps a [0,1] score onto the public 0-100 scale.
func ToPercent(score float64) int {
	return int(math.Round(clamp01(score) * 100))
}

func categoryHaystack(product domain.Product) string {
	return strings.ToLower(product.ProductType + " " + strings.Join(product.Tags, " "))
}

func countMatches(haystack string, needles []string) int {
	n := 0
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
