package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

const (
	promptDescriptionLimit = 200
	maxPromptImages        = 20
)

const defaultRecommendationSystemPrompt = `You are an expert fashion stylist who matches clothing to body shapes.
You only answer with a single JSON object and never add commentary.`

var colorSeasonGuidance = map[string]string{
	"spring": "Warm, clear and light colors: coral, peach, warm yellow, light camel, turquoise.",
	"summer": "Cool, soft and muted colors: powder blue, lavender, rose, soft grey, dusty pink.",
	"autumn": "Warm, deep and muted colors: rust, olive, mustard, camel, chocolate brown.",
	"winter": "Cool, deep and clear colors: black, pure white, royal blue, emerald, fuchsia.",
}

func systemPromptFor(req domain.RecommendationRequest) string {
	if s := strings.TrimSpace(req.AI.SystemPrompt); s != "" {
		return s
	}
	return defaultRecommendationSystemPrompt
}

func buildRecommendationPrompt(req domain.RecommendationRequest, products []domain.Product, count, minScore int) string {
	var b strings.Builder

	if extra := strings.TrimSpace(req.AI.TaskPrompt); extra != "" {
		b.WriteString(extra)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Body shape: %s\n", req.Shape)
	if m := req.Measurements; m != nil {
		fmt.Fprintf(&b, "Measurements (cm/kg): gender=%s age=%s height=%.1f weight=%.1f bust=%.1f waist=%.1f hips=%.1f shoulders=%.1f\n",
			m.Gender, valueOr(m.AgeBracket, "unknown"), m.Height, m.Weight, m.Bust, m.Waist, m.Hips, m.Shoulders)
	}
	if guidance, ok := colorSeasonGuidance[strings.ToLower(strings.TrimSpace(req.ColorSeason))]; ok {
		fmt.Fprintf(&b, "Color season: %s. Prefer %s\n", strings.ToLower(req.ColorSeason), guidance)
	}

	b.WriteString("\nProducts:\n")
	for i, product := range products {
		fmt.Fprintf(&b, "[%d] title=%q type=%q tags=%q price=%.2f description=%q",
			i,
			product.Title,
			product.ProductType,
			strings.Join(product.Tags, ", "),
			product.Price,
			truncateRunes(product.Description, promptDescriptionLimit),
		)
		if req.ImageAnalysis {
			if img := product.PrimaryImage(); img != "" {
				fmt.Fprintf(&b, " image=%s", img)
			}
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, `
Task:
Select exactly %d products that best suit the body shape above (fewer only if not enough products qualify).
Rules:
- Every entry must reference a unique product index from the list; never repeat an index.
- Only include products with a suitability score of at least %d on a 0-100 scale.
- Every entry needs its own reasoning and styling tip; do not reuse text between entries.
- Order entries from best to worst match.

Return ONLY this JSON object:
{"recommendations":[{"index":0,"score":85,"reasoning":"...","sizeAdvice":"...","stylingTip":"..."}]}
`, count, minScore)

	return b.String()
}

func promptImages(req domain.RecommendationRequest, products []domain.Product) []string {
	if !req.ImageAnalysis {
		return nil
	}
	out := make([]string, 0, maxPromptImages)
	for _, product := range products {
		if len(out) >= maxPromptImages {
			break
		}
		if img := product.PrimaryImage(); img != "" {
			out = append(out, img)
		}
	}
	return out
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
