package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/jsonrepair"
)

type aiRecommendation struct {
	Index      *aiIndex `json:"index"`
	Score      aiScore  `json:"score"`
	Reasoning  string   `json:"reasoning"`
	SizeAdvice string   `json:"sizeAdvice"`
	StylingTip string   `json:"stylingTip"`
	Category   string   `json:"category"`

	// decodeErr is set when the entry itself could not be decoded.
	decodeErr error
}

type aiRecommendationEnvelope struct {
	Recommendations []json.RawMessage `json:"recommendations"`
}

// aiIndex accepts 3 and "3".
type aiIndex int

func (i *aiIndex) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("parse index %q: %w", string(data), err)
	}
	*i = aiIndex(v)
	return nil
}

// aiScore accepts 85, 0.85, "85" and "85%". Fractions in (0,1] are read as percentages of one.
type aiScore float64

func (s *aiScore) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSuffix(strings.TrimSpace(unquoted), "%")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parse score %q: %w", string(data), err)
	}
	if v > 0 && v <= 1 && v != math.Trunc(v) {
		v *= 100
	}
	*s = aiScore(v)
	return nil
}

func (s aiScore) percent() int {
	v := math.Round(float64(s))
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v)
	}
}

// parseRecommendationResponse decodes the AI reply, using salvage recovery
// for truncated output. Entries are decoded one by one; an entry that does
// not decode is returned with decodeErr set so validation can drop it.
func parseRecommendationResponse(text string) ([]aiRecommendation, bool, error) {
	var envelope aiRecommendationEnvelope
	salvaged, err := jsonrepair.Decode(text, &envelope)
	if err != nil {
		return nil, salvaged, domain.WrapError(domain.ErrAIResponseMalformed, "parse recommendations", err)
	}
	entries := make([]aiRecommendation, len(envelope.Recommendations))
	for i, raw := range envelope.Recommendations {
		if err := json.Unmarshal(raw, &entries[i]); err != nil {
			entries[i] = aiRecommendation{decodeErr: err}
		}
	}
	return entries, salvaged, nil
}

// entryRejection returns nil for an acceptable entry.
func entryRejection(entry aiRecommendation, candidates int, minScore int, seenIndex map[int]struct{}) error {
	if entry.decodeErr != nil {
		return domain.WrapError(domain.ErrRecommendationInvalid, "validate entry", entry.decodeErr)
	}
	if entry.Index == nil {
		return domain.WrapError(domain.ErrRecommendationInvalid, "validate entry", fmt.Errorf("missing index"))
	}
	idx := int(*entry.Index)
	if idx < 0 || idx >= candidates {
		return domain.WrapError(domain.ErrRecommendationInvalid, "validate entry", fmt.Errorf("index %d out of range [0,%d)", idx, candidates))
	}
	if _, dup := seenIndex[idx]; dup {
		return domain.WrapError(domain.ErrRecommendationInvalid, "validate entry", fmt.Errorf("duplicate index %d", idx))
	}
	if score := entry.Score.percent(); score < minScore {
		return domain.WrapError(domain.ErrRecommendationInvalid, "validate entry", fmt.Errorf("score %d below minimum %d", score, minScore))
	}
	return nil
}

var (
	_ json.Unmarshaler = (*aiScore)(nil)
	_ json.Unmarshaler = (*aiIndex)(nil)
)
