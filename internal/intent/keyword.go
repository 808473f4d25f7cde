package intent

import (
	"context"
	"strings"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/models"
)

var (
	checkoutKeywords  = []string{"결제", "계산", "주문 완료", "끝"}
	backKeywords      = []string{"뒤로", "취소", "돌아가"}
	hotKeywords       = []string{"따뜻", "뜨거", "핫"}
	iceKeywords       = []string{"차가", "아이스", "시원"}
	addToCartKeywords = []string{"담아", "장바구니", "이걸로"}
)

// KeywordMatcher is the deterministic local classifier. It never fails.
type KeywordMatcher struct {
	catalog *catalog.Catalog
}

// NewKeywordMatcher creates a keyword matcher over the catalog's keywords
func NewKeywordMatcher(c *catalog.Catalog) *KeywordMatcher {
	return &KeywordMatcher{catalog: c}
}

// Match applies the fixed precedence: checkout, back, hot, ice, add-to-cart,
// menu item, unknown. The first group with a hit decides the intent.
func (m *KeywordMatcher) Match(utterance string) models.VoiceIntent {
	text := strings.ToLower(utterance)

	switch {
	case containsAny(text, checkoutKeywords):
		return models.VoiceIntent{Action: models.ActionCheckout}
	case containsAny(text, backKeywords):
		return models.VoiceIntent{Action: models.ActionGoBack}
	case containsAny(text, hotKeywords):
		return models.VoiceIntent{Action: models.ActionSelectHot}
	case containsAny(text, iceKeywords):
		return models.VoiceIntent{Action: models.ActionSelectIce}
	case containsAny(text, addToCartKeywords):
		return models.VoiceIntent{Action: models.ActionAddToCart}
	}

	if item, ok := m.catalog.MatchKeyword(text); ok {
		temp := models.Hot
		if containsAny(text, iceKeywords) {
			temp = models.Ice
		}
		return models.VoiceIntent{
			Action:      models.ActionAddOrder,
			Item:        item.Name,
			Temperature: temp,
		}
	}

	return models.Unknown()
}

// Classify implements Classifier
func (m *KeywordMatcher) Classify(_ context.Context, utterance string) (models.VoiceIntent, error) {
	return m.Match(utterance), nil
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
