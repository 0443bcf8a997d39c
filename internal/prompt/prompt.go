// Package prompt は外部LLMに渡すプロンプトを組み立てる。
// 見出し名（OUTFIT RECOMMENDATIONS など）はフロントエンドの表示整形が前提にしているため変更しないこと。
package prompt

import (
	"fmt"
	"strings"
)

// 入力が空の場合のプロンプト上の既定値
const (
	DefaultCustomer = "Fashion-forward individuals"
	DefaultAudience = "Fashion enthusiasts"
)

// MissingInputError は必須項目が空の場合に返される。
// Advisoryは利用者にそのまま返す文言で、この場合LLMは呼び出さない。
type MissingInputError struct {
	Field    string
	Advisory string
}

// Error はerrorインターフェースを実装する。
func (e *MissingInputError) Error() string {
	return "missing required input: " + e.Field
}

// Profile はスタイリングレポートの入力。
type Profile struct {
	Gender       string
	Age          int
	Size         string
	CultureStyle string
	DressStyle   string
}

// Lead はリードスコアの入力。
type Lead struct {
	Name    string
	Budget  string
	Need    string
	Urgency string
}

// StylingReport はコーディネート提案のプロンプトを組み立てる。
// 写真がある場合のみ、写真を観察する指示とスタイリングTipでの写真への言及を加える。
func StylingReport(p Profile, hasPhoto bool) string {
	photoClause := ""
	tipSuffix := ""
	if hasPhoto {
		photoClause = "Carefully study the uploaded photo — note skin tone, body type, hair, and current style."
		tipSuffix = " based on the photo"
	}

	return "You are an expert fashion stylist with deep knowledge of global trends.\n" +
		photoClause + "\n\n" +
		"Customer Profile:\n" +
		"- Gender: " + p.Gender + "\n" +
		fmt.Sprintf("- Age: %d\n", p.Age) +
		"- Size: " + p.Size + "\n" +
		"- Cultural Style: " + p.CultureStyle + "\n" +
		"- Desired Style: " + p.DressStyle + "\n\n" +
		"Provide a complete personalised styling report:\n\n" +
		"1. OUTFIT RECOMMENDATIONS (5 outfits):\n" +
		"   Name, description of top/bottom/shoes, and why it suits this person.\n\n" +
		"2. COLOUR PALETTE (3 combinations):\n" +
		"   Primary, secondary, accent — and why they work for this profile.\n\n" +
		"3. ACCESSORIES (2 suggestions):\n" +
		"   Specific items with brands if possible.\n\n" +
		"4. STYLING TIP:\n" +
		"   One powerful personalised tip" + tipSuffix + ".\n\n" +
		"Be warm, specific, and encouraging."
}

// SalesPitch はセールスピッチのプロンプトを組み立てる。
// productが空の場合は *MissingInputError を返す。
func SalesPitch(product, customer string) (string, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return "", &MissingInputError{
			Field:    "product",
			Advisory: "Please enter an outfit or collection description.",
		}
	}

	return "You are a luxury fashion copywriter.\n" +
		"Outfit/Collection: " + product + "\n" +
		"Target Customer: " + orDefault(customer, DefaultCustomer) + "\n\n" +
		"Write a compelling fashion pitch:\n" +
		"1. ELEVATOR PITCH: 2-3 vivid sentences.\n" +
		"2. VALUE PROPOSITION: Why this is perfect for this customer.\n" +
		"3. KEY DIFFERENTIATORS: 3 standout features.\n" +
		"4. CALL TO ACTION: A warm, motivating closing line.", nil
}

// LeadScore はリードスコアのプロンプトを組み立てる。必須項目はない。
// スコアの合計やTIERの判定はモデル側で行い、ここでは検証しない。
func LeadScore(l Lead) string {
	return "You are an AI fashion consultant.\n" +
		"Customer: " + l.Name + " | Budget: " + l.Budget + " | Occasion: " + l.Need + " | Timeline: " + l.Urgency + "\n\n" +
		"Give a STYLE FIT SCORE (0-100):\n" +
		"1. Budget Fit (0-25 pts)\n" +
		"2. Occasion Fit (0-25 pts)\n" +
		"3. Urgency Score (0-25 pts)\n" +
		"4. Personalisation (0-25 pts)\n\n" +
		"Include:\n" +
		"- TOTAL SCORE: X / 100\n" +
		"- One-sentence reasoning per dimension\n" +
		"- TIER: HOT (90-100) / WARM (75-89) / MODERATE (60-74) / COLD (below 60)\n" +
		"- Match probability: X%\n" +
		"- One personalised styling suggestion"
}

// Campaign はマーケティングキャンペーンのプロンプトを組み立てる。
// productが空の場合は *MissingInputError を返す。
func Campaign(product, audience, platform string) (string, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return "", &MissingInputError{
			Field:    "product",
			Advisory: "Please enter a product or collection name.",
		}
	}

	return "You are a fashion marketing strategist.\n" +
		"Product: " + product + " | Audience: " + orDefault(audience, DefaultAudience) + " | Platform: " + platform + "\n\n" +
		"Create a full marketing campaign:\n" +
		"1. CAMPAIGN OBJECTIVE\n" +
		"2. 5 CONTENT IDEAS for " + platform + "\n" +
		"3. 3 AD COPIES (Emotional / Trend-focused / Urgency-driven)\n" +
		"4. 3 CALL-TO-ACTION options\n" +
		"5. HASHTAGS: 6-8 targeted hashtags", nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
