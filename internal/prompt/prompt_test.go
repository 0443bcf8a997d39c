package prompt

import (
	"errors"
	"strings"
	"testing"
)

func testProfile() Profile {
	return Profile{Gender: "Female", Age: 28, Size: "M", CultureStyle: "Western", DressStyle: "Formal"}
}

func TestStylingReport_Sections(t *testing.T) {
	p := StylingReport(testProfile(), false)

	for _, want := range []string{
		"You are an expert fashion stylist",
		"- Gender: Female",
		"- Age: 28",
		"- Size: M",
		"- Cultural Style: Western",
		"- Desired Style: Formal",
		"1. OUTFIT RECOMMENDATIONS (5 outfits):",
		"2. COLOUR PALETTE (3 combinations):",
		"3. ACCESSORIES (2 suggestions):",
		"4. STYLING TIP:",
		"Be warm, specific, and encouraging.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestStylingReport_PhotoClauses(t *testing.T) {
	without := StylingReport(testProfile(), false)
	with := StylingReport(testProfile(), true)

	if strings.Contains(without, "photo") {
		t.Error("prompt without photo must not mention the photo")
	}
	if !strings.Contains(with, "Carefully study the uploaded photo") {
		t.Error("prompt with photo must ask to study the photo")
	}
	if !strings.Contains(with, "One powerful personalised tip based on the photo.") {
		t.Error("styling tip must mention the photo when one is supplied")
	}
	if !strings.Contains(without, "One powerful personalised tip.") {
		t.Error("styling tip without photo should end plainly")
	}
}

func TestSalesPitch(t *testing.T) {
	p, err := SalesPitch("Linen summer suit", "")
	if err != nil {
		t.Fatalf("SalesPitch returned error: %v", err)
	}
	for _, want := range []string{
		"Outfit/Collection: Linen summer suit",
		"Target Customer: " + DefaultCustomer,
		"1. ELEVATOR PITCH",
		"2. VALUE PROPOSITION",
		"3. KEY DIFFERENTIATORS: 3 standout features.",
		"4. CALL TO ACTION",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	p, err = SalesPitch("Suit", "Young professionals")
	if err != nil {
		t.Fatalf("SalesPitch returned error: %v", err)
	}
	if !strings.Contains(p, "Target Customer: Young professionals") {
		t.Error("explicit customer must be used")
	}
}

func TestSalesPitch_EmptyProduct(t *testing.T) {
	for _, product := range []string{"", "   "} {
		p, err := SalesPitch(product, "anyone")
		var missing *MissingInputError
		if !errors.As(err, &missing) {
			t.Fatalf("SalesPitch(%q): expected MissingInputError, got %v", product, err)
		}
		if missing.Advisory != "Please enter an outfit or collection description." {
			t.Errorf("Advisory = %q", missing.Advisory)
		}
		if p != "" {
			t.Errorf("expected empty prompt, got %q", p)
		}
	}
}

func TestLeadScore_AlwaysBuilds(t *testing.T) {
	p := LeadScore(Lead{Name: "Customer", Budget: "Not specified", Need: "Wedding", Urgency: "2 weeks"})

	for _, want := range []string{
		"Customer: Customer | Budget: Not specified | Occasion: Wedding | Timeline: 2 weeks",
		"1. Budget Fit (0-25 pts)",
		"2. Occasion Fit (0-25 pts)",
		"3. Urgency Score (0-25 pts)",
		"4. Personalisation (0-25 pts)",
		"TOTAL SCORE: X / 100",
		"TIER: HOT (90-100) / WARM (75-89) / MODERATE (60-74) / COLD (below 60)",
		"Match probability: X%",
		"One personalised styling suggestion",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if LeadScore(Lead{}) == "" {
		t.Error("LeadScore must always produce a prompt")
	}
}

func TestCampaign(t *testing.T) {
	p, err := Campaign("Autumn knitwear", "", "TikTok")
	if err != nil {
		t.Fatalf("Campaign returned error: %v", err)
	}
	for _, want := range []string{
		"Product: Autumn knitwear | Audience: " + DefaultAudience + " | Platform: TikTok",
		"1. CAMPAIGN OBJECTIVE",
		"2. 5 CONTENT IDEAS for TikTok",
		"3. 3 AD COPIES (Emotional / Trend-focused / Urgency-driven)",
		"4. 3 CALL-TO-ACTION options",
		"5. HASHTAGS: 6-8 targeted hashtags",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestCampaign_EmptyProduct(t *testing.T) {
	_, err := Campaign(" ", "Gen Z", "Instagram")
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingInputError, got %v", err)
	}
	if missing.Advisory != "Please enter a product or collection name." {
		t.Errorf("Advisory = %q", missing.Advisory)
	}
}
