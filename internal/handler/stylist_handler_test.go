package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hitoshi/styleai/internal/middleware"
	"github.com/hitoshi/styleai/internal/stylist"
)

// --- モック定義 ---

type mockStylistService struct {
	outfitFn   func(ctx context.Context, req stylist.OutfitRequest) stylist.Result
	pitchFn    func(ctx context.Context, req stylist.PitchRequest) stylist.Result
	leadFn     func(ctx context.Context, req stylist.LeadRequest) stylist.Result
	campaignFn func(ctx context.Context, req stylist.CampaignRequest) stylist.Result
}

func (m *mockStylistService) GenerateOutfit(ctx context.Context, req stylist.OutfitRequest) stylist.Result {
	if m.outfitFn != nil {
		return m.outfitFn(ctx, req)
	}
	return stylist.Result{}
}

func (m *mockStylistService) GeneratePitch(ctx context.Context, req stylist.PitchRequest) stylist.Result {
	if m.pitchFn != nil {
		return m.pitchFn(ctx, req)
	}
	return stylist.Result{}
}

func (m *mockStylistService) ScoreLead(ctx context.Context, req stylist.LeadRequest) stylist.Result {
	if m.leadFn != nil {
		return m.leadFn(ctx, req)
	}
	return stylist.Result{}
}

func (m *mockStylistService) GenerateCampaign(ctx context.Context, req stylist.CampaignRequest) stylist.Result {
	if m.campaignFn != nil {
		return m.campaignFn(ctx, req)
	}
	return stylist.Result{}
}

// multipartRequest はフォーム値と任意のファイルを含むmultipartリクエストを作る。
func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// --- テスト ---

func TestStylistHandler_GetRecommendation_PassesFormAndPhoto(t *testing.T) {
	var got stylist.OutfitRequest
	svc := &mockStylistService{
		outfitFn: func(ctx context.Context, req stylist.OutfitRequest) stylist.Result {
			got = req
			return stylist.Result{Text: "STYLE ANALYSIS", PhotoAnalyzed: true}
		},
	}
	h := NewStylistHandler(svc)

	req := multipartRequest(t, "/get_recommendation", map[string]string{
		"gender":        "Female",
		"age":           "28",
		"size":          "M",
		"culture_style": "Western",
		"dress_style":   "Formal",
	}, "photo", "look.png", []byte("fake-image"))
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	w := httptest.NewRecorder()

	h.GetRecommendation(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got.UserID != "user-1" || got.Gender != "Female" || got.Age != 28 || got.CultureStyle != "Western" || got.DressStyle != "Formal" {
		t.Errorf("request = %+v", got)
	}
	if got.Photo == nil || got.Photo.Filename != "look.png" {
		t.Errorf("photo = %+v, want look.png", got.Photo)
	}

	body := decodeBody(t, w)
	if body["result"] != "STYLE ANALYSIS" || body["photo_analyzed"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestStylistHandler_GetRecommendation_EmptyFileName_NoPhoto(t *testing.T) {
	var got stylist.OutfitRequest
	svc := &mockStylistService{
		outfitFn: func(ctx context.Context, req stylist.OutfitRequest) stylist.Result {
			got = req
			return stylist.Result{Text: "ok"}
		},
	}
	h := NewStylistHandler(svc)

	req := multipartRequest(t, "/get_recommendation", map[string]string{"gender": "Male"}, "photo", "", nil)
	w := httptest.NewRecorder()

	h.GetRecommendation(w, req)

	if got.Photo != nil {
		t.Errorf("photo = %+v, want nil", got.Photo)
	}
	if got.UserID != "" {
		t.Errorf("userID = %q, want anonymous", got.UserID)
	}
	body := decodeBody(t, w)
	if body["photo_analyzed"] != false {
		t.Errorf("photo_analyzed = %v, want false", body["photo_analyzed"])
	}
}

func TestStylistHandler_GetRecommendation_InvalidAge_ReturnsAdvisory(t *testing.T) {
	svc := &mockStylistService{
		outfitFn: func(ctx context.Context, req stylist.OutfitRequest) stylist.Result {
			t.Error("service should not be called for invalid age")
			return stylist.Result{}
		},
	}
	h := NewStylistHandler(svc)

	req := multipartRequest(t, "/get_recommendation", map[string]string{"age": "twenty"}, "", "", nil)
	w := httptest.NewRecorder()

	h.GetRecommendation(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["result"] != stylist.InvalidAgeMessage {
		t.Errorf("result = %v, want %q", body["result"], stylist.InvalidAgeMessage)
	}
	if body["photo_analyzed"] != false {
		t.Errorf("photo_analyzed = %v, want false", body["photo_analyzed"])
	}
}

func TestStylistHandler_GeneratePitch_URLEncoded(t *testing.T) {
	var got stylist.PitchRequest
	svc := &mockStylistService{
		pitchFn: func(ctx context.Context, req stylist.PitchRequest) stylist.Result {
			got = req
			return stylist.Result{Text: "ELEVATOR PITCH"}
		},
	}
	h := NewStylistHandler(svc)

	w := httptest.NewRecorder()
	h.GeneratePitch(w, formRequest("/generate_pitch", url.Values{
		"product":  {"Silk evening dress"},
		"customer": {"Gala attendees"},
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got.Product != "Silk evening dress" || got.Customer != "Gala attendees" {
		t.Errorf("request = %+v", got)
	}
	body := decodeBody(t, w)
	if body["result"] != "ELEVATOR PITCH" {
		t.Errorf("result = %v", body["result"])
	}
	if _, ok := body["photo_analyzed"]; ok {
		t.Error("pitch response should not contain photo_analyzed")
	}
}

func TestStylistHandler_GeneratePitch_IgnoresQueryString(t *testing.T) {
	var got stylist.PitchRequest
	svc := &mockStylistService{
		pitchFn: func(ctx context.Context, req stylist.PitchRequest) stylist.Result {
			got = req
			return stylist.Result{Text: "ok"}
		},
	}
	h := NewStylistHandler(svc)

	w := httptest.NewRecorder()
	h.GeneratePitch(w, formRequest("/generate_pitch?product=FromQuery", url.Values{}))

	if got.Product != "" {
		t.Errorf("product = %q, want empty", got.Product)
	}
}

func TestStylistHandler_ScoreLead_Defaults(t *testing.T) {
	var got stylist.LeadRequest
	svc := &mockStylistService{
		leadFn: func(ctx context.Context, req stylist.LeadRequest) stylist.Result {
			got = req
			return stylist.Result{Text: "SCORE: 80"}
		},
	}
	h := NewStylistHandler(svc)

	w := httptest.NewRecorder()
	h.ScoreLead(w, formRequest("/lead_score", url.Values{"budget": {"$500"}}))

	if got.Name != stylist.DefaultLeadName || got.Budget != "$500" || got.Need != stylist.DefaultLeadField {
		t.Errorf("request = %+v", got)
	}
	body := decodeBody(t, w)
	if body["result"] != "SCORE: 80" {
		t.Errorf("result = %v", body["result"])
	}
}

func TestStylistHandler_GenerateCampaign(t *testing.T) {
	var got stylist.CampaignRequest
	svc := &mockStylistService{
		campaignFn: func(ctx context.Context, req stylist.CampaignRequest) stylist.Result {
			got = req
			return stylist.Result{Text: "CAMPAIGN OBJECTIVE"}
		},
	}
	h := NewStylistHandler(svc)

	req := multipartRequest(t, "/generate_campaign", map[string]string{
		"product":  "Summer linen",
		"platform": "TikTok",
	}, "", "", nil)
	w := httptest.NewRecorder()

	h.GenerateCampaign(w, req)

	if got.Product != "Summer linen" || got.Platform != "TikTok" || got.Audience != "" {
		t.Errorf("request = %+v", got)
	}
	body := decodeBody(t, w)
	if body["result"] != "CAMPAIGN OBJECTIVE" {
		t.Errorf("result = %v", body["result"])
	}
}

func TestStylistHandler_Oversized_Returns413(t *testing.T) {
	svc := &mockStylistService{
		outfitFn: func(ctx context.Context, req stylist.OutfitRequest) stylist.Result {
			t.Error("service should not be called for oversized body")
			return stylist.Result{}
		},
	}
	h := middleware.NewBodyLimitMiddleware(1024)(http.HandlerFunc(NewStylistHandler(svc).GetRecommendation))

	req := multipartRequest(t, "/get_recommendation", map[string]string{"gender": "Female"},
		"photo", "big.png", bytes.Repeat([]byte("x"), 4096))
	req.ContentLength = -1
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestStylistHandler_OversizedURLEncoded_Returns413(t *testing.T) {
	svc := &mockStylistService{
		leadFn: func(ctx context.Context, req stylist.LeadRequest) stylist.Result {
			t.Error("service should not be called for oversized body")
			return stylist.Result{}
		},
	}
	h := middleware.NewBodyLimitMiddleware(1024)(http.HandlerFunc(NewStylistHandler(svc).ScoreLead))

	req := formRequest("/lead_score", url.Values{"need": {strings.Repeat("a", 4096)}})
	// Content-Lengthなし（chunked）で読み込み時に上限へ達するケース
	req.ContentLength = -1
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
	body := decodeBody(t, w)
	if body["code"] != "PAYLOAD_TOO_LARGE" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestStylistHandler_LargeURLEncodedUnderLimit_Accepted(t *testing.T) {
	const limit = 16 << 20
	need := strings.Repeat("a", 11<<20)

	var got stylist.LeadRequest
	svc := &mockStylistService{
		leadFn: func(ctx context.Context, req stylist.LeadRequest) stylist.Result {
			got = req
			return stylist.Result{Text: "SCORE: 10"}
		},
	}
	h := middleware.NewBodyLimitMiddleware(limit)(http.HandlerFunc(NewStylistHandler(svc).ScoreLead))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, formRequest("/lead_score", url.Values{"name": {"Aiko"}, "need": {need}}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got.Name != "Aiko" || len(got.Need) != len(need) {
		t.Errorf("name = %q, need length = %d, want %d", got.Name, len(got.Need), len(need))
	}
}

func TestStylistHandler_MalformedMultipart_Returns200Error(t *testing.T) {
	h := NewStylistHandler(&mockStylistService{})

	req := httptest.NewRequest(http.MethodPost, "/generate_campaign", strings.NewReader("garbage"))
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()

	h.GenerateCampaign(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	result, _ := body["result"].(string)
	if !strings.HasPrefix(result, "Error: ") || !strings.HasSuffix(result, ". Please try again.") {
		t.Errorf("result = %q", result)
	}
}
