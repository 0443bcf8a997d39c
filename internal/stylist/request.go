package stylist

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/hitoshi/styleai/internal/model"
)

// フォーム項目が未入力の場合の既定値
const (
	DefaultGender       = "Not specified"
	DefaultAge          = 25
	DefaultSize         = "M"
	DefaultCultureStyle = "Universal"
	DefaultDressStyle   = "Casual"
	DefaultLeadName     = "Customer"
	DefaultLeadField    = "Not specified"
	DefaultPlatform     = "Instagram"
)

// InvalidAgeMessage はageが整数でない場合に返す案内文。
const InvalidAgeMessage = "Please enter a valid age."

// FormValuer はフォーム値の取得関数。*http.Request.FormValue を渡す。
type FormValuer func(key string) string

// OutfitRequest はコーディネート提案のリクエスト。
type OutfitRequest struct {
	UserID       string
	Gender       string
	Age          int
	Size         string
	CultureStyle string
	DressStyle   string
	Photo        *multipart.FileHeader
}

// PitchRequest はセールスピッチのリクエスト。Productは必須。
type PitchRequest struct {
	UserID   string
	Product  string
	Customer string
}

// LeadRequest はリードスコアのリクエスト。
type LeadRequest struct {
	UserID  string
	Name    string
	Budget  string
	Need    string
	Urgency string
}

// CampaignRequest はマーケティングキャンペーンのリクエスト。Productは必須。
type CampaignRequest struct {
	UserID   string
	Product  string
	Audience string
	Platform string
}

// NewOutfitRequest はフォーム値から既定値を補ったOutfitRequestを作る。
// ageが整数として解釈できない場合はバリデーションエラーを返す。
func NewOutfitRequest(userID string, form FormValuer, photo *multipart.FileHeader) (OutfitRequest, error) {
	age := DefaultAge
	if raw := strings.TrimSpace(form("age")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 150 {
			return OutfitRequest{}, model.NewValidationError(InvalidAgeMessage)
		}
		age = n
	}

	return OutfitRequest{
		UserID:       userID,
		Gender:       valueOr(form("gender"), DefaultGender),
		Age:          age,
		Size:         valueOr(form("size"), DefaultSize),
		CultureStyle: valueOr(form("culture_style"), DefaultCultureStyle),
		DressStyle:   valueOr(form("dress_style"), DefaultDressStyle),
		Photo:        photo,
	}, nil
}

// NewPitchRequest はフォーム値からPitchRequestを作る。
func NewPitchRequest(userID string, form FormValuer) PitchRequest {
	return PitchRequest{
		UserID:   userID,
		Product:  strings.TrimSpace(form("product")),
		Customer: strings.TrimSpace(form("customer")),
	}
}

// NewLeadRequest はフォーム値から既定値を補ったLeadRequestを作る。
func NewLeadRequest(userID string, form FormValuer) LeadRequest {
	return LeadRequest{
		UserID:  userID,
		Name:    valueOr(form("name"), DefaultLeadName),
		Budget:  valueOr(form("budget"), DefaultLeadField),
		Need:    valueOr(form("need"), DefaultLeadField),
		Urgency: valueOr(form("urgency"), DefaultLeadField),
	}
}

// NewCampaignRequest はフォーム値から既定値を補ったCampaignRequestを作る。
func NewCampaignRequest(userID string, form FormValuer) CampaignRequest {
	return CampaignRequest{
		UserID:   userID,
		Product:  strings.TrimSpace(form("product")),
		Audience: strings.TrimSpace(form("audience")),
		Platform: valueOr(form("platform"), DefaultPlatform),
	}
}

func valueOr(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
