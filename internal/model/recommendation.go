package model

import "time"

// RequestType はAI生成リクエストの種類を表す。
type RequestType string

const (
	// RequestTypeOutfit はスタイリングレポート（コーディネート提案）。
	RequestTypeOutfit RequestType = "outfit"
	// RequestTypePitch はセールスピッチ。
	RequestTypePitch RequestType = "pitch"
	// RequestTypeLeadScore はリードスコア。
	RequestTypeLeadScore RequestType = "lead_score"
	// RequestTypeCampaign はマーケティングキャンペーン。
	RequestTypeCampaign RequestType = "campaign"
)

// Valid はRequestTypeが定義済みの値かどうかを判定する。
func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeOutfit, RequestTypePitch, RequestTypeLeadScore, RequestTypeCampaign:
		return true
	default:
		return false
	}
}

// FashionProfile は1回のスタイリングリクエストの入力スナップショット。
// UserIDは匿名リクエストの場合は空文字列になる。
type FashionProfile struct {
	ID           string
	UserID       string
	Gender       string
	Age          int
	Size         string
	CultureStyle string
	DressStyle   string
	PhotoPath    string
	CreatedAt    time.Time
}

// Recommendation はAIが生成した1件の結果を表す。
// ProfileIDはoutfitリクエストの場合のみ設定される。
// AIResponseはフォールバック文言を含め常に設定される。
type Recommendation struct {
	ID          string
	UserID      string
	ProfileID   string
	RequestType RequestType
	InputData   string // リクエスト入力のJSONスナップショット
	AIResponse  string
	CreatedAt   time.Time
}

// UserStats はユーザーごとの利用統計。
type UserStats struct {
	TotalRecommendations int
	ProfilesCreated      int
	ByType               map[RequestType]int
}

// PlatformStats はサービス全体の利用統計。
type PlatformStats struct {
	TotalUsers           int
	TotalRecommendations int
	TotalProfiles        int
}
