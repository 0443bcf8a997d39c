// Package stylist はAI生成系の各操作（コーディネート提案、セールスピッチ、
// リードスコア、キャンペーン）の手順をまとめる。
package stylist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/styleai/internal/model"
	"github.com/hitoshi/styleai/internal/prompt"
	"github.com/hitoshi/styleai/internal/repository"
)

// Completer は外部LLMへの問い合わせインターフェース。
// 失敗時も利用者向けの文言を返し、エラーは返さない。
type Completer interface {
	CompleteText(ctx context.Context, prompt string) string
	CompleteVision(ctx context.Context, prompt, imagePath string) string
}

// PhotoStore はアップロード写真の保存インターフェース。
type PhotoStore interface {
	Accept(fh *multipart.FileHeader) (path string, ok bool, err error)
}

// Recorder は生成結果の保存状況を計測する。
type Recorder interface {
	RecommendationSaved(requestType model.RequestType)
	RecommendationSaveFailed()
}

type nopRecorder struct{}

func (nopRecorder) RecommendationSaved(model.RequestType) {}
func (nopRecorder) RecommendationSaveFailed() {}

// Result は生成系操作の結果。
type Result struct {
	Text          string
	PhotoAnalyzed bool
}

// SaveOutcome は生成結果の履歴保存の結果。
// 保存はベストエフォートで、呼び出し側は無視してよい。
type SaveOutcome struct {
	Saved bool
	Err   error
}

// Service はAI生成系の操作を提供する。
// 各操作は失敗時もエラーを返さず、利用者向けの文言をResult.Textに入れて返す。
type Service struct {
	profiles  repository.ProfileRepository
	recs      repository.RecommendationRepository
	completer Completer
	photos    PhotoStore
	recorder  Recorder
	now       func() time.Time
}

// NewService はServiceを生成する。recorderがnilの場合は計測しない。
func NewService(
	profiles repository.ProfileRepository,
	recs repository.RecommendationRepository,
	completer Completer,
	photos PhotoStore,
	recorder Recorder,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		profiles:  profiles,
		recs:      recs,
		completer: completer,
		photos:    photos,
		recorder:  recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GenerateOutfit はプロフィール（と任意の写真）からスタイリングレポートを生成する。
// 写真が受理された場合は画像付きで問い合わせる。プロフィールの保存失敗は
// エラー文言として返し、生成結果の履歴保存の失敗は結果に影響しない。
func (s *Service) GenerateOutfit(ctx context.Context, req OutfitRequest) Result {
	return s.guard("outfit", func() (Result, error) {
		photoPath := ""
		hasPhoto := false
		if req.Photo != nil {
			path, ok, err := s.photos.Accept(req.Photo)
			if err != nil {
				return Result{}, err
			}
			photoPath, hasPhoto = path, ok
		}

		profile := &model.FashionProfile{
			ID:           uuid.New().String(),
			UserID:       req.UserID,
			Gender:       req.Gender,
			Age:          req.Age,
			Size:         req.Size,
			CultureStyle: req.CultureStyle,
			DressStyle:   req.DressStyle,
			PhotoPath:    photoPath,
			CreatedAt:    s.now(),
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return Result{}, err
		}

		p := prompt.StylingReport(prompt.Profile{
			Gender:       req.Gender,
			Age:          req.Age,
			Size:         req.Size,
			CultureStyle: req.CultureStyle,
			DressStyle:   req.DressStyle,
		}, hasPhoto)

		var text string
		if hasPhoto {
			text = s.completer.CompleteVision(ctx, p, photoPath)
		} else {
			text = s.completer.CompleteText(ctx, p)
		}

		_ = s.saveRecommendation(ctx, req.UserID, profile.ID, model.RequestTypeOutfit, map[string]any{
			"gender":        req.Gender,
			"age":           req.Age,
			"size":          req.Size,
			"culture_style": req.CultureStyle,
			"style":         req.DressStyle,
			"photo":         hasPhoto,
		}, text)

		return Result{Text: text, PhotoAnalyzed: hasPhoto}, nil
	})
}

// GeneratePitch はセールスピッチを生成する。
// Productが空の場合はLLMを呼ばずに入力を促す文言を返し、履歴にも保存しない。
func (s *Service) GeneratePitch(ctx context.Context, req PitchRequest) Result {
	return s.guard("pitch", func() (Result, error) {
		p, err := prompt.SalesPitch(req.Product, req.Customer)
		if err != nil {
			return Result{}, err
		}

		text := s.completer.CompleteText(ctx, p)
		_ = s.saveRecommendation(ctx, req.UserID, "", model.RequestTypePitch, map[string]any{
			"product":  req.Product,
			"customer": req.Customer,
		}, text)

		return Result{Text: text}, nil
	})
}

// ScoreLead はリードスコアを生成する。必須項目はない。
func (s *Service) ScoreLead(ctx context.Context, req LeadRequest) Result {
	return s.guard("lead_score", func() (Result, error) {
		p := prompt.LeadScore(prompt.Lead{
			Name:    req.Name,
			Budget:  req.Budget,
			Need:    req.Need,
			Urgency: req.Urgency,
		})

		text := s.completer.CompleteText(ctx, p)
		_ = s.saveRecommendation(ctx, req.UserID, "", model.RequestTypeLeadScore, map[string]any{
			"name":    req.Name,
			"budget":  req.Budget,
			"need":    req.Need,
			"urgency": req.Urgency,
		}, text)

		return Result{Text: text}, nil
	})
}

// GenerateCampaign はマーケティングキャンペーンを生成する。
// Productが空の場合はLLMを呼ばずに入力を促す文言を返す。
func (s *Service) GenerateCampaign(ctx context.Context, req CampaignRequest) Result {
	return s.guard("campaign", func() (Result, error) {
		p, err := prompt.Campaign(req.Product, req.Audience, req.Platform)
		if err != nil {
			return Result{}, err
		}

		text := s.completer.CompleteText(ctx, p)
		_ = s.saveRecommendation(ctx, req.UserID, "", model.RequestTypeCampaign, map[string]any{
			"product":  req.Product,
			"audience": req.Audience,
			"platform": req.Platform,
		}, text)

		return Result{Text: text}, nil
	})
}

// guard は操作を実行し、エラーとpanicを利用者向けの文言に変換する。
// 入力不足は案内文をそのまま返し、それ以外は "Error: <詳細>. Please try again." にする。
func (s *Service) guard(op string, fn func() (Result, error)) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in generation",
				slog.String("op", op),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			res = Result{Text: errorText(fmt.Errorf("%v", r))}
		}
	}()

	res, err := fn()
	if err == nil {
		return res
	}

	var missing *prompt.MissingInputError
	if errors.As(err, &missing) {
		return Result{Text: missing.Advisory}
	}

	slog.Error("generation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return Result{Text: errorText(err)}
}

func errorText(err error) string {
	return fmt.Sprintf("Error: %s. Please try again.", err.Error())
}

// saveRecommendation は生成結果を履歴に保存する。
// 失敗してもログとメトリクスに記録するだけで、呼び出し側の結果には影響させない。
// クライアントが切断していても保存するため、キャンセルは引き継がない。
func (s *Service) saveRecommendation(
	ctx context.Context,
	userID, profileID string,
	requestType model.RequestType,
	input map[string]any,
	response string,
) SaveOutcome {
	inputData, err := json.Marshal(input)
	if err != nil {
		return s.saveFailed(requestType, fmt.Errorf("failed to encode input snapshot: %w", err))
	}

	rec := &model.Recommendation{
		ID:          uuid.New().String(),
		UserID:      userID,
		ProfileID:   profileID,
		RequestType: requestType,
		InputData:   string(inputData),
		AIResponse:  response,
		CreatedAt:   s.now(),
	}

	if err := s.recs.Create(context.WithoutCancel(ctx), rec); err != nil {
		return s.saveFailed(requestType, err)
	}

	s.recorder.RecommendationSaved(requestType)
	return SaveOutcome{Saved: true}
}

func (s *Service) saveFailed(requestType model.RequestType, err error) SaveOutcome {
	slog.Error("failed to save recommendation",
		slog.String("request_type", string(requestType)),
		slog.String("error", err.Error()),
	)
	s.recorder.RecommendationSaveFailed()
	return SaveOutcome{Err: err}
}
