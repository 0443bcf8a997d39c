package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/hitoshi/styleai/internal/middleware"
	"github.com/hitoshi/styleai/internal/model"
	"github.com/hitoshi/styleai/internal/stylist"
)

// multipartMemory はmultipartフォームをメモリに保持する上限。超えた分は一時ファイルになる。
const multipartMemory = 8 << 20

// StylistServiceInterface はAI生成ハンドラーが必要とするサービスインターフェース。
// 各操作はエラーを返さず、失敗時も利用者向けの文言を返す。
type StylistServiceInterface interface {
	GenerateOutfit(ctx context.Context, req stylist.OutfitRequest) stylist.Result
	GeneratePitch(ctx context.Context, req stylist.PitchRequest) stylist.Result
	ScoreLead(ctx context.Context, req stylist.LeadRequest) stylist.Result
	GenerateCampaign(ctx context.Context, req stylist.CampaignRequest) stylist.Result
}

// StylistHandler はAI生成系エンドポイントのHTTPハンドラー。
// 匿名でも利用でき、ボディ上限超過以外は常に200を返す。
type StylistHandler struct {
	service StylistServiceInterface
}

// NewStylistHandler はStylistHandlerを生成する。
func NewStylistHandler(service StylistServiceInterface) *StylistHandler {
	return &StylistHandler{
		service: service,
	}
}

type resultResponse struct {
	Result string `json:"result"`
}

type outfitResponse struct {
	Result        string `json:"result"`
	PhotoAnalyzed bool   `json:"photo_analyzed"`
}

// GetRecommendation はプロフィールと任意の写真からスタイリングレポートを生成する。
// POST /get_recommendation
func (h *StylistHandler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	req, err := stylist.NewOutfitRequest(middleware.OptionalUserID(r.Context()), r.PostFormValue, photoHeader(r))
	if err != nil {
		writeJSON(w, http.StatusOK, outfitResponse{Result: advisoryText(err)})
		return
	}

	res := h.service.GenerateOutfit(r.Context(), req)
	writeJSON(w, http.StatusOK, outfitResponse{Result: res.Text, PhotoAnalyzed: res.PhotoAnalyzed})
}

// GeneratePitch はセールスピッチを生成する。
// POST /generate_pitch
func (h *StylistHandler) GeneratePitch(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	req := stylist.NewPitchRequest(middleware.OptionalUserID(r.Context()), r.PostFormValue)
	res := h.service.GeneratePitch(r.Context(), req)
	writeJSON(w, http.StatusOK, resultResponse{Result: res.Text})
}

// ScoreLead はリードスコアを生成する。
// POST /lead_score
func (h *StylistHandler) ScoreLead(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	req := stylist.NewLeadRequest(middleware.OptionalUserID(r.Context()), r.PostFormValue)
	res := h.service.ScoreLead(r.Context(), req)
	writeJSON(w, http.StatusOK, resultResponse{Result: res.Text})
}

// GenerateCampaign はマーケティングキャンペーンを生成する。
// POST /generate_campaign
func (h *StylistHandler) GenerateCampaign(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	req := stylist.NewCampaignRequest(middleware.OptionalUserID(r.Context()), r.PostFormValue)
	res := h.service.GenerateCampaign(r.Context(), req)
	writeJSON(w, http.StatusOK, resultResponse{Result: res.Text})
}

// parseForm はmultipartまたはURLエンコードのフォームを解析する。
// ボディ上限超過は413、それ以外の解析失敗は200のエラー文言で応答し false を返す。
// URLエンコードのボディは先に ParseForm で読む。ParseMultipartForm は非multipartの場合に
// ParseForm のエラーを捨てて ErrNotMultipart を返すため。
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseForm()
	if err == nil {
		err = r.ParseMultipartForm(multipartMemory)
	}
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		middleware.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, model.NewPayloadTooLargeError(maxErr.Limit))
		return false
	}

	slog.Warn("failed to parse form",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusOK, resultResponse{Result: "Error: " + err.Error() + ". Please try again."})
	return false
}

// photoHeader はアップロードされた写真のヘッダーを返す。
// ファイル名が空の場合（ファイル未選択で送信された場合）は写真なしとして扱う。
func photoHeader(r *http.Request) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File["photo"]
	if len(files) == 0 || files[0].Filename == "" {
		return nil
	}
	return files[0]
}

// advisoryText は入力エラーを利用者向けの文言に変換する。
func advisoryText(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Error: " + err.Error() + ". Please try again."
}
