package handler

import "net/http"

// KeyChecker は外部LLMのAPIキーが設定されているかを返す。
type KeyChecker interface {
	HasKey() bool
}

// UploadDirChecker はアップロード保存先ディレクトリが存在するかを返す。
type UploadDirChecker interface {
	Exists() bool
}

// HealthHandler は死活監視用のHTTPハンドラー。
type HealthHandler struct {
	keys    KeyChecker
	uploads UploadDirChecker
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(keys KeyChecker, uploads UploadDirChecker) *HealthHandler {
	return &HealthHandler{keys: keys, uploads: uploads}
}

type healthResponse struct {
	OK           bool `json:"ok"`
	Key          bool `json:"key"`
	UploadsExist bool `json:"uploads_exist"`
}

// Health はプロセスの状態を返す。APIキー未設定でもokはtrue。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		OK:           true,
		Key:          h.keys.HasKey(),
		UploadsExist: h.uploads.Exists(),
	})
}
