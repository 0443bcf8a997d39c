package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hitoshi/styleai/internal/model"
)

// ErrorResponseBody は生成系以外の全エンドポイントで共通のエラーJSON。
// フロントエンドは success と message だけを参照し、code 以降は運用・デバッグ用。
type ErrorResponseBody struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

func newErrorResponseBody(apiErr *model.APIError) ErrorResponseBody {
	return ErrorResponseBody{
		Message:  apiErr.Message,
		Code:     apiErr.Code,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}
}

// WriteErrorResponse は success:false のエラーJSONを書き込む。
// apiErr が nil の場合は statusCode に関わらず500の内部エラーを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	if apiErr == nil {
		statusCode = http.StatusInternalServerError
		apiErr = model.NewInternalError()
	}

	body, _ := json.Marshal(newErrorResponseBody(apiErr))
	body = append(body, '\n')

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(statusCode)
	w.Write(body)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
