// Package completion は外部LLMサービス（OpenAI互換のChat Completions API）への
// テキスト・画像付きの問い合わせを提供する。
// 呼び出し側にエラーを返さず、失敗時は利用者向けの文言に変換する。
package completion

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// 利用者に返す固定文言
const (
	MissingKeyMessage = "⚠️ GROQ_API_KEY not set. Add it to your .env file and restart."
	TimeoutMessage    = "Request timed out. Please try again."
	apiErrorPrefix    = "API Error: "
)

// 生成パラメータ
const (
	temperature     = 0.7
	visionMaxTokens = 1200
)

// Mode は問い合わせの種類。
type Mode string

const (
	ModeText   Mode = "text"
	ModeVision Mode = "vision"
)

// Outcome はメトリクス用の呼び出し結果。
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
	OutcomeNoKey   Outcome = "no_key"
)

// Recorder は問い合わせ結果の計測を受け取る。
type Recorder interface {
	ObserveCompletion(mode Mode, outcome Outcome, elapsed time.Duration)
	IncFallback()
}

type nopRecorder struct{}

func (nopRecorder) ObserveCompletion(Mode, Outcome, time.Duration) {}
func (nopRecorder) IncFallback() {}

// Config はCompletion Clientの設定。
type Config struct {
	APIKey        string
	BaseURL       string
	TextModel     string
	VisionModel   string
	TextTimeout   time.Duration
	VisionTimeout time.Duration
}

// Client は外部LLMサービスのクライアント。
// 全ての公開メソッドは文字列を返し、エラーやpanicを呼び出し側に伝播しない。
type Client struct {
	api      openai.Client
	cfg      Config
	recorder Recorder
	readFile func(name string) ([]byte, error)
}

// ClientOption はClientの任意設定。
type ClientOption func(*Client)

// WithRecorder はメトリクスの記録先を設定する。
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewClient はClientを生成する。
// SDKのリトライは無効にし、タイムアウトはモードごとのcontextで制御する。
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		api: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithMaxRetries(0),
		),
		cfg:      cfg,
		recorder: nopRecorder{},
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasKey はAPIキーが設定されているかを返す。
func (c *Client) HasKey() bool {
	return c.cfg.APIKey != ""
}

// CompleteText はテキストのみで問い合わせる。
// APIキー未設定時は MissingKeyMessage、タイムアウト時は TimeoutMessage、
// その他の失敗時は "API Error: <詳細>" を返す。
func (c *Client) CompleteText(ctx context.Context, prompt string) string {
	if !c.HasKey() {
		c.recorder.ObserveCompletion(ModeText, OutcomeNoKey, 0)
		return MissingKeyMessage
	}

	reply, err := c.complete(ctx, ModeText, c.cfg.TextTimeout, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.TextModel),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(temperature),
	})
	switch {
	case err == nil:
		return reply
	case isTimeout(err):
		return TimeoutMessage
	default:
		slog.Warn("text completion failed", slog.String("error", err.Error()))
		return apiErrorPrefix + err.Error()
	}
}

// CompleteVision は画像を添付して問い合わせる。
// 画像はdata URLとしてインライン化する。タイムアウト時は TimeoutMessage を返し、
// それ以外の失敗（画像の読み込み失敗を含む）は同じプロンプトで CompleteText にフォールバックする。
func (c *Client) CompleteVision(ctx context.Context, prompt, imagePath string) string {
	if !c.HasKey() {
		c.recorder.ObserveCompletion(ModeVision, OutcomeNoKey, 0)
		return MissingKeyMessage
	}

	reply, err := c.vision(ctx, prompt, imagePath)
	if err == nil {
		return reply
	}
	if isTimeout(err) {
		return TimeoutMessage
	}

	slog.Warn("vision completion failed, falling back to text",
		slog.String("error", err.Error()),
	)
	c.recorder.IncFallback()
	return c.CompleteText(ctx, prompt)
}

func (c *Client) vision(ctx context.Context, prompt, imagePath string) (string, error) {
	data, err := c.readFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	dataURL := "data:" + mimeFromPath(imagePath) + ";base64," + base64.StdEncoding.EncodeToString(data)

	return c.complete(ctx, ModeVision, c.cfg.VisionTimeout, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.VisionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
				openai.TextContentPart(prompt),
			}),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(visionMaxTokens),
	})
}

// complete はタイムアウト付きで1回だけ問い合わせ、応答本文からMarkdownの強調を取り除いて返す。
func (c *Client) complete(ctx context.Context, mode Mode, timeout time.Duration, params openai.ChatCompletionNewParams) (reply string, err error) {
	start := time.Now()
	defer func() {
		// SDK内部のpanicも失敗として扱う
		if r := recover(); r != nil {
			err = fmt.Errorf("completion panicked: %v", r)
		}
		c.recorder.ObserveCompletion(mode, outcomeOf(err), time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	return StripMarkdown(resp.Choices[0].Message.Content), nil
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case isTimeout(err):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}

// isTimeout はエラーがタイムアウトによるものかを判定する。
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// mimeFromPath は拡張子から画像のMIMEタイプを決める。不明な場合はimage/jpeg。
func mimeFromPath(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
