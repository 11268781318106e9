package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/shouni/nai-override-kit/pkg/domain"
)

const (
	// DefaultEndpoint は既定の画像生成エンドポイントです。
	// 予告なく変わる可能性があるため、NewClient で差し替え可能にしています。
	DefaultEndpoint = "https://api.novelai.net/ai/generate-image"

	// DefaultTimeout は生成完了待ちを含む既定のタイムアウトです。
	DefaultTimeout = 180 * time.Second
)

// Doer はHTTPリクエストの実行を抽象化するインターフェースです。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client はリモートAPIへの認証付き呼び出しを担当します。
// 課金・レート制限のある契約先に対する安全策として、自動リトライは一切行いません。
type Client struct {
	endpoint string
	doer     Doer
}

// NewClient は Client を初期化します。endpoint が空なら既定値、
// doer が nil なら既定タイムアウト付きの http.Client を使用します。
func NewClient(endpoint string, doer Doer) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if doer == nil {
		doer = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		endpoint: endpoint,
		doer:     doer,
	}
}

// Send はペイロードをシリアライズし、Bearer 認証付きで1回だけ同期呼び出しを行います。
// タイムアウトは呼び出し側の ctx で制御します。
// 成功範囲外のHTTPステータスはボディを保持したまま *Error として返します。
func (c *Client) Send(ctx context.Context, payload any, cred domain.Credential) (*domain.RemoteResponse, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	slog.DebugContext(ctx, "リモートAPIへリクエストを送信します",
		"endpoint", c.endpoint, "payload_bytes", len(body))

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 診断のため、ボディはそのまま保持して返す
		return nil, &Error{
			Kind:       KindHTTPStatus,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return &domain.RemoteResponse{
		Body:        respBody,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
	}, nil
}

// classifyTransportError は http.Client からのエラーをタイムアウトと接続失敗に振り分けます。
func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindConnectionFailed, Err: err}
}
