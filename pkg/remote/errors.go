package remote

import "fmt"

// ErrorKind は転送失敗の分類です。
type ErrorKind int

const (
	// KindTimeout は呼び出しがタイムアウトで放棄された場合です。
	KindTimeout ErrorKind = iota + 1
	// KindConnectionFailed は接続自体が確立できなかった場合です。
	KindConnectionFailed
	// KindHTTPStatus は成功範囲外のHTTPステータスが返った場合です。
	KindHTTPStatus
	// KindUnknown は上記に分類できない失敗です。
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnectionFailed:
		return "connection_failed"
	case KindHTTPStatus:
		return "http_status"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Error はリモート呼び出しの転送レベルの失敗を表します。
// HTTPエラーの場合、Body にはレスポンスボディが改変なしで保持されます。
// 文書化されていない契約に対するデバッグ材料として、ここで捨てないことが重要です。
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "リモートAPI呼び出しがタイムアウトしました"
	case KindConnectionFailed:
		return fmt.Sprintf("リモートAPIへの接続に失敗しました: %v", e.Err)
	case KindHTTPStatus:
		return fmt.Sprintf("リモートAPIがエラーを返しました (status: %d): %s", e.StatusCode, Snippet(e.Body, 200))
	default:
		return fmt.Sprintf("リモートAPI呼び出しで予期しないエラーが発生しました: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Snippet は表示用にテキストを最大nバイトへ切り詰めます。Body の保持自体は改変しません。
func Snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
