package decoder

import "fmt"

// ErrorKind は復号失敗の分類です。
type ErrorKind int

const (
	// KindUnrecognizedFormat はレスポンスの形式そのものが解釈できない場合です。
	KindUnrecognizedFormat ErrorKind = iota + 1
	// KindNoImagesRecovered は形式は解釈できたが有効な画像が1枚も回収できなかった場合です。
	KindNoImagesRecovered
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnrecognizedFormat:
		return "unrecognized_format"
	case KindNoImagesRecovered:
		return "no_images_recovered"
	default:
		return "unknown"
	}
}

// Error はレスポンス復号の失敗を表します。
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("レスポンス復号エラー (%s): %s", e.Kind, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
