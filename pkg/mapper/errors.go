package mapper

import "fmt"

// ErrorKind は変換失敗の分類です。
type ErrorKind int

const (
	// KindInvalidToolJSON は Director Tools JSON が構造化データとして解釈できない場合です。
	KindInvalidToolJSON ErrorKind = iota + 1
	// KindInvalidDimensions は幅・高さがリモート側の制約を満たさない場合です。
	KindInvalidDimensions
	// KindOutOfRange は数値パラメータが許容範囲を外れている場合です。
	KindOutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidToolJSON:
		return "invalid_tool_json"
	case KindInvalidDimensions:
		return "invalid_dimensions"
	case KindOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// Error はパラメータ変換の失敗を表します。
// 元のパーサメッセージ等の診断情報は Detail / Err に保持され、破棄されません。
type Error struct {
	Kind   ErrorKind
	Field  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("パラメータ変換エラー (%s, field: %s): %s", e.Kind, e.Field, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
