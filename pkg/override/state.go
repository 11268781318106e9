package override

import "fmt"

// State は1回の生成アクションにおける制御状態です。
// Idle → Mapping → Calling → Decoding → Delivered が成功経路で、
// Mapping/Calling/Decoding のいずれからも Failed へ遷移し得ます。
type State int

const (
	StateIdle State = iota
	StateMapping
	StateCalling
	StateDecoding
	StateDelivered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMapping:
		return "mapping"
	case StateCalling:
		return "calling"
	case StateDecoding:
		return "decoding"
	case StateDelivered:
		return "delivered"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailReason は終端失敗の分類です。
type FailReason int

const (
	// ReasonInvalidInput は入力パラメータの変換・検証失敗です。ネットワーク呼び出しは発生しません。
	ReasonInvalidInput FailReason = iota + 1
	// ReasonRemoteUnavailable は転送レベルの失敗（タイムアウト・接続不能等）です。
	ReasonRemoteUnavailable
	// ReasonRemoteRejected はリモートがHTTPエラーステータスで拒否した場合です。
	ReasonRemoteRejected
	// ReasonBadResponse はレスポンスの復号失敗です。
	ReasonBadResponse
)

func (r FailReason) String() string {
	switch r {
	case ReasonInvalidInput:
		return "invalid_input"
	case ReasonRemoteUnavailable:
		return "remote_unavailable"
	case ReasonRemoteRejected:
		return "remote_rejected"
	case ReasonBadResponse:
		return "bad_response"
	default:
		return "unknown"
	}
}

// Failure は終端失敗状態の詳細です。
// 元の診断（ステータスコード・ボディ断片・パーサメッセージ）を破棄せずに保持します。
type Failure struct {
	Reason FailReason
	At     State
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("リモート生成に失敗しました (%s): %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
