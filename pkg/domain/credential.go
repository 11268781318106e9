package domain

import "log/slog"

// Credential はリモートAPIの Bearer トークンです。
// セッション/UI状態が所有し、このコアは呼び出し単位で借用するだけで永続化しません。
type Credential string

// IsEmpty はトークンが未設定かどうかを返します。
func (c Credential) IsEmpty() bool {
	return c == ""
}

// Token は Authorization ヘッダ組み立て用に生の値を返します。
// 取り出しをこのメソッドに限定することで、誤用箇所を追跡しやすくしています。
func (c Credential) Token() string {
	return string(c)
}

// String は %v / %s 経由でトークンがログや表示に漏れないよう伏せ字を返します。
func (c Credential) String() string {
	if c.IsEmpty() {
		return "(empty)"
	}
	return "[redacted]"
}

// LogValue は slog 経由の出力でも伏せ字を維持します。
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}
