package domain

import "net/http"

// RemoteResponse はリモートAPIから受信した生のレスポンスです。
// デコードが完了するまでの一時的な存在で、以降は保持しません。
type RemoteResponse struct {
	Body        []byte
	ContentType string
	Header      http.Header
}

// MetaKeySeed は各画像のメタデータにおける使用シードのキーです。
const MetaKeySeed = "seed"

// DecodedImage は復号済み画像1枚とそのメタデータです。
// Meta には最低限、実際に使用されたシード（MetaKeySeed）が含まれます。
type DecodedImage struct {
	Data     []byte
	MimeType string
	Meta     map[string]any
}

// DecodedResult はレスポンスから回収できた画像の順序付き列です。
// Diagnostics には復号をスキップしたエントリの記録が残ります（部分成功の方針）。
type DecodedResult struct {
	Images      []DecodedImage
	Diagnostics []string
	UsedSeed    int64
}

// Outcome は生成アクション1回の最終結果です。
// 成功なら Images、失敗なら Err が設定され、両方が同時に立つことはありません。
// Info はどちらの場合もホストのログ/ギャラリー領域へ表示するメッセージを保持します。
type Outcome struct {
	Images      []DecodedImage
	Diagnostics []string
	UsedSeed    int64
	Info        string // ホストのログ/ギャラリー領域に表示するテキスト
	Err         error
}

// Failed はこの結果が失敗終端かどうかを返します。
func (o Outcome) Failed() bool {
	return o.Err != nil
}
