package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"strings"
)

// ImageInfo は画像バイナリの検査結果です。
type ImageInfo struct {
	MimeType string
	Format   string // image.DecodeConfig が報告するフォーマット名（png, jpeg, webp 等）
	Width    int
	Height   int
}

// SniffMime はバイト列のMIMEタイプを判定し、画像であるかどうかを返します。
func SniffMime(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	mimeType := http.DetectContentType(data)
	return mimeType, strings.HasPrefix(mimeType, "image/")
}

// Probe は画像バイナリのヘッダのみを解析して寸法とフォーマットを返します。
// 壊れたデータや画像以外のデータにはエラーを返すため、
// アーカイブ内の不正エントリを読み飛ばす判定に利用できます。
func Probe(data []byte) (*ImageInfo, error) {
	mimeType, ok := SniffMime(data)
	if !ok {
		return nil, fmt.Errorf("画像ではないデータです (mime: %s)", mimeType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像ヘッダの解析に失敗しました: %w", err)
	}

	return &ImageInfo{
		MimeType: mimeType,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
