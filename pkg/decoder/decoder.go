package decoder

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/shouni/nai-override-kit/pkg/domain"
	"github.com/shouni/nai-override-kit/pkg/imgutil"
	"github.com/shouni/nai-override-kit/pkg/utils"
)

const (
	// NormalizeWebP が真のとき、ホストのギャラリーが扱えないWebPをJPEGへ変換します。
	NormalizeWebP = true
	// NormalizeQuality は変換時のJPEG品質です。
	NormalizeQuality = 90
)

var zipMagic = []byte("PK\x03\x04")

// Decode はリモートレスポンスを検査し、回収できた画像列とメタデータへ復号します。
//
// 契約が不安定であることを前提に、宣言された Content-Type と実際の中身の両方を見て
// 分岐し、未知のフィールドや余分なエントリで失敗しない加算的な解釈を行います。
// 不正なエントリは診断を記録して読み飛ばし、1枚でも回収できれば部分成功とします。
func Decode(resp *domain.RemoteResponse, requestedSeed int64) (*domain.DecodedResult, error) {
	if resp == nil || len(resp.Body) == 0 {
		return nil, &Error{Kind: KindUnrecognizedFormat, Detail: "レスポンスボディが空です"}
	}

	mediaType := declaredMediaType(resp.ContentType)

	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return decodeSingleImage(resp.Body, requestedSeed)

	case mediaType == "application/zip" || bytes.HasPrefix(resp.Body, zipMagic):
		return decodeArchive(resp.Body, requestedSeed)

	case mediaType == "text/event-stream" || bytes.HasPrefix(bytes.TrimSpace(resp.Body), []byte("event:")):
		return decodeEventStream(resp.Body, requestedSeed)

	case mediaType == "application/json":
		return decodeJSONBody(resp.Body, requestedSeed)

	default:
		// Content-Type の宣言が欠けていても中身が画像なら受け入れる
		if _, ok := imgutil.SniffMime(resp.Body); ok {
			return decodeSingleImage(resp.Body, requestedSeed)
		}
		return nil, &Error{
			Kind:   KindUnrecognizedFormat,
			Detail: fmt.Sprintf("未対応のContent-Typeです: %q", resp.ContentType),
		}
	}
}

func declaredMediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// decodeSingleImage は単一の画像バイナリを1要素の結果に包みます。
func decodeSingleImage(data []byte, requestedSeed int64) (*domain.DecodedResult, error) {
	img, err := buildImage(data, nil, requestedSeed)
	if err != nil {
		return nil, &Error{
			Kind:   KindNoImagesRecovered,
			Detail: "画像バイナリの復号に失敗しました",
			Err:    err,
		}
	}
	return &domain.DecodedResult{
		Images:   []domain.DecodedImage{img},
		UsedSeed: utils.SeedFromMeta(img.Meta, domain.MetaKeySeed, requestedSeed),
	}, nil
}

// decodeArchive は複数エントリのアーカイブを復号します。
// メタデータサイドカーはエントリ順に依存せず、同一レスポンス内の全画像へ適用されます。
func decodeArchive(data []byte, requestedSeed int64) (*domain.DecodedResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &Error{
			Kind:   KindUnrecognizedFormat,
			Detail: "ZIPアーカイブとして解釈できません",
			Err:    err,
		}
	}

	var diags []string

	// 1パス目: サイドカーの収集。順序に依存しないよう先に全エントリを見る。
	sidecar := map[string]any{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isMetadataEntry(f.Name) {
			continue
		}
		raw, err := readArchiveEntry(f)
		if err != nil {
			diags = append(diags, fmt.Sprintf("メタデータエントリ %s の読み出しに失敗: %v", f.Name, err))
			continue
		}
		var m map[string]any
		if err := sonic.Unmarshal(raw, &m); err != nil {
			diags = append(diags, fmt.Sprintf("メタデータエントリ %s の解釈に失敗: %v", f.Name, err))
			continue
		}
		for k, v := range m {
			sidecar[k] = v
		}
	}

	// 2パス目: 画像エントリの復号。不正なエントリは記録して読み飛ばす。
	var images []domain.DecodedImage
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || isMetadataEntry(f.Name) {
			continue
		}
		raw, err := readArchiveEntry(f)
		if err != nil {
			diags = append(diags, fmt.Sprintf("エントリ %s の読み出しに失敗: %v", f.Name, err))
			continue
		}
		img, err := buildImage(raw, sidecar, requestedSeed)
		if err != nil {
			diags = append(diags, fmt.Sprintf("エントリ %s の復号に失敗: %v", f.Name, err))
			continue
		}
		images = append(images, img)
	}

	if len(images) == 0 {
		return nil, &Error{
			Kind:   KindNoImagesRecovered,
			Detail: "アーカイブから有効な画像を1枚も回収できませんでした: " + strings.Join(diags, " / "),
		}
	}

	if len(diags) > 0 {
		slog.Warn("一部のエントリを読み飛ばしました", "skipped", len(diags), "recovered", len(images))
	}

	return &domain.DecodedResult{
		Images:      images,
		Diagnostics: diags,
		UsedSeed:    utils.SeedFromMeta(sidecar, domain.MetaKeySeed, requestedSeed),
	}, nil
}

// decodeEventStream はイベントストリーム形式から最初の data 行を画像として復号します。
func decodeEventStream(body []byte, requestedSeed int64) (*domain.DecodedResult, error) {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		b64 := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, &Error{
				Kind:   KindNoImagesRecovered,
				Detail: "data行のbase64復号に失敗しました",
				Err:    err,
			}
		}
		return decodeSingleImage(raw, requestedSeed)
	}
	return nil, &Error{
		Kind:   KindUnrecognizedFormat,
		Detail: "イベントストリームにdata行が見つかりません",
	}
}

// decodeJSONBody はJSONボディから base64 画像を寛容に探索して復号します。
// フィールド名は契約が不安定なため、既知の候補を順に試し、未知のキーは無視します。
func decodeJSONBody(body []byte, requestedSeed int64) (*domain.DecodedResult, error) {
	var doc map[string]any
	if err := sonic.Unmarshal(body, &doc); err != nil {
		return nil, &Error{
			Kind:   KindUnrecognizedFormat,
			Detail: "JSONボディとして解釈できません",
			Err:    err,
		}
	}

	sidecar := map[string]any{}
	if m, ok := doc["metadata"].(map[string]any); ok {
		for k, v := range m {
			sidecar[k] = v
		}
	}
	if v, ok := doc[domain.MetaKeySeed]; ok {
		sidecar[domain.MetaKeySeed] = v
	}

	var diags []string
	var images []domain.DecodedImage
	for i, b64 := range collectBase64Candidates(doc) {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			diags = append(diags, fmt.Sprintf("画像候補 %d のbase64復号に失敗: %v", i, err))
			continue
		}
		img, err := buildImage(raw, sidecar, requestedSeed)
		if err != nil {
			diags = append(diags, fmt.Sprintf("画像候補 %d の復号に失敗: %v", i, err))
			continue
		}
		images = append(images, img)
	}

	if len(images) == 0 {
		return nil, &Error{
			Kind:   KindNoImagesRecovered,
			Detail: "JSONボディから有効な画像を1枚も回収できませんでした: " + strings.Join(diags, " / "),
		}
	}

	return &domain.DecodedResult{
		Images:      images,
		Diagnostics: diags,
		UsedSeed:    utils.SeedFromMeta(sidecar, domain.MetaKeySeed, requestedSeed),
	}, nil
}

// collectBase64Candidates は既知の候補フィールドから base64 文字列を集めます。
// 対応形: {"images": ["..."]}, {"image": "..."}, {"data": [{"b64_json": "..."}]}
func collectBase64Candidates(doc map[string]any) []string {
	var out []string

	if arr, ok := doc["images"].([]any); ok {
		for _, v := range arr {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	if s, ok := doc["image"].(string); ok && s != "" {
		out = append(out, s)
	}
	if arr, ok := doc["data"].([]any); ok {
		for _, v := range arr {
			entry, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := entry["b64_json"].(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}

	return out
}

// buildImage は画像バイナリを検査し、サイドカーを畳み込んだ DecodedImage を構築します。
func buildImage(data []byte, sidecar map[string]any, requestedSeed int64) (domain.DecodedImage, error) {
	info, err := imgutil.Probe(data)
	if err != nil {
		return domain.DecodedImage{}, err
	}

	meta := make(map[string]any, len(sidecar)+4)
	for k, v := range sidecar {
		meta[k] = v
	}

	mimeType := info.MimeType
	if NormalizeWebP && info.Format == "webp" {
		converted, err := imgutil.CompressToJPEG(data, NormalizeQuality)
		if err != nil {
			return domain.DecodedImage{}, fmt.Errorf("WebP画像のJPEG変換に失敗しました: %w", err)
		}
		meta["original_format"] = info.Format
		data = converted
		mimeType = "image/jpeg"
		info.Format = "jpeg"
	}

	meta["width"] = info.Width
	meta["height"] = info.Height
	meta["format"] = info.Format
	meta[domain.MetaKeySeed] = utils.SeedFromMeta(sidecar, domain.MetaKeySeed, requestedSeed)

	return domain.DecodedImage{
		Data:     data,
		MimeType: mimeType,
		Meta:     meta,
	}, nil
}

func isMetadataEntry(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".json") || strings.HasSuffix(lower, ".txt")
}

func readArchiveEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
