package utils

import "strconv"

// IsRandomSeed は、UI慣習（負数）としてリモート側のシード採番を
// 要求しているかどうかを判定します。
func IsRandomSeed(seed int64) bool {
	return seed < 0
}

// SeedFromMeta は、緩い型付けのメタデータマップから使用シードを取り出します。
// JSONデコード経由では数値が float64 になるため、数値系の型を順に受け付け、
// 見つからない・解釈できない場合は fallback を返します。
func SeedFromMeta(meta map[string]any, key string, fallback int64) int64 {
	if meta == nil {
		return fallback
	}
	switch v := meta[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
