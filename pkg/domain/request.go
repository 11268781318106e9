package domain

// GenerationRequest はホストUIの「生成」アクション1回分のパラメータ一式です。
// 生成クリックごとに新しく構築され、呼び出し完了後に破棄されます。
type GenerationRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	Sampler        string
	Scale          float64 // CFGスケール（ガイダンス強度）
	Seed           int64   // 負数でリモート側がシードを採番
	ToolParamsJSON string  // Director Tools 等の自由形式JSONテキスト（そのまま転送）
}

// RandomSeed はリモート側にシード採番を委ねる場合の UI 上の慣習値です。
const RandomSeed int64 = -1
