package mapper

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/shouni/nai-override-kit/pkg/domain"
	"github.com/shouni/nai-override-kit/pkg/utils"
)

const (
	// DefaultModel は送信ペイロードに載せる既定の生成モデル名です。
	DefaultModel = "nai-diffusion-3"
	// ActionGenerate は通常生成を表すアクション識別子です。
	ActionGenerate = "generate"

	// DimensionStep は幅・高さに要求されるタイル粒度です。
	DimensionStep = 64

	MinSteps = 1
	MaxSteps = 100
	MinScale = 0.0
	MaxScale = 20.0
)

// KnownSamplers は動作が確認されているサンプラー名の一覧です。
// 実際の許容セットはリモート側が決定するため、一覧外の名前も送信は通します。
var KnownSamplers = []string{
	"k_euler",
	"k_euler_ancestral",
	"k_dpmpp_2s_ancestral",
	"k_dpmpp_sde",
	"ddim_v3",
}

// Payload はリモートAPIへ送信するリクエストボディです。
// Parameters を固定スキーマにせずマップで持つことで、
// 不安定な契約に対して追加キーを許容する方針を型に反映しています。
type Payload struct {
	Input      string         `json:"input"`
	Model      string         `json:"model"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// Map はホストの生成パラメータと Director Tools JSON を検証し、
// 送信可能な Payload へ変換します。ネットワーク等の副作用は持ちません。
//
// Parameters の書き込み順は 既定値 → ツールJSON → 明示的なUI入力値 で、
// 最後に書かれるUI入力値が衝突キーに対して常に優先されます。
func Map(req domain.GenerationRequest) (*Payload, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// 品質系の既定値。ツールJSONで上書き可能。
	params := map[string]any{
		"qualityToggle": true,
		"ucPreset":      0,
	}

	if raw := strings.TrimSpace(req.ToolParamsJSON); raw != "" {
		var tool map[string]any
		if err := sonic.Unmarshal([]byte(raw), &tool); err != nil {
			return nil, &Error{
				Kind:   KindInvalidToolJSON,
				Field:  "tool_params",
				Detail: "JSONオブジェクトとして解釈できません",
				Err:    err,
			}
		}
		for k, v := range tool {
			params[k] = v
		}
	}

	// 明示的なUI入力値。ここが最終書き込みであることが優先順位の保証になります。
	params["negative_prompt"] = req.NegativePrompt
	params["width"] = req.Width
	params["height"] = req.Height
	params["steps"] = req.Steps
	params["scale"] = req.Scale
	params["sampler"] = req.Sampler

	// シードは負数（ランダム指示）のとき送信せず、リモート側の採番に委ねます。
	// ツールJSONが明示的に seed を持つ場合はそれを残します。
	if !utils.IsRandomSeed(req.Seed) {
		params["seed"] = req.Seed
	}

	return &Payload{
		Input:      req.Prompt,
		Model:      DefaultModel,
		Action:     ActionGenerate,
		Parameters: params,
	}, nil
}

func validate(req domain.GenerationRequest) error {
	if req.Width <= 0 || req.Height <= 0 {
		return &Error{
			Kind:   KindInvalidDimensions,
			Field:  "width/height",
			Detail: fmt.Sprintf("幅・高さは正の値が必要です (%dx%d)", req.Width, req.Height),
		}
	}
	if req.Width%DimensionStep != 0 || req.Height%DimensionStep != 0 {
		return &Error{
			Kind:   KindInvalidDimensions,
			Field:  "width/height",
			Detail: fmt.Sprintf("幅・高さは%dの倍数が必要です (%dx%d)", DimensionStep, req.Width, req.Height),
		}
	}
	if req.Steps < MinSteps || req.Steps > MaxSteps {
		return &Error{
			Kind:   KindOutOfRange,
			Field:  "steps",
			Detail: fmt.Sprintf("steps は %d〜%d の範囲が必要です (%d)", MinSteps, MaxSteps, req.Steps),
		}
	}
	if req.Scale < MinScale || req.Scale > MaxScale {
		return &Error{
			Kind:   KindOutOfRange,
			Field:  "scale",
			Detail: fmt.Sprintf("scale は %.1f〜%.1f の範囲が必要です (%.2f)", MinScale, MaxScale, req.Scale),
		}
	}
	if req.Sampler == "" {
		return &Error{
			Kind:   KindOutOfRange,
			Field:  "sampler",
			Detail: "サンプラー名が未指定です",
		}
	}
	if !isKnownSampler(req.Sampler) {
		// 許容セットはリモート側が決めるため、未知の名前は警告のみで通します。
		slog.Warn("未知のサンプラー名です。そのまま送信します", "sampler", req.Sampler)
	}
	return nil
}

func isKnownSampler(name string) bool {
	for _, s := range KnownSamplers {
		if s == name {
			return true
		}
	}
	return false
}
