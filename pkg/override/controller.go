package override

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/nai-override-kit/pkg/decoder"
	"github.com/shouni/nai-override-kit/pkg/domain"
	"github.com/shouni/nai-override-kit/pkg/mapper"
	"github.com/shouni/nai-override-kit/pkg/remote"
)

// Sender はリモートAPI呼び出しを抽象化するインターフェースです。
type Sender interface {
	Send(ctx context.Context, payload any, cred domain.Credential) (*domain.RemoteResponse, error)
}

// Controller はホストの生成アクションを横取りする司令塔です。
// 変換 → 呼び出し → 復号 を受信スレッド上で逐次実行し、
// 必ずちょうど1つの Outcome を返します（曖昧な終了はしません）。
// 呼び出し間で共有する可変状態は持たないため、失敗した呼び出しが
// 後続の独立した呼び出しを汚すことはありません。
type Controller struct {
	sender  Sender
	timeout time.Duration
}

// NewController は依存関係を注入して Controller を初期化します。
func NewController(sender Sender, timeout time.Duration) (*Controller, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if timeout <= 0 {
		timeout = remote.DefaultTimeout
	}
	return &Controller{
		sender:  sender,
		timeout: timeout,
	}, nil
}

// Generate はオーバーライドフラグを見て、生成アクションを横取りするかどうかを決めます。
// 戻り値の bool が false のとき介入は行われず、ホスト標準のパイプラインに委ねます
// （その経路はこのコアの責務外です）。true のときは必ず Outcome が1つ返ります。
func (c *Controller) Generate(ctx context.Context, enabled bool, req domain.GenerationRequest, cred domain.Credential) (domain.Outcome, bool) {
	if !enabled {
		// 無効時は介入しない。分岐はここだけの単純な二択に保つ。
		return domain.Outcome{}, false
	}
	return c.run(ctx, req, cred), true
}

func (c *Controller) run(ctx context.Context, req domain.GenerationRequest, cred domain.Credential) domain.Outcome {
	log := slog.With("run_id", uuid.NewString())

	// Mapping
	log.Info("生成リクエストを変換します",
		"width", req.Width, "height", req.Height,
		"steps", req.Steps, "sampler", req.Sampler, "seed", req.Seed)

	if cred.IsEmpty() {
		return fail(log, StateMapping, ReasonInvalidInput, errors.New("APIトークンが未設定です"))
	}

	payload, err := mapper.Map(req)
	if err != nil {
		// 変換失敗時はネットワーク呼び出しに進まない
		return fail(log, StateMapping, ReasonInvalidInput, err)
	}

	// Calling
	log.Info("リモートAPIを呼び出します", "timeout", c.timeout, "credential", cred)
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.sender.Send(callCtx, payload, cred)
	if err != nil {
		var rErr *remote.Error
		if errors.As(err, &rErr) && rErr.Kind == remote.KindHTTPStatus {
			return fail(log, StateCalling, ReasonRemoteRejected, err)
		}
		return fail(log, StateCalling, ReasonRemoteUnavailable, err)
	}

	// Decoding
	log.Info("レスポンスを復号します", "content_type", resp.ContentType, "bytes", len(resp.Body))
	result, err := decoder.Decode(resp, req.Seed)
	if err != nil {
		return fail(log, StateDecoding, ReasonBadResponse, err)
	}

	// Delivered
	log.Info("リモート生成が完了しました",
		"state", StateDelivered, "images", len(result.Images),
		"used_seed", result.UsedSeed, "skipped_entries", len(result.Diagnostics))

	return domain.Outcome{
		Images:      result.Images,
		Diagnostics: result.Diagnostics,
		UsedSeed:    result.UsedSeed,
		Info:        deliveredInfo(result),
	}
}

// fail は終端失敗の Outcome を構築します。
// サイレントな失敗は許容しないため、必ずログと人間可読メッセージの両方を残します。
func fail(log *slog.Logger, at State, reason FailReason, err error) domain.Outcome {
	failure := &Failure{Reason: reason, At: at, Err: err}
	log.Error("リモート生成に失敗しました", "state", at, "reason", reason, "error", err)
	return domain.Outcome{
		Err:  failure,
		Info: failure.Error(),
	}
}

// deliveredInfo はホストのギャラリー/ログ領域へ表示する完了メッセージを組み立てます。
// リモートがシードを再採番した場合もここで実際の値が見えるようにします。
func deliveredInfo(result *domain.DecodedResult) string {
	info := fmt.Sprintf("リモート生成が完了しました。画像: %d枚 / Seed: %d", len(result.Images), result.UsedSeed)
	if n := len(result.Diagnostics); n > 0 {
		info += fmt.Sprintf("（%d件のエントリを読み飛ばしました）", n)
	}
	return info
}
