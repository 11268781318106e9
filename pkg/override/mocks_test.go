package override

import (
	"context"

	"github.com/shouni/nai-override-kit/pkg/domain"
)

// mockSender は Sender インターフェースのテスト用モックなのだ。
type mockSender struct {
	callCount   int
	lastPayload any
	lastCred    domain.Credential
	sendFunc    func(ctx context.Context, payload any, cred domain.Credential) (*domain.RemoteResponse, error)
}

func (m *mockSender) Send(ctx context.Context, payload any, cred domain.Credential) (*domain.RemoteResponse, error) {
	m.callCount++
	m.lastPayload = payload
	m.lastCred = cred
	if m.sendFunc != nil {
		return m.sendFunc(ctx, payload, cred)
	}
	return &domain.RemoteResponse{}, nil
}
