package notification

import (
	"context"
	"sync"
)

// NoopNotifier discards every notice. Used when no SMTP host is configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(ctx context.Context, noticeType NoticeType, notice Notice) error {
	return nil
}

// MockNotifier records sent notices for assertions in tests
type MockNotifier struct {
	mu   sync.Mutex
	sent []SentNotice
}

type SentNotice struct {
	Type   NoticeType
	Notice Notice
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, noticeType NoticeType, notice Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentNotice{Type: noticeType, Notice: notice})
	return nil
}

// Sent returns a copy of every notice recorded so far
func (m *MockNotifier) Sent() []SentNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotice, len(m.sent))
	copy(out, m.sent)
	return out
}
