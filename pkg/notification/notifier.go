package notification

import "context"

// NoticeType identifies the kind of notice being delivered
type NoticeType string

const (
	NoticeAccountLocked NoticeType = "account_locked"
)

// Notice carries the recipient and the template data for one delivery
type Notice struct {
	To   string            // recipient address
	Data map[string]string // template fields (employee name, attempt count, ...)
}

// Notifier delivers account notices. Delivery failures are reported to the
// caller; whether they are fatal is the caller's call.
type Notifier interface {
	Send(ctx context.Context, noticeType NoticeType, notice Notice) error
}
