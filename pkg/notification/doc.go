// Package notification delivers account notices such as lockout alerts.
//
// The Notifier interface decouples senders from the flows that trigger
// them; EmailNotifier delivers over SMTP, NoopNotifier is used when no
// SMTP host is configured, and MockNotifier records notices for tests.
package notification
