package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

type noticeTemplate struct {
	Subject string
	Body    *template.Template
}

var noticeTemplates = map[NoticeType]noticeTemplate{
	NoticeAccountLocked: {
		Subject: "Sua conta SIPE foi bloqueada",
		Body: template.Must(template.New("account_locked").Parse(
			"Olá {{.Name}},\n\n" +
				"Sua conta foi bloqueada após {{.Attempts}} tentativas de login sem sucesso.\n" +
				"Procure o RH para desbloquear o acesso.\n")),
	},
}

// EmailNotifier delivers notices over SMTP
type EmailNotifier struct {
	config SMTPConfig
	client *mail.Client
}

func NewEmailNotifier(config SMTPConfig) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30),
	}

	// Only add authentication if username and password are provided
	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if !config.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &EmailNotifier{config: config, client: client}, nil
}

func (e *EmailNotifier) Send(ctx context.Context, noticeType NoticeType, notice Notice) error {
	if notice.To == "" {
		return fmt.Errorf("notice requires a 'To' address")
	}

	tmpl, ok := noticeTemplates[noticeType]
	if !ok {
		return fmt.Errorf("no template registered for notice type %q", noticeType)
	}

	var body bytes.Buffer
	if err := tmpl.Body.Execute(&body, notice.Data); err != nil {
		return fmt.Errorf("failed to render notice template: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(e.config.From); err != nil {
		return fmt.Errorf("failed to set from address: %w", err)
	}
	if err := msg.To(notice.To); err != nil {
		return fmt.Errorf("failed to set to address: %w", err)
	}
	msg.Subject(tmpl.Subject)
	msg.SetBodyString(mail.TypeTextPlain, body.String())

	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notice email: %w", err)
	}

	slog.Info("Notice email sent", "type", noticeType, "to", notice.To)
	return nil
}
