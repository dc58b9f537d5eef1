package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// EmailConfig configures the SMTP channel.
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// EmailChannel delivers run summaries over SMTP.
type EmailChannel struct {
	cfg EmailConfig
}

func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &EmailChannel{cfg: cfg}
}

// Name returns the channel identifier "email".
func (c *EmailChannel) Name() string {
	return "email"
}

// IsEnabled reports whether the SMTP endpoint and addresses are configured.
func (c *EmailChannel) IsEnabled() bool {
	return c.cfg.Enabled && c.cfg.Host != "" && c.cfg.From != "" && len(c.cfg.To) > 0
}

// Send delivers the summary as a plain-text mail. A fresh SMTP connection is
// dialed per run; summaries are rare enough that pooling buys nothing.
func (c *EmailChannel) Send(ctx context.Context, summary *RunSummary) error {
	if !c.IsEnabled() {
		return ErrChannelDisabled
	}
	if summary == nil {
		return ErrInvalidSummary
	}

	msg := mail.NewMsg()
	if err := msg.From(c.cfg.From); err != nil {
		return fmt.Errorf("email: from address: %w", err)
	}
	if err := msg.To(c.cfg.To...); err != nil {
		return fmt.Errorf("email: to addresses: %w", err)
	}
	msg.Subject(summary.Subject())
	msg.SetBodyString(mail.TypeTextPlain, summary.Body())

	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if c.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.cfg.Username),
			mail.WithPassword(c.cfg.Password),
		)
	}

	client, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("email: smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}
