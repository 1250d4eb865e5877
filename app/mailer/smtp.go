package mailer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool // allow opportunistic TLS for local relays
}

// SMTPSender delivers plaintext mail through an SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
	log zerolog.Logger
}

func NewSMTPSender(cfg SMTPConfig, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		cfg: cfg,
		log: log.With().Str("component", "smtp_sender").Logger(),
	}
}

// Send delivers a single plaintext message. Any failure is returned to the
// caller; retry policy belongs to whoever calls us.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return err
	}
	if err := m.To(to); err != nil {
		return err
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return err
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("smtp send failed")
		return err
	}

	s.log.Info().Str("to", to).Str("subject", subject).Msg("smtp send ok")
	return nil
}
