package smtp

import (
	"context"
	"crypto/tls"
	"fmt"

	"daily_quote_mailer/internal/domain/email"
	"daily_quote_mailer/internal/infra/config"

	"github.com/wneessen/go-mail"
)

// implicitTLSPort is the SMTPS submission port; other ports negotiate STARTTLS.
const implicitTLSPort = 465

// Dialer implements email.Dialer with github.com/wneessen/go-mail.
type Dialer struct {
	cfg config.SMTPConfig

	// overrides are applied after the options derived from cfg.
	overrides []mail.Option
}

func NewDialer(cfg config.SMTPConfig) *Dialer {
	return &Dialer{cfg: cfg}
}

func (d *Dialer) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(d.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(d.cfg.Address),
		mail.WithPassword(d.cfg.Password),
		mail.WithTLSConfig(&tls.Config{ServerName: d.cfg.Server, MinVersion: tls.VersionTLS12}),
	}
	if d.cfg.Port == implicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if d.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(d.cfg.Timeout))
	}
	return append(opts, d.overrides...)
}

// Dial opens one authenticated, encrypted session. Missing configuration is
// reported here, before any network traffic.
func (d *Dialer) Dial(ctx context.Context) (email.Session, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := mail.NewClient(d.cfg.Server, d.options()...)
	if err != nil {
		return nil, fmt.Errorf("smtp client for %s:%d: %w", d.cfg.Server, d.cfg.Port, err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return nil, fmt.Errorf("smtp dial %s:%d: %w", d.cfg.Server, d.cfg.Port, err)
	}
	return &session{client: client}, nil
}

type session struct {
	client *mail.Client
}

// Send delivers one message over the open session. A failed send never
// redials; the transaction is reset so the next message starts clean.
func (s *session) Send(ctx context.Context, msg *email.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := buildMessage(msg)
	if err != nil {
		return fmt.Errorf("smtp compose for %s: %w", msg.To, err)
	}
	if err := s.client.Send(m); err != nil {
		if rerr := s.client.Reset(); rerr != nil {
			return fmt.Errorf("smtp send to %s: %w (reset failed: %v)", msg.To, err, rerr)
		}
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *session) Close() error {
	return s.client.Close()
}

func buildMessage(msg *email.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.FromAddress); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}
