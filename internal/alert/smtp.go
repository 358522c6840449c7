package alert

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"text/template"
	"time"

	"github.com/sweeney/stove-sensor/internal/config"
)

// Kept short: carrier email-to-SMS gateways truncate around 160 characters.
var bodyTmpl = template.Must(template.New("sms").Parse(
	Message + "\n" +
		`{{printf "%.1f" .Reading.TempF}}F, light {{.Reading.Light}}, {{.Timestamp.Format "15:04"}}` + "\n"))

// SMTPSender sends alerts as plain-text email, one message per recipient.
// Pointing recipients at carrier gateways (e.g. 5551234567@vtext.com)
// delivers them as SMS.
type SMTPSender struct {
	cfg  config.SMTPConfig
	send func(ctx context.Context, addr, from string, to []string, msg []byte) error
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewSMTPSender validates cfg and returns a sender.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: host not configured")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp: from address not configured")
	}
	if len(cfg.Recipients) == 0 {
		return nil, errors.New("smtp: no recipients configured")
	}

	s := &SMTPSender{cfg: cfg, dial: (&net.Dialer{}).DialContext}
	s.send = s.dialAndSend
	return s, nil
}

// Send delivers a to every recipient. Every recipient is attempted; errors
// are joined.
func (s *SMTPSender) Send(ctx context.Context, a Alert) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var errs []error
	for _, rcpt := range s.cfg.Recipients {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", rcpt, err))
			continue
		}

		msg, err := s.compose(rcpt, a)
		if err != nil {
			return fmt.Errorf("compose message: %w", err)
		}

		if err := s.send(ctx, addr, s.cfg.From, []string{rcpt}, msg); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", rcpt, err))
			continue
		}
		log.Printf("alert: sms sent to %s", rcpt)
	}
	return errors.Join(errs...)
}

func (s *SMTPSender) compose(rcpt string, a Alert) ([]byte, error) {
	var body bytes.Buffer
	if err := bodyTmpl.Execute(&body, a); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", rcpt)
	fmt.Fprintf(&msg, "Subject: %s\r\n", Subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", a.Timestamp.Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: <%s@stove-sensor>\r\n", a.ID)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// dialAndSend is smtp.SendMail with a context-bounded connection.
func (s *SMTPSender) dialAndSend(ctx context.Context, addr, from string, to []string, msg []byte) error {
	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			conn.Close()
			return fmt.Errorf("set deadline: %w", err)
		}
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return c.Quit()
}
