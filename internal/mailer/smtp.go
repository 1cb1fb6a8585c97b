package mailer

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"onboard/internal/platform/config"
)

// SMTP delivers invites as multipart mail with a text/calendar REQUEST part,
// so mail clients surface the invite natively.
type SMTP struct {
	cfg config.SMTPConfig
}

func NewSMTP(cfg config.SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg}
}

func (s *SMTP) Channel() string { return "email" }

func (s *SMTP) Send(_ context.Context, invite Invite) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	msg, err := s.buildMessage(invite)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{invite.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTP) buildMessage(invite Invite) ([]byte, error) {
	var buf strings.Builder
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", invite.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", invite.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	// Alternative part: plain text + HTML renderings of the same message.
	altBuf := &strings.Builder{}
	alt := multipart.NewWriter(altBuf)
	textPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprint(textPart, invite.TextBody)
	htmlPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprint(htmlPart, invite.HTMLBody)
	if err := alt.Close(); err != nil {
		return nil, err
	}

	altWrapper, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprint(altWrapper, altBuf.String())

	if invite.Calendar != "" {
		calPart, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":        {"text/calendar; method=REQUEST; charset=UTF-8"},
			"Content-Disposition": {`attachment; filename="invite.ics"`},
			"Content-Class":       {"urn:content-classes:calendarmessage"},
		})
		if err != nil {
			return nil, err
		}
		fmt.Fprint(calPart, invite.Calendar)
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
