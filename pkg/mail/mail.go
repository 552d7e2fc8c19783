// Package mail builds and delivers transactional email (order confirmations,
// shipping updates).
//
//	m := mail.New(mail.ConfigFromEnv(), mail.NewSMTPSender(cfg))
//	msg := mail.NewMessage().
//	    To("asha@example.com").
//	    Subject("Order VST-8K2M confirmed").
//	    HTML(html).
//	    Text(text)
//	err := m.Send(ctx, msg)
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/vastra/config"
)

// ErrNoRecipients is returned when a message has no To address.
var ErrNoRecipients = errors.New("mail: no recipients")

// ------------------- Config -------------------

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// ConfigFromEnv reads MAIL_* settings.
func ConfigFromEnv() Config {
	return Config{
		Host:     config.MailHost(),
		Port:     config.MailPort(),
		Username: config.MailUsername(),
		Password: config.MailPassword(),
		From:     config.MailFrom(),
		FromName: config.MailFromName(),
	}
}

// ------------------- Message -------------------

// Message is a fluent builder for an email.
type Message struct {
	to      []string
	bcc     []string
	replyTo string
	subject string
	html    string
	text    string
}

// NewMessage starts an empty message.
func NewMessage() *Message { return &Message{} }

// To adds primary recipients.
func (m *Message) To(addresses ...string) *Message {
	m.to = append(m.to, addresses...)
	return m
}

// BCC adds BCC recipients.
func (m *Message) BCC(addresses ...string) *Message {
	m.bcc = append(m.bcc, addresses...)
	return m
}

// ReplyTo sets the Reply-To header.
func (m *Message) ReplyTo(address string) *Message {
	m.replyTo = address
	return m
}

// Subject sets the email subject.
func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// HTML sets the HTML part.
func (m *Message) HTML(body string) *Message {
	m.html = body
	return m
}

// Text sets the plain-text part.
func (m *Message) Text(body string) *Message {
	m.text = body
	return m
}

// Recipients returns every envelope recipient (To and BCC).
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.to)+len(m.bcc))
	out = append(out, m.to...)
	return append(out, m.bcc...)
}

// ------------------- Mailer -------------------

// Sender delivers an encoded message.
type Sender interface {
	Send(ctx context.Context, from string, to []string, raw []byte) error
}

// Mailer renders messages and hands them to a Sender.
type Mailer struct {
	cfg    Config
	sender Sender
	now    func() time.Time
}

// New creates a Mailer.
func New(cfg Config, sender Sender) *Mailer {
	return &Mailer{cfg: cfg, sender: sender, now: time.Now}
}

// Send encodes msg and delivers it.
func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	if len(msg.to) == 0 {
		return ErrNoRecipients
	}
	raw, err := m.Encode(msg)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, m.cfg.From, msg.Recipients(), raw); err != nil {
		return fmt.Errorf("mail: send %q: %w", msg.subject, err)
	}
	return nil
}

// Encode renders msg as an RFC 5322 message. When both HTML and text parts
// are set the body is multipart/alternative.
func (m *Mailer) Encode(msg *Message) ([]byte, error) {
	var buf bytes.Buffer
	h := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	from := (&mail.Address{Name: m.cfg.FromName, Address: m.cfg.From}).String()
	h("From", from)
	h("To", strings.Join(msg.to, ", "))
	if msg.replyTo != "" {
		h("Reply-To", msg.replyTo)
	}
	h("Subject", mime.QEncoding.Encode("utf-8", msg.subject))
	h("Date", m.now().Format(time.RFC1123Z))
	h("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(m.cfg.From)))
	h("MIME-Version", "1.0")

	switch {
	case msg.html != "" && msg.text != "":
		w := multipart.NewWriter(&buf)
		h("Content-Type", `multipart/alternative; boundary="`+w.Boundary()+`"`)
		buf.WriteString("\r\n")
		if err := writePart(w, "text/plain", msg.text); err != nil {
			return nil, err
		}
		if err := writePart(w, "text/html", msg.html); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case msg.html != "":
		h("Content-Type", `text/html; charset="UTF-8"`)
		buf.WriteString("\r\n" + msg.html)
	default:
		h("Content-Type", `text/plain; charset="UTF-8"`)
		buf.WriteString("\r\n" + msg.text)
	}
	return buf.Bytes(), nil
}

func writePart(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType + `; charset="UTF-8"`},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return fmt.Errorf("mail: create part: %w", err)
	}
	_, err = part.Write([]byte(body))
	return err
}

func domainOf(addr string) string {
	if _, d, ok := strings.Cut(addr, "@"); ok && d != "" {
		return d
	}
	return "localhost"
}
