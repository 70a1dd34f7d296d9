package mailer

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/achla24/LeaveEase/internal/config"

	"go.uber.org/zap"
)

type ContentType string

const (
	ContentHTML  ContentType = "text/html"
	ContentPlain ContentType = "text/plain"
)

const previewLen = 200

// Credentials are a per-message SMTP login, used when a message must go out
// from a specific person's mailbox instead of the system account.
type Credentials struct {
	Username string
	Password string
	Host     string
	Port     int
}

type Message struct {
	From        string
	FromName    string
	ReplyTo     string
	To          string
	Subject     string
	Body        string
	Credentials *Credentials
}

// Sender delivers one message over a concrete transport.
type Sender interface {
	Send(ctx context.Context, msg Message, contentType ContentType) error
}

type Mailer struct {
	system     Sender
	configured bool
	from       string
	fromName   string
	smtpFor    func(Credentials) Sender
	logger     *zap.Logger
}

// New picks the system transport from cfg. Without credentials for the chosen
// driver the mailer only logs what it would have sent.
func New(cfg config.MailConfig, logger ...*zap.Logger) *Mailer {
	var system Sender
	configured := false

	switch cfg.Driver {
	case "resend":
		configured = cfg.ResendAPIKey != "" && cfg.Username != ""
		system = NewResendSender(cfg.ResendAPIKey)
	default:
		configured = cfg.Username != "" && cfg.Password != ""
		system = NewSMTPSender(Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
			Host:     cfg.Host,
			Port:     cfg.Port,
		}, cfg.Timeout)
	}

	m := NewWithSender(system, configured, cfg.Username, cfg.FromName, logger...)
	m.smtpFor = func(c Credentials) Sender {
		if c.Host == "" {
			c.Host, c.Port = ProviderSMTP(c.Username, cfg.Host, cfg.Port)
		}
		return NewSMTPSender(c, cfg.Timeout)
	}
	return m
}

func NewWithSender(system Sender, configured bool, from, fromName string, logger ...*zap.Logger) *Mailer {
	l := zap.L().Named("mailer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("mailer")
	}
	return &Mailer{
		system:     system,
		configured: configured,
		from:       from,
		fromName:   fromName,
		smtpFor:    func(Credentials) Sender { return system },
		logger:     l,
	}
}

// WithCredentialSender overrides how per-message credentials are turned into
// a transport.
func (m *Mailer) WithCredentialSender(fn func(Credentials) Sender) *Mailer {
	m.smtpFor = fn
	return m
}

// SystemAddress is the mailbox system mail is sent from.
func (m *Mailer) SystemAddress() string {
	return m.from
}

func (m *Mailer) Configured() bool {
	return m.configured
}

// SendHTML sends msg as HTML. A failed HTML send is retried once as plain
// text with tags stripped.
func (m *Mailer) SendHTML(ctx context.Context, msg Message) error {
	msg = m.withDefaults(msg)
	if !m.canSend(msg) {
		m.logPreview(msg, ContentHTML)
		return nil
	}

	sender := m.senderFor(msg)
	htmlErr := sender.Send(ctx, msg, ContentHTML)
	if htmlErr == nil {
		m.logger.Info("email sent",
			zap.String("to", msg.To),
			zap.String("from", msg.From),
			zap.String("subject", msg.Subject),
			zap.String("content_type", string(ContentHTML)),
		)
		return nil
	}

	m.logger.Warn("html email failed, retrying as plain text",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Error(htmlErr),
	)

	plain := msg
	plain.Body = StripTags(msg.Body)
	if err := sender.Send(ctx, plain, ContentPlain); err != nil {
		m.logger.Error("plain text fallback failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("send html: %w; send plain: %w", htmlErr, err)
	}

	m.logger.Info("email sent as plain text fallback",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func (m *Mailer) SendPlain(ctx context.Context, msg Message) error {
	msg = m.withDefaults(msg)
	if !m.canSend(msg) {
		m.logPreview(msg, ContentPlain)
		return nil
	}

	if err := m.senderFor(msg).Send(ctx, msg, ContentPlain); err != nil {
		m.logger.Error("plain email failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("send plain: %w", err)
	}

	m.logger.Info("email sent",
		zap.String("to", msg.To),
		zap.String("from", msg.From),
		zap.String("subject", msg.Subject),
		zap.String("content_type", string(ContentPlain)),
	)
	return nil
}

func (m *Mailer) withDefaults(msg Message) Message {
	if msg.Credentials != nil {
		if msg.From == "" {
			msg.From = msg.Credentials.Username
		}
		return msg
	}
	if msg.From == "" {
		msg.From = m.from
	}
	if msg.FromName == "" {
		msg.FromName = m.fromName
	}
	return msg
}

func (m *Mailer) canSend(msg Message) bool {
	if msg.Credentials != nil {
		return msg.Credentials.Username != "" && msg.Credentials.Password != ""
	}
	return m.configured
}

func (m *Mailer) senderFor(msg Message) Sender {
	if msg.Credentials != nil {
		return m.smtpFor(*msg.Credentials)
	}
	return m.system
}

func (m *Mailer) logPreview(msg Message, contentType ContentType) {
	preview := msg.Body
	if r := []rune(preview); len(r) > previewLen {
		preview = string(r[:previewLen]) + "..."
	}
	m.logger.Info("email credentials not configured, logging instead of sending",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("content_type", string(contentType)),
		zap.String("preview", preview),
	)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes markup and decodes entities so an HTML body can be sent
// as plain text.
func StripTags(body string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(body, "")))
}

// ProviderSMTP maps a mailbox to its provider's submission endpoint. Unknown
// domains use the fallback host.
func ProviderSMTP(email, fallbackHost string, fallbackPort int) (string, int) {
	domain := ""
	if at := strings.LastIndex(email, "@"); at >= 0 {
		domain = strings.ToLower(email[at+1:])
	}

	switch {
	case strings.Contains(domain, "gmail"):
		return "smtp.gmail.com", 587
	case strings.Contains(domain, "outlook"), strings.Contains(domain, "hotmail"):
		return "smtp-mail.outlook.com", 587
	case strings.Contains(domain, "yahoo"):
		return "smtp.mail.yahoo.com", 587
	}

	if fallbackPort == 0 {
		fallbackPort = 587
	}
	return fallbackHost, fallbackPort
}
