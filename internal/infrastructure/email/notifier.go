// Package email delivers funding digests over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gomail "gopkg.in/mail.v2"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/ports"
)

// Config holds SMTP configuration for sending digests.
type Config struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    []string
	BackupDir  string
	Enabled    bool
}

// Sender is the part of *gomail.Dialer the notifier uses.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier renders a digest and sends it as one multipart email.
type Notifier struct {
	cfg      Config
	renderer *Renderer
	sender   Sender
	logger   *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires a gomail dialer from cfg.
func NewNotifier(cfg Config, renderer *Renderer, log *slog.Logger) *Notifier {
	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second
	return NewNotifierWithSender(cfg, renderer, dialer, log)
}

// NewNotifierWithSender is NewNotifier with an explicit transport.
func NewNotifierWithSender(cfg Config, renderer *Renderer, sender Sender, log *slog.Logger) *Notifier {
	if renderer == nil {
		renderer = NewRenderer(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{cfg: cfg, renderer: renderer, sender: sender, logger: log}
}

// PublishDigest sends the digest. A disabled notifier is a no-op. When sending fails
// and a backup directory is configured, the HTML body is written there first.
func (n *Notifier) PublishDigest(ctx context.Context, digest domain.Digest) error {
	if !n.cfg.Enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := n.renderer.Render(digest)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", n.cfg.ToEmail...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	n.logger.Info("sending digest email", "smtp", fmt.Sprintf("%s:%d", n.cfg.SMTPServer, n.cfg.SMTPPort),
		"recipients", len(n.cfg.ToEmail), "announcements", len(digest.Announcements))

	if err := n.sender.DialAndSend(m); err != nil {
		if path, backupErr := n.backup(digest, msg.HTML); backupErr != nil {
			n.logger.Error("digest backup failed", "error", backupErr)
		} else if path != "" {
			n.logger.Warn("digest saved to backup", "path", path)
		}
		return fmt.Errorf("send digest email: %w", err)
	}

	n.logger.Info("digest email sent", "subject", msg.Subject)
	return nil
}

func (n *Notifier) backup(digest domain.Digest, html string) (string, error) {
	if n.cfg.BackupDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(n.cfg.BackupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	name := fmt.Sprintf("%s_digest_%s.html", digest.Kind, digest.GeneratedAt.UTC().Format("2006-01-02_15-04-05"))
	path := filepath.Join(n.cfg.BackupDir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}
