package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wneessen/go-mail"

	"museumreport/internal/config"
	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// Sender delivers composed messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPNotifier emails the generated reports
type SMTPNotifier struct {
	cfg         config.EmailConfig
	archivePath string
	timeout     time.Duration
	sender      Sender
	logger      *slog.Logger
}

// Option configures an SMTPNotifier
type Option func(*SMTPNotifier)

// WithArchive zips the attachments into path and sends that single file
func WithArchive(path string) Option {
	return func(n *SMTPNotifier) { n.archivePath = path }
}

// WithSender replaces the SMTP client
func WithSender(s Sender) Option {
	return func(n *SMTPNotifier) { n.sender = s }
}

// WithTimeout sets the SMTP connection timeout
func WithTimeout(d time.Duration) Option {
	return func(n *SMTPNotifier) { n.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(n *SMTPNotifier) { n.logger = l }
}

// NewSMTPNotifier creates a notifier sending from cfg.Sender to
// cfg.Recipients over STARTTLS with PLAIN auth
func NewSMTPNotifier(cfg config.EmailConfig, opts ...Option) (*SMTPNotifier, error) {
	if cfg.Sender == "" {
		return nil, apperrors.NewInvalidArgumentError("sender", "is empty")
	}
	if len(cfg.Recipients) == 0 {
		return nil, apperrors.NewInvalidArgumentError("recipients", "is empty")
	}

	n := &SMTPNotifier{
		cfg:     cfg,
		timeout: 30 * time.Second,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With(slog.String("component", "notifier"))

	if n.sender == nil {
		client, err := mail.NewClient(cfg.Host,
			mail.WithPort(cfg.Port),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Sender),
			mail.WithPassword(cfg.Password),
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithTimeout(n.timeout),
		)
		if err != nil {
			return nil, apperrors.NewNotificationError("failed to create SMTP client", err)
		}
		n.sender = client
	}
	return n, nil
}

// Notify sends one email with the notification's attachments. Attachment
// files that do not exist are skipped.
func (n *SMTPNotifier) Notify(ctx context.Context, note domain.Notification) error {
	files := n.existing(ctx, note.Attachments)

	if n.archivePath != "" && len(files) > 0 {
		if err := ArchiveFiles(files, n.archivePath); err != nil {
			return apperrors.NewNotificationError("failed to archive reports", err)
		}
		n.logger.InfoContext(ctx, "Reports archived",
			slog.String("archive", n.archivePath),
			slog.Int("files", len(files)))
		files = []string{n.archivePath}
	}

	msg, err := n.compose(note, files)
	if err != nil {
		return apperrors.NewNotificationError("failed to compose email", err)
	}

	start := time.Now()
	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return apperrors.NewNotificationError(
			fmt.Sprintf("failed to send email via %s:%d", n.cfg.Host, n.cfg.Port), err)
	}

	n.logger.InfoContext(ctx, "Email sent",
		slog.Any("recipients", n.cfg.Recipients),
		slog.Int("attachments", len(files)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (n *SMTPNotifier) compose(note domain.Notification, files []string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(n.cfg.Recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(note.Subject)
	msg.SetBodyString(mail.TypeTextPlain, note.Body)
	for _, f := range files {
		msg.AttachFile(f)
	}
	return msg, nil
}

func (n *SMTPNotifier) existing(ctx context.Context, files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.IsDir() {
			n.logger.WarnContext(ctx, "Attachment not found, skipping",
				slog.String("file_path", f))
			continue
		}
		out = append(out, f)
	}
	return out
}
