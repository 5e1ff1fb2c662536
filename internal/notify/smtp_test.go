package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"museumreport/internal/config"
	apperrors "museumreport/internal/errors"
	"museumreport/internal/shared/testutil"
	"museumreport/pkg/contracts/domain"
)

type fakeSender struct {
	messages []*mail.Msg
	err      error
}

func (s *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, messages...)
	return nil
}

func emailConfig() config.EmailConfig {
	return config.EmailConfig{
		Enabled:    true,
		Host:       "smtp.example.com",
		Port:       587,
		Sender:     "reports@example.com",
		Password:   "secret",
		Recipients: []string{"curator@example.com", "archive@example.com"},
	}
}

func attachmentNames(msg *mail.Msg) []string {
	var names []string
	for _, f := range msg.GetAttachments() {
		names = append(names, f.Name)
	}
	return names
}

func TestNewSMTPNotifier_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.EmailConfig)
		want   string
	}{
		{"missing sender", func(c *config.EmailConfig) { c.Sender = "" }, "sender"},
		{"missing recipients", func(c *config.EmailConfig) { c.Recipients = nil }, "recipients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := emailConfig()
			tt.modify(&cfg)

			_, err := NewSMTPNotifier(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewSMTPNotifier_DefaultClient(t *testing.T) {
	n, err := NewSMTPNotifier(emailConfig())
	require.NoError(t, err)
	_, ok := n.sender.(*mail.Client)
	assert.True(t, ok)
}

func TestSMTPNotifier_Notify(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"museum_data.csv": "objectID\n1\n",
		"museum_data.xml": "<records/>",
	})
	logger, handler := testutil.NewTestLogger(t)
	sender := &fakeSender{}

	n, err := NewSMTPNotifier(emailConfig(), WithSender(sender), WithLogger(logger))
	require.NoError(t, err)

	err = n.Notify(context.Background(), domain.Notification{
		Subject: "Museum API Reports",
		Body:    "Please take a look at the generated reports.",
		Attachments: []string{
			filepath.Join(dir, "museum_data.csv"),
			filepath.Join(dir, "museum_data.pdf"),
			filepath.Join(dir, "museum_data.xml"),
		},
	})
	require.NoError(t, err)

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]

	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"curator@example.com", "archive@example.com"}, recipients)
	assert.Equal(t, []string{"Museum API Reports"}, msg.GetGenHeader(mail.HeaderSubject))
	assert.Equal(t, []string{"museum_data.csv", "museum_data.xml"}, attachmentNames(msg))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Please take a look at the generated reports.")

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Attachment not found")
	testutil.AssertLogAttr(t, handler, "file_path", filepath.Join(dir, "museum_data.pdf"))
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Email sent")
}

func TestSMTPNotifier_NotifyArchive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"museum_data.csv":  "objectID\n1\n",
		"museum_data.html": "<table></table>",
	})
	archive := filepath.Join(dir, "museum_data.zip")
	sender := &fakeSender{}

	n, err := NewSMTPNotifier(emailConfig(), WithSender(sender), WithArchive(archive))
	require.NoError(t, err)

	err = n.Notify(context.Background(), domain.Notification{
		Subject:     "Reports",
		Attachments: []string{filepath.Join(dir, "museum_data.csv"), filepath.Join(dir, "museum_data.html")},
	})
	require.NoError(t, err)

	require.Len(t, sender.messages, 1)
	assert.Equal(t, []string{"museum_data.zip"}, attachmentNames(sender.messages[0]))
	assert.Equal(t, []string{"museum_data.csv", "museum_data.html"}, zipNames(t, archive))
}

func TestSMTPNotifier_NotifyWithoutAttachments(t *testing.T) {
	sender := &fakeSender{}
	archive := filepath.Join(t.TempDir(), "museum_data.zip")

	n, err := NewSMTPNotifier(emailConfig(), WithSender(sender), WithArchive(archive))
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), domain.Notification{Subject: "Reports"}))
	require.Len(t, sender.messages, 1)
	assert.Empty(t, attachmentNames(sender.messages[0]))
	_, err = os.Stat(archive)
	assert.True(t, os.IsNotExist(err), "no archive without files")
}

func TestSMTPNotifier_NotifyErrors(t *testing.T) {
	t.Run("send failure", func(t *testing.T) {
		n, err := NewSMTPNotifier(emailConfig(), WithSender(&fakeSender{err: errors.New("535 authentication failed")}))
		require.NoError(t, err)

		err = n.Notify(context.Background(), domain.Notification{Subject: "Reports"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrNotification))
		assert.Contains(t, err.Error(), "smtp.example.com:587")
		assert.False(t, apperrors.IsRetryable(err))
	})

	t.Run("invalid recipient", func(t *testing.T) {
		cfg := emailConfig()
		cfg.Recipients = []string{"not an address"}
		sender := &fakeSender{}

		n, err := NewSMTPNotifier(cfg, WithSender(sender))
		require.NoError(t, err)

		err = n.Notify(context.Background(), domain.Notification{Subject: "Reports"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrNotification))
		assert.Empty(t, sender.messages)
	})
}
