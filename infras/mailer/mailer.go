package mailer

//go:generate go run go.uber.org/mock/mockgen -source=./mailer.go -destination=./mocks/mailer_mock.go -package=mocks

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	otelScopeName = "mailer"
)

// Mailer delivers transactional mail through the configured SMTP relay.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type mailerImpl struct {
	config *config.Config
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Mailer {
	return &mailerImpl{
		config: cfg,
		otel:   otel,
	}
}

func (m *mailerImpl) Send(ctx context.Context, to, subject, body string) (err error) {
	_, scope := m.otel.NewScope(ctx, constant.OtelExternalScopeName, otelScopeName+".Send")
	defer scope.End()
	defer scope.TraceIfError(err)

	smtpCfg := m.config.External.SMTP
	addr := net.JoinHostPort(smtpCfg.Host, smtpCfg.Port)

	var auth smtp.Auth
	if smtpCfg.Username != constant.Empty {
		auth = smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + smtpCfg.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	scope.SetAttribute("mail.to", to)

	if err = smtp.SendMail(addr, auth, smtpCfg.From, []string{to}, []byte(msg)); err != nil {
		log.Error().Err(err).Str("to", to).Msg("failed to send mail")

		return fmt.Errorf("failed to send mail: %w", err)
	}

	log.Info().Str("to", to).Str("subject", subject).Msg("Mail sent successfully.")

	return nil
}
