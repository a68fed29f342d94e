package connector

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/workmesh/maestro/internal/engine"
	"github.com/workmesh/maestro/internal/planner"
	"github.com/workmesh/maestro/pkg/api"
)

type (
	// Sender delivers a rendered message. The SMTP implementation below is
	// the default; tests and alternative transports inject their own
	Sender interface {
		Send(ctx context.Context, to, subject, body string) error
	}

	// Mailer emails the report artifact produced earlier in the run
	Mailer struct {
		sender Sender
		ws     *Workspace
	}

	// SMTPSender is the production Sender, speaking plain SMTP to an
	// injected host
	SMTPSender struct {
		Addr string
		From string
	}
)

// NewMailer creates the mail connector with an injected sender
func NewMailer(sender Sender, ws *Workspace) *Mailer {
	return &Mailer{sender: sender, ws: ws}
}

func (m *Mailer) Name() string {
	return "mail"
}

// Register contributes the send_email handler
func (m *Mailer) Register(r *engine.Registry) error {
	return r.Register(planner.ActionSendEmail, m.send)
}

func (m *Mailer) send(ctx context.Context, params api.Args) (api.Args, error) {
	recipient := params.GetString("recipient", "")
	if recipient == "" || !strings.Contains(recipient, "@") {
		return nil, badParam(
			planner.ActionSendEmail, "recipient", "expected email address",
		)
	}
	subject := params.GetString("subject", "Your report is ready")

	val, err := m.ws.Get(ctx, wsArtifact)
	if err != nil {
		return nil, err
	}
	artifact, ok := val.(*Artifact)
	if !ok {
		return nil, fmt.Errorf("%w: workspace artifact", ErrBadParams)
	}

	if err := m.sender.Send(
		ctx, recipient, subject, artifact.Body,
	); err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return api.Args{
		"recipient":    recipient,
		"subject":      subject,
		"artifact_key": artifact.Key,
	}, nil
}

// Send delivers the message through the configured SMTP host
func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.From, to, subject, body,
	)
	return smtp.SendMail(s.Addr, nil, s.From, []string{to}, []byte(msg))
}
