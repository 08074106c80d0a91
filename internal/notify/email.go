// Package notify delivers reminders produced by the reminder processor.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"

	"contas/internal/core"
	"contas/internal/services"
)

// EmailConfig holds the SMTP settings of the email notifier.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Locale   string
}

// EmailNotifier sends one plain text email per reminder.
type EmailNotifier struct {
	cfg EmailConfig
	// send delivers e; swapped in tests.
	send func(e *email.Email) error
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	n := &EmailNotifier{cfg: cfg}
	n.send = n.sendSMTP
	return n
}

func (n *EmailNotifier) sendSMTP(e *email.Email) error {
	addr := n.cfg.Host + ":" + strconv.Itoa(n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	return e.Send(addr, auth)
}

// Notify implements services.Notifier.
func (n *EmailNotifier) Notify(ctx context.Context, r services.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{n.cfg.To}
	e.Subject = Subject(r, n.cfg.Locale)
	e.Text = []byte(Body(r, n.cfg.Locale))

	if err := n.send(e); err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}
	slog.InfoContext(ctx, "Reminder email sent",
		"instance_key", r.Instance.InstanceKey,
		"kind", r.Kind,
		"to", n.cfg.To)
	return nil
}

// Subject is the one-line summary of r.
func Subject(r services.Reminder, locale string) string {
	amount := core.FormatMoney(r.Instance.Amount, locale)
	if r.Kind == services.ReminderOverdue {
		return fmt.Sprintf("Conta em atraso: %s (%s)", r.Instance.Title, amount)
	}
	switch r.DaysLeft {
	case 0:
		return fmt.Sprintf("Vence hoje: %s (%s)", r.Instance.Title, amount)
	case 1:
		return fmt.Sprintf("Vence amanhã: %s (%s)", r.Instance.Title, amount)
	default:
		return fmt.Sprintf("Vence em %d dias: %s (%s)", r.DaysLeft, r.Instance.Title, amount)
	}
}

// Body renders the email text of r.
func Body(r services.Reminder, locale string) string {
	inst := r.Instance
	var b strings.Builder
	fmt.Fprintf(&b, "Olá,\n\n")
	if r.Kind == services.ReminderOverdue {
		fmt.Fprintf(&b, "A conta %q de %s venceu em %s e ainda não foi marcada como paga.\n",
			inst.Title, core.FormatMoney(inst.Amount, locale), inst.DueDate.Format("02/01/2006"))
		fmt.Fprintf(&b, "Atraso: %d dia(s).\n", -r.DaysLeft)
	} else {
		fmt.Fprintf(&b, "A conta %q de %s vence em %s.\n",
			inst.Title, core.FormatMoney(inst.Amount, locale), inst.DueDate.Format("02/01/2006"))
	}
	if inst.PaymentMethod != "" {
		fmt.Fprintf(&b, "Forma de pagamento: %s\n", inst.PaymentMethod)
	}
	fmt.Fprintf(&b, "Referência: %s\n", inst.InstanceKey)
	b.WriteString("\nContas")
	return b.String()
}

// LogNotifier writes reminders to the log. It is used when SMTP is not configured.
type LogNotifier struct {
	Locale string
}

func (n LogNotifier) Notify(ctx context.Context, r services.Reminder) error {
	slog.InfoContext(ctx, Subject(r, n.Locale),
		"instance_key", r.Instance.InstanceKey,
		"kind", r.Kind,
		"days_left", r.DaysLeft)
	return nil
}
