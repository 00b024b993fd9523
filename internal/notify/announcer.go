// Package notify emails club members about new group rides.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"backend-velohub/internal/config"
	"backend-velohub/internal/db"
	"backend-velohub/internal/event"

	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/mail"
)

// SendFunc delivers one message to a set of addresses.
type SendFunc func(ctx context.Context, recipients []string, subject, body string) error

type Announcer struct {
	db   db.Querier
	send SendFunc
}

// NewAnnouncer returns nil when SMTP is not configured.
func NewAnnouncer(cfg config.Config, q db.Querier) *Announcer {
	if cfg.SMTPHost == "" || q == nil {
		return nil
	}
	return &Announcer{db: q, send: smtpSender(cfg)}
}

func newAnnouncer(q db.Querier, send SendFunc) *Announcer {
	return &Announcer{db: q, send: send}
}

func smtpSender(cfg config.Config) SendFunc {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	return func(ctx context.Context, recipients []string, subject, body string) error {
		// A fresh mail service per send; receivers accumulate otherwise.
		mailSvc := mail.New(from, addr)
		if cfg.SMTPUser != "" {
			mailSvc.AuthenticateSMTP("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
		}
		mailSvc.AddReceivers(recipients...)

		n := notify.New()
		n.UseServices(mailSvc)
		return n.Send(ctx, subject, body)
	}
}

func (a *Announcer) AnnounceEvent(ctx context.Context, e event.Event) error {
	recipients, err := a.recipients(ctx, e.CreatedBy)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	subject, body := message(e)
	if err := a.send(ctx, recipients, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	log.Printf("announced event %s to %d members", e.ID, len(recipients))
	return nil
}

func (a *Announcer) recipients(ctx context.Context, organizer string) ([]string, error) {
	rows, err := a.db.Query(ctx, `SELECT email FROM users WHERE id <> $1 ORDER BY email`, organizer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func message(e event.Event) (string, string) {
	subject := fmt.Sprintf("[VeloHub] New ride: %s", e.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "Ride: %s\n", e.Title)
	fmt.Fprintf(&b, "Starts: %s\n", e.StartsAt.UTC().Format("2006-01-02 15:04 UTC"))
	if e.MeetingLat != nil && e.MeetingLon != nil {
		fmt.Fprintf(&b, "Meeting point: %.6f, %.6f\n", *e.MeetingLat, *e.MeetingLon)
	}
	if e.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Description)
	}
	return subject, b.String()
}
