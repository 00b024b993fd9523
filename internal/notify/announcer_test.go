package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"backend-velohub/internal/config"
	"backend-velohub/internal/event"

	"github.com/pashagolub/pgxmock/v3"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

func recorder(out *[]sentMail, err error) SendFunc {
	return func(_ context.Context, to []string, subject, body string) error {
		*out = append(*out, sentMail{to: to, subject: subject, body: body})
		return err
	}
}

func sampleEvent() event.Event {
	lat, lon := 48.1486, 17.1077
	return event.Event{
		ID:          "e1",
		Title:       "Saturday hills",
		Description: "Bring lights.",
		StartsAt:    time.Date(2026, 6, 6, 7, 30, 0, 0, time.UTC),
		MeetingLat:  &lat,
		MeetingLon:  &lon,
		CreatedBy:   "organizer",
	}
}

func TestAnnounceEventSendsToMembers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT email FROM users").WithArgs("organizer").
		WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow("a@club.test").AddRow("b@club.test"))

	var sent []sentMail
	a := newAnnouncer(mock, recorder(&sent, nil))
	if err := a.AnnounceEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sent))
	}
	if len(sent[0].to) != 2 || sent[0].to[0] != "a@club.test" {
		t.Fatalf("unexpected recipients %v", sent[0].to)
	}
	if !strings.Contains(sent[0].subject, "Saturday hills") {
		t.Fatalf("unexpected subject %q", sent[0].subject)
	}
	for _, want := range []string{"2026-06-06 07:30 UTC", "48.148600, 17.107700", "Bring lights."} {
		if !strings.Contains(sent[0].body, want) {
			t.Fatalf("body missing %q: %s", want, sent[0].body)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAnnounceEventNoRecipients(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT email FROM users").WithArgs("organizer").
		WillReturnRows(pgxmock.NewRows([]string{"email"}))

	var sent []sentMail
	if err := newAnnouncer(mock, recorder(&sent, nil)).AnnounceEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if len(sent) != 0 {
		t.Fatalf("expected no sends")
	}
}

func TestAnnounceEventSendError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT email FROM users").WithArgs("organizer").
		WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow("a@club.test"))

	var sent []sentMail
	boom := errors.New("smtp down")
	err = newAnnouncer(mock, recorder(&sent, boom)).AnnounceEvent(context.Background(), sampleEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("expected smtp error, got %v", err)
	}
}

func TestAnnounceEventQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT email FROM users").WillReturnError(errors.New("db down"))

	var sent []sentMail
	if err := newAnnouncer(mock, recorder(&sent, nil)).AnnounceEvent(context.Background(), sampleEvent()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewAnnouncerDisabledWithoutSMTP(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	defer mock.Close()

	if a := NewAnnouncer(config.Config{}, mock); a != nil {
		t.Fatalf("expected nil announcer without smtp host")
	}
	if a := NewAnnouncer(config.Config{SMTPHost: "smtp.club.test", SMTPPort: 587}, mock); a == nil || a.send == nil {
		t.Fatalf("expected configured announcer")
	}
}
