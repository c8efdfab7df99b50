package service

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/longform/internal/db"
)

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func confirmTokenFrom(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if !strings.Contains(line, "/subscribe/confirm?") {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(line))
		if err != nil {
			t.Fatalf("bad confirm link %q: %v", line, err)
		}
		return u.Query().Get("token")
	}
	t.Fatalf("no confirm link in %q", body)
	return ""
}

func TestSubscribeSendsConfirmationAndConfirms(t *testing.T) {
	gdb := setupServiceTestDB(t)
	mailer := &recordingMailer{}
	svc := NewSubscriptionService(gdb, SubscriptionOptions{
		Mailer:      mailer,
		SiteName:    "Notes",
		SiteBaseURL: "https://example.test/",
		NotifyEmail: "owner@example.test",
	}).WithClock(func() time.Time { return fixedNow })

	outcome, err := svc.Subscribe("  Reader@Example.com ")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if outcome != SubscribeCreated {
		t.Fatalf("expected created, got %q", outcome)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "reader@example.com" || mailer.sent[0].subject != "[Notes] Confirm your subscription" {
		t.Fatalf("unexpected mail %+v", mailer.sent)
	}
	if !strings.Contains(mailer.sent[0].body, "https://example.test/subscribe/confirm?token=") {
		t.Fatalf("confirm link missing from %q", mailer.sent[0].body)
	}
	token := confirmTokenFrom(t, mailer.sent[0].body)

	subscriber, err := svc.Confirm(token)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if !subscriber.Confirmed() || subscriber.ConfirmedAt == nil || !subscriber.ConfirmedAt.Equal(fixedNow) {
		t.Fatalf("unexpected subscriber %+v", subscriber)
	}

	var stored db.Subscriber
	gdb.First(&stored, subscriber.ID)
	if stored.Status != db.SubscriberConfirmed || stored.Token != nil {
		t.Fatalf("token should be cleared after confirm, got %+v", stored)
	}
	if len(mailer.sent) != 2 || mailer.sent[1].to != "owner@example.test" || !strings.Contains(mailer.sent[1].body, "reader@example.com") {
		t.Fatalf("expected owner notification, got %+v", mailer.sent)
	}

	if _, err := svc.Confirm(token); !errors.Is(err, ErrSubscriptionToken) {
		t.Fatalf("token must be single use, got %v", err)
	}
}

func TestSubscribeReportsExistingSubscribers(t *testing.T) {
	gdb := setupServiceTestDB(t)
	mailer := &recordingMailer{}
	svc := NewSubscriptionService(gdb, SubscriptionOptions{Mailer: mailer})

	if _, err := svc.Subscribe("a@example.com"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	outcome, err := svc.Subscribe("A@example.com")
	if err != nil || outcome != SubscribeAlreadyPending {
		t.Fatalf("expected pending, got %q %v", outcome, err)
	}

	if _, err := svc.Confirm(confirmTokenFrom(t, mailer.sent[0].body)); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	outcome, err = svc.Subscribe("a@example.com")
	if err != nil || outcome != SubscribeAlreadyConfirmed {
		t.Fatalf("expected confirmed, got %q %v", outcome, err)
	}

	var count int64
	gdb.Model(&db.Subscriber{}).Count(&count)
	if count != 1 || len(mailer.sent) != 1 {
		t.Fatalf("repeat requests must not add rows or mail, rows=%d mails=%d", count, len(mailer.sent))
	}
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	svc := NewSubscriptionService(setupServiceTestDB(t), SubscriptionOptions{Mailer: &recordingMailer{}})

	for _, raw := range []string{"", "not-an-email", "a@", strings.Repeat("x", 250) + "@example.com"} {
		if _, err := svc.Subscribe(raw); !errors.Is(err, ErrSubscriberEmailInvalid) {
			t.Fatalf("Subscribe(%q) = %v, want ErrSubscriberEmailInvalid", raw, err)
		}
	}
}

func TestSubscribeMailFailureKeepsPendingRow(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSubscriptionService(gdb, SubscriptionOptions{Mailer: &recordingMailer{err: errors.New("smtp down")}})

	if _, err := svc.Subscribe("b@example.com"); !errors.Is(err, ErrConfirmationNotSent) {
		t.Fatalf("expected ErrConfirmationNotSent, got %v", err)
	}

	var stored db.Subscriber
	if err := gdb.Where("email = ?", "b@example.com").First(&stored).Error; err != nil {
		t.Fatalf("pending row missing: %v", err)
	}
	if stored.Status != db.SubscriberPending || stored.Token == nil {
		t.Fatalf("unexpected row %+v", stored)
	}
}

func TestConfirmRejectsUnknownToken(t *testing.T) {
	svc := NewSubscriptionService(setupServiceTestDB(t), SubscriptionOptions{})

	for _, token := range []string{"", "   ", "nope"} {
		if _, err := svc.Confirm(token); !errors.Is(err, ErrSubscriptionToken) {
			t.Fatalf("Confirm(%q) = %v, want ErrSubscriptionToken", token, err)
		}
	}
}
