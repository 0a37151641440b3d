package email

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/courtbook/courtbook/internal/domain"
)

type fakeSender struct {
	mu        sync.Mutex
	recipient string
	subject   string
	body      string
	done      chan struct{}
}

func newFakeSender() *fakeSender {
	return &fakeSender{done: make(chan struct{}, 1)}
}

func (f *fakeSender) Send(ctx context.Context, recipient, subject, body string) error {
	f.mu.Lock()
	f.recipient = recipient
	f.subject = subject
	f.body = body
	f.mu.Unlock()
	select {
	case f.done <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeSender) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for send")
	}
}

func sampleDetail() domain.BookingDetail {
	var detail domain.BookingDetail
	detail.ID = 42
	detail.TotalPriceCents = 2000
	detail.User.Email = "alice@example.com"
	detail.Slot.Date = "2026-03-16"
	detail.Slot.StartTime = "10:00"
	detail.Slot.EndTime = "11:00"
	detail.Slot.Court.Name = "Court A"
	return detail
}

func TestSendBookingConfirmation(t *testing.T) {
	sender := newFakeSender()

	SendBookingConfirmation(sender, sampleDetail(), zerolog.Nop())
	sender.wait(t)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.recipient != "alice@example.com" {
		t.Fatalf("unexpected recipient %q", sender.recipient)
	}
	if !strings.Contains(sender.subject, "Court A") {
		t.Fatalf("subject missing court name: %q", sender.subject)
	}
	if !strings.Contains(sender.body, "$20.00") {
		t.Fatalf("body missing price: %q", sender.body)
	}
	if !strings.Contains(sender.body, "42") {
		t.Fatalf("body missing booking reference: %q", sender.body)
	}
}

func TestSendBookingCancellation(t *testing.T) {
	sender := newFakeSender()

	SendBookingCancellation(sender, sampleDetail(), zerolog.Nop())
	sender.wait(t)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if !strings.Contains(sender.subject, "cancelled") {
		t.Fatalf("subject missing cancelled: %q", sender.subject)
	}
}

func TestSendSkipsNilSenderAndEmptyRecipient(t *testing.T) {
	// Both are no-ops; reaching the end without panicking is the assertion.
	SendBookingConfirmation(nil, sampleDetail(), zerolog.Nop())

	sender := newFakeSender()
	detail := sampleDetail()
	detail.User.Email = "  "
	SendBookingConfirmation(sender, detail, zerolog.Nop())

	select {
	case <-sender.done:
		t.Fatal("expected no send for empty recipient")
	case <-time.After(100 * time.Millisecond):
	}
}
