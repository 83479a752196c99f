package tests

import (
	"context"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// EMAIL QUEUE WORKER
// ──────────────────────────────────────────────

func newEmailWorkerFixture(cfg service.EmailWorkerConfig) (*service.EmailWorker, *MockEmailRepository, *MockProfileRepository, *MockSender) {
	emailRepo := NewMockEmailRepository()
	profileRepo := NewMockProfileRepository()
	profileRepo.AddProfile(&domain.Profile{ID: "user-1", DisplayName: "Pat", Email: "pat@example.com"})
	sender := NewMockSender()
	worker := service.NewEmailWorker(emailRepo, profileRepo, sender, cfg)
	return worker, emailRepo, profileRepo, sender
}

func queueEvent(emailRepo *MockEmailRepository, id string) {
	_ = emailRepo.Enqueue(context.Background(), &domain.EmailEvent{
		ID:          id,
		RecipientID: "user-1",
		Kind:        domain.EmailKindBookingConfirmed,
		Subject:     "Your seat is confirmed",
		Body:        "See you at the meeting point.",
		Status:      domain.EmailStatusQueued,
		CreatedAt:   time.Now(),
	})
}

func TestEmailWorker_DeliversQueuedEvents(t *testing.T) {
	t.Parallel()

	worker, emailRepo, _, sender := newEmailWorkerFixture(service.EmailWorkerConfig{})
	queueEvent(emailRepo, "e1")
	queueEvent(emailRepo, "e2")

	if err := worker.ProcessDue(context.Background()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(sent))
	}
	if sent[0].To != "pat@example.com" {
		t.Errorf("expected delivery to the recipient's address, got %s", sent[0].To)
	}

	for _, id := range []string{"e1", "e2"} {
		event := emailRepo.GetEvent(id)
		if event.Status != domain.EmailStatusSent {
			t.Errorf("%s: expected SENT, got %s", id, event.Status)
		}
		if event.SentAt.IsZero() {
			t.Errorf("%s: sent timestamp should be set", id)
		}
	}
}

func TestEmailWorker_RetriesWithLinearBackoff(t *testing.T) {
	t.Parallel()

	worker, emailRepo, _, sender := newEmailWorkerFixture(service.EmailWorkerConfig{
		BaseDelay:   time.Minute,
		MaxAttempts: 5,
	})
	queueEvent(emailRepo, "e1")
	sender.SendError = ErrMockTimeout

	before := time.Now()
	if err := worker.ProcessDue(context.Background()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	event := emailRepo.GetEvent("e1")
	if event.Status != domain.EmailStatusQueued {
		t.Fatalf("expected event back in QUEUED, got %s", event.Status)
	}
	if event.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", event.Attempts)
	}
	if event.LastError == "" {
		t.Error("last error should be recorded")
	}

	// First retry waits one base delay.
	wantAt := before.Add(time.Minute)
	if event.NextAttemptAt.Before(wantAt.Add(-5*time.Second)) || event.NextAttemptAt.After(wantAt.Add(5*time.Second)) {
		t.Errorf("expected next attempt around %v, got %v", wantAt, event.NextAttemptAt)
	}

	// The event is not due again until the backoff elapses.
	if err := worker.ProcessDue(context.Background()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if emailRepo.GetEvent("e1").Attempts != 1 {
		t.Error("backoff should keep the event out of the next batch")
	}
}

func TestEmailWorker_PermanentFailureAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	worker, emailRepo, _, sender := newEmailWorkerFixture(service.EmailWorkerConfig{
		BaseDelay:   time.Nanosecond,
		MaxAttempts: 3,
	})
	queueEvent(emailRepo, "e1")
	sender.SendError = ErrMockTimeout

	for i := 0; i < 3; i++ {
		// Backoff is effectively zero, so every pass retries.
		time.Sleep(time.Millisecond)
		if err := worker.ProcessDue(context.Background()); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}

	event := emailRepo.GetEvent("e1")
	if event.Status != domain.EmailStatusFailed {
		t.Errorf("expected FAILED after max attempts, got %s", event.Status)
	}
	if event.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", event.Attempts)
	}
}

func TestEmailWorker_UnknownRecipientCountsAsFailure(t *testing.T) {
	t.Parallel()

	worker, emailRepo, _, _ := newEmailWorkerFixture(service.EmailWorkerConfig{
		MaxAttempts: 2,
	})
	_ = emailRepo.Enqueue(context.Background(), &domain.EmailEvent{
		ID:          "e1",
		RecipientID: "ghost",
		Kind:        domain.EmailKindMessageReceived,
		Subject:     "New message",
		Status:      domain.EmailStatusQueued,
		CreatedAt:   time.Now(),
	})

	if err := worker.ProcessDue(context.Background()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	event := emailRepo.GetEvent("e1")
	if event.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", event.Attempts)
	}
	if event.LastError == "" {
		t.Error("recipient lookup failure should be recorded")
	}
}

func TestEmailWorker_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	worker, emailRepo, _, sender := newEmailWorkerFixture(service.EmailWorkerConfig{
		Interval: 5 * time.Millisecond,
	})
	queueEvent(emailRepo, "e1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	// Give the ticker a few cycles to drain the queue.
	deadline := time.After(2 * time.Second)
	for len(sender.Sent()) == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never delivered the queued event")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
