package service

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// Sender delivers a rendered email to an address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes emails to the process log instead of sending them.
// Used in development and tests.
type LogSender struct{}

// Send logs the email.
func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("[EMAIL] To=%s, Subject=%s", to, subject)
	return nil
}

// SMTPSender delivers email through an SMTP relay.
type SMTPSender struct {
	addr string // host:port
	host string
	from string
	auth smtp.Auth
}

// NewSMTPSender creates an SMTPSender. user may be empty for
// unauthenticated relays.
func NewSMTPSender(addr, host, from, user, password string) *SMTPSender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPSender{addr: addr, host: host, from: from, auth: auth}
}

// Send delivers the email.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, to, subject, body)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
}

// EmailService queues notification emails for asynchronous delivery.
type EmailService struct {
	emailRepo repository.EmailRepository
}

// NewEmailService creates a new EmailService.
func NewEmailService(emailRepo repository.EmailRepository) *EmailService {
	return &EmailService{emailRepo: emailRepo}
}

// Enqueue records an email event in QUEUED state. Failures are logged
// and swallowed: notification loss never fails the triggering request.
func (s *EmailService) Enqueue(ctx context.Context, recipientID string, kind domain.EmailKind, subject, body string) {
	event := &domain.EmailEvent{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Kind:        kind,
		Subject:     subject,
		Body:        body,
		Status:      domain.EmailStatusQueued,
		CreatedAt:   time.Now(),
	}

	if err := s.emailRepo.Enqueue(ctx, event); err != nil {
		log.Printf("failed to enqueue %s email for %s: %v", kind, recipientID, err)
	}
}

// EmailWorkerConfig tunes the queue drain loop.
type EmailWorkerConfig struct {
	Interval    time.Duration
	BatchSize   int
	BaseDelay   time.Duration // Backoff grows linearly: attempt * BaseDelay
	MaxAttempts int
}

// EmailWorker drains the email queue, retrying failed deliveries with
// linear backoff until MaxAttempts.
type EmailWorker struct {
	emailRepo   repository.EmailRepository
	profileRepo repository.ProfileRepository
	sender      Sender
	cfg         EmailWorkerConfig
}

// NewEmailWorker creates a new EmailWorker.
func NewEmailWorker(
	emailRepo repository.EmailRepository,
	profileRepo repository.ProfileRepository,
	sender Sender,
	cfg EmailWorkerConfig,
) *EmailWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &EmailWorker{
		emailRepo:   emailRepo,
		profileRepo: profileRepo,
		sender:      sender,
		cfg:         cfg,
	}
}

// Run drains the queue on a ticker until ctx is cancelled.
func (w *EmailWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessDue(ctx); err != nil {
				log.Printf("email worker: %v", err)
			}
		}
	}
}

// ProcessDue sends one batch of due events.
func (w *EmailWorker) ProcessDue(ctx context.Context) error {
	events, err := w.emailRepo.Due(ctx, time.Now(), w.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		w.deliver(ctx, event)
	}
	return nil
}

func (w *EmailWorker) deliver(ctx context.Context, event *domain.EmailEvent) {
	event.Attempts++

	if err := w.send(ctx, event); err != nil {
		event.LastError = err.Error()
		if event.Attempts >= w.cfg.MaxAttempts {
			event.Status = domain.EmailStatusFailed
			event.NextAttemptAt = time.Time{}
			log.Printf("email %s permanently failed after %d attempts: %v", event.ID, event.Attempts, err)
		} else {
			event.Status = domain.EmailStatusQueued
			event.NextAttemptAt = time.Now().Add(time.Duration(event.Attempts) * w.cfg.BaseDelay)
		}
	} else {
		event.Status = domain.EmailStatusSent
		event.SentAt = time.Now()
		event.LastError = ""
		event.NextAttemptAt = time.Time{}
	}

	if err := w.emailRepo.Update(ctx, event); err != nil {
		log.Printf("failed to update email event %s: %v", event.ID, err)
	}
}

func (w *EmailWorker) send(ctx context.Context, event *domain.EmailEvent) error {
	recipient, err := w.profileRepo.GetByID(ctx, event.RecipientID)
	if err != nil {
		return fmt.Errorf("lookup recipient: %w", err)
	}
	return w.sender.Send(ctx, recipient.Email, event.Subject, event.Body)
}
