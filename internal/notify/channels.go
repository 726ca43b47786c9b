package notify

import (
	"context"
	"log"
)

// Channel senders are external collaborators. The core records outcomes
// but does not retry.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, number, body string) error
}

type PushSender interface {
	SendPush(ctx context.Context, deviceRef, title, body string) error
}

// SimulatedEmail logs instead of delivering. Production would integrate an
// actual mail provider behind the same interface.
type SimulatedEmail struct{}

func (SimulatedEmail) SendEmail(_ context.Context, to, subject, _ string) error {
	log.Printf("[SIMULATED] email sent to %s: %s", to, subject)
	return nil
}

// SimulatedSMS logs instead of delivering.
type SimulatedSMS struct{}

func (SimulatedSMS) SendSMS(_ context.Context, number, _ string) error {
	log.Printf("[SIMULATED] sms sent to %s", number)
	return nil
}

// SimulatedPush logs instead of delivering.
type SimulatedPush struct{}

func (SimulatedPush) SendPush(_ context.Context, deviceRef, title, _ string) error {
	log.Printf("[SIMULATED] push sent to %s: %s", deviceRef, title)
	return nil
}
