package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusattend/internal/attendance"
	"campusattend/internal/config"
	"campusattend/internal/notify"
	"campusattend/internal/queue"
	"campusattend/internal/roster"
	"campusattend/internal/store"
)

// Worker consumes session-close messages and runs the periodic
// low-attendance sweep. The sweep runs on a single goroutine, so at most
// one is in flight at a time.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	if err := store.EnsureSchema(db.Client); err != nil {
		log.Fatalf("schema bootstrap failed: %v", err)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campus:sessions")
	}

	people := roster.NewRepository(db.Client)
	attRepo := attendance.NewRepository(db.Client)
	ledger := attendance.NewService(attRepo, people)
	resolver := attendance.NewResolver(attRepo, people, ledger)
	notifRepo := notify.NewRepository(db.Client)
	dispatcher := notify.NewDispatcher(notifRepo, people, attRepo,
		notify.SimulatedEmail{}, notify.SimulatedSMS{}, notify.SimulatedPush{})

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	log.Printf("worker started (sweep every %s, threshold %.1f%%)", cfg.SweepInterval, cfg.LowAttendanceThreshold)
	for {
		select {
		case <-ctx.Done():
			log.Println("worker stopped")
			return

		case <-ticker.C:
			if _, err := dispatcher.LowAttendanceSweep(ctx, cfg.LowAttendanceThreshold); err != nil {
				log.Printf("low attendance sweep failed: %v", err)
			}

		case msg, ok := <-messages:
			if !ok {
				log.Println("worker stopped")
				return
			}
			switch msg.Type {
			case queue.TypeSessionClosed:
				closeSession(ctx, string(msg.Body), attRepo, resolver, dispatcher)
			case queue.TypeSweep:
				if _, err := dispatcher.LowAttendanceSweep(ctx, cfg.LowAttendanceThreshold); err != nil {
					log.Printf("low attendance sweep failed: %v", err)
				}
			default:
				log.Printf("ignoring message type %q", msg.Type)
			}
		}
	}
}

// closeSession tops up absences while the session still accepts marks,
// fans out the alerts, then deactivates the session.
func closeSession(ctx context.Context, sessionID string, repo *attendance.Repository, resolver *attendance.Resolver, dispatcher *notify.Dispatcher) {
	session, err := repo.Session(ctx, sessionID)
	if err != nil {
		log.Printf("close session %s: %v", sessionID, err)
		return
	}
	if !session.IsActive {
		log.Printf("session %s already closed", sessionID)
		return
	}

	count, err := resolver.AutoMarkAbsent(ctx, session, nil)
	if err != nil {
		log.Printf("auto-mark for session %s failed: %v", sessionID, err)
		return
	}

	alerts, err := dispatcher.OnBulkMark(ctx, session)
	if err != nil {
		log.Printf("absence alerts for session %s failed: %v", sessionID, err)
	}

	if err := repo.DeactivateSession(ctx, sessionID); err != nil {
		log.Printf("deactivate session %s failed: %v", sessionID, err)
		return
	}
	log.Printf("session %s closed: %d auto-marked absent, %d alerts", sessionID, count, alerts)
}
