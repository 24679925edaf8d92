package push

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"condo-portal/internal/models"
	"condo-portal/internal/observability"
	"condo-portal/internal/repositories"
	"condo-portal/internal/unread"
)

// simulatedEndpointMarker identifies placeholder registrations saved for
// devices that cannot support real push delivery.
const simulatedEndpointMarker = "simulated-endpoint"

// previewLimit caps the message body excerpt embedded in a notification.
const previewLimit = 100

const notificationTitle = "Condo Portal"

// targetResolver is the slice of targeting.Resolver the dispatcher needs.
type targetResolver interface {
	Resolve(ctx context.Context, dest models.Destination) ([]models.User, error)
}

// counterReader reads a user's post-increment unread counter. Satisfied by
// *unread.Engine.
type counterReader interface {
	Current(ctx context.Context, userID int) (int, error)
}

// CleanupHook is invoked when the provider reports a registration
// permanently gone.
type CleanupHook interface {
	RegistrationGone(ctx context.Context, sub models.PushSubscription)
}

// StoreCleanup removes gone registrations from the store.
type StoreCleanup struct {
	Repo repositories.PushRepository
}

func (c StoreCleanup) RegistrationGone(ctx context.Context, sub models.PushSubscription) {
	log.Printf("push: registration gone for user %d, removing", sub.UserID)
	if err := c.Repo.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
		log.Printf("push: failed to remove gone registration for user %d: %v", sub.UserID, err)
	}
}

// Report summarizes one dispatch fan-out. It is informational only; the
// broadcast is best-effort and failures are never raised to the caller.
type Report struct {
	Targets   int
	Delivered int
	Skipped   int
	Gone      int
	Failed    int
}

// Dispatcher fans a message notification out to every target device,
// personalizing each payload with that user's current unread counter.
type Dispatcher struct {
	resolver targetResolver
	pushRepo repositories.PushRepository
	counters counterReader
	sender   Sender
	cleanup  CleanupHook
	linkURL  string
}

// NewDispatcher constructs a Dispatcher. linkURL is the deep-link target a
// tapped notification opens.
func NewDispatcher(resolver targetResolver, pushRepo repositories.PushRepository, counters counterReader, sender Sender, cleanup CleanupHook, linkURL string) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		pushRepo: pushRepo,
		counters: counters,
		sender:   sender,
		cleanup:  cleanup,
		linkURL:  linkURL,
	}
}

// Dispatch re-resolves the destination and sends one notification per
// registered device. Every device send is independent: simulated and
// malformed registrations are skipped, gone registrations are handed to
// the cleanup hook, and any other failure is logged and counted without
// aborting the remaining sends.
func (d *Dispatcher) Dispatch(ctx context.Context, messageID int, dest models.Destination, bodyPreview, sender string) Report {
	var report Report

	users, err := d.resolver.Resolve(ctx, dest)
	if err != nil {
		log.Printf("push: resolve failed for message %d: %v", messageID, err)
		return report
	}
	report.Targets = len(users)
	if len(users) == 0 {
		return report
	}

	subs, err := d.pushRepo.ListByUserIDs(ctx, userIDs(users))
	if err != nil {
		log.Printf("push: loading registrations failed for message %d: %v", messageID, err)
		return report
	}

	preview := truncatePreview(bodyPreview, previewLimit)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, sub := range subs {
		if strings.Contains(sub.Endpoint, simulatedEndpointMarker) {
			log.Printf("push: simulated delivery for user %d: %q from %s", sub.UserID, preview, sender)
			observability.IncPushSend("simulated")
			report.Skipped++
			continue
		}
		if sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
			log.Printf("push: malformed registration for user %d, skipping", sub.UserID)
			observability.IncPushSend("malformed")
			report.Skipped++
			continue
		}

		badge := 0
		if count, err := d.counters.Current(ctx, sub.UserID); err != nil {
			log.Printf("push: reading counter for user %d failed, badge defaults to 0: %v", sub.UserID, err)
		} else {
			badge = unread.ClampBadge(count)
		}

		payload, err := json.Marshal(models.PushPayload{
			Title: notificationTitle,
			Body:  sender + ": " + preview,
			Data: models.PushPayloadData{
				URL:       d.linkURL,
				RealBadge: badge,
				UserID:    sub.UserID,
			},
		})
		if err != nil {
			log.Printf("push: marshaling payload for user %d: %v", sub.UserID, err)
			report.Failed++
			continue
		}

		wg.Add(1)
		go func(sub models.PushSubscription, payload []byte) {
			defer wg.Done()
			result, err := d.sender.Send(ctx, sub, payload)

			mu.Lock()
			defer mu.Unlock()
			switch result {
			case ResultOK:
				report.Delivered++
				observability.IncPushSend("ok")
			case ResultGone:
				report.Gone++
				observability.IncPushSend("gone")
				if d.cleanup != nil {
					d.cleanup.RegistrationGone(ctx, sub)
				}
			default:
				report.Failed++
				observability.IncPushSend("failed")
				log.Printf("push: delivery to user %d failed: %v", sub.UserID, err)
			}
		}(sub, payload)
	}
	wg.Wait()

	log.Printf("push: message %d dispatched targets=%d delivered=%d skipped=%d gone=%d failed=%d",
		messageID, report.Targets, report.Delivered, report.Skipped, report.Gone, report.Failed)
	return report
}

func userIDs(users []models.User) []int {
	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func truncatePreview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
