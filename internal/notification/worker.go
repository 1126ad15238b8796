package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"equipment-scheduling-backend/internal/model"
)

// Event kinds dispatched by the scheduling service.
const (
	EventScheduleCreated   = "schedule_created"
	EventScheduleCancelled = "schedule_cancelled"
)

// Event is one schedule lifecycle change to fan out to subscribers.
type Event struct {
	Kind        string
	ScheduleID  int64
	EquipmentID int64
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans schedule events out to push subscribers. It satisfies the
// scheduling service's Notifier interface.
type WorkerPool struct {
	size    int
	jobs    chan Event
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			wp.sendForEvent(ctx, ev)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// ScheduleCreated implements scheduling.Notifier.
func (wp *WorkerPool) ScheduleCreated(scheduleID, equipmentID int64) {
	wp.dispatch(Event{Kind: EventScheduleCreated, ScheduleID: scheduleID, EquipmentID: equipmentID})
}

// ScheduleCancelled implements scheduling.Notifier.
func (wp *WorkerPool) ScheduleCancelled(scheduleID, equipmentID int64) {
	wp.dispatch(Event{Kind: EventScheduleCancelled, ScheduleID: scheduleID, EquipmentID: equipmentID})
}

// dispatch never blocks the request path; events are dropped when the queue
// is full.
func (wp *WorkerPool) dispatch(ev Event) {
	select {
	case wp.jobs <- ev:
	default:
		log.Printf("notification queue full, dropping %s for schedule %d", ev.Kind, ev.ScheduleID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

// sendForEvent fetches subscriptions for the event's equipment and pushes.
func (wp *WorkerPool) sendForEvent(ctx context.Context, ev Event) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_equipment_mapping sem ON sem.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sem.equipment_id = ?", ev.EquipmentID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for equipment %d: %v", ev.EquipmentID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := fmt.Sprintf("#%d", ev.EquipmentID)
	var eq model.Equipment
	if err := wp.db.WithContext(ctx).Select("name").First(&eq, ev.EquipmentID).Error; err != nil {
		log.Printf("error fetching equipment %d: %v", ev.EquipmentID, err)
	} else if eq.Name != "" {
		label = eq.Name
	}

	var message string
	switch ev.Kind {
	case EventScheduleCreated:
		message = fmt.Sprintf("Equipment %s: schedule #%d created", label, ev.ScheduleID)
	case EventScheduleCancelled:
		message = fmt.Sprintf("Equipment %s: schedule #%d cancelled", label, ev.ScheduleID)
	default:
		return
	}

	log.Printf("sending %d notifications for equipment %d", len(subscriptions), ev.EquipmentID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are pruned on 410.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
