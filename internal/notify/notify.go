// Package notify delivers reservation notifications out of band. The
// core enqueues a message and returns immediately; a worker goroutine
// delivers it with bounded retries. Delivery failures never reach the
// code path that changed reservation state.
package notify

import (
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"

	"campus_fleet/internal/models"
)

type Event string

const (
	EventCreated   Event = "reservation.created"
	EventApproved  Event = "reservation.approved"
	EventRejected  Event = "reservation.rejected"
	EventCancelled Event = "reservation.cancelled"
)

// Message is the outbound notification payload.
type Message struct {
	Event         Event  `json:"event"`
	Reference     string `json:"reference"`
	ReservationID uint   `json:"reservation_id"`
	VehicleID     uint   `json:"vehicle_id"`
	DriverID      *uint  `json:"driver_id,omitempty"`
	RequesterID   uint   `json:"requester_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Destination   string `json:"destination"`
	Reason        string `json:"reason,omitempty"`
}

// Sender delivers one message. Implementations: email, webhook, or the
// log sender below.
type Sender interface {
	Send(m Message) error
}

// LogSender writes notifications to the application log. The default
// delivery target until a mail transport is configured.
type LogSender struct{}

func NewLogSender() LogSender { return LogSender{} }

func (LogSender) Send(m Message) error {
	logrus.WithFields(logrus.Fields{
		"event":       m.Event,
		"reference":   m.Reference,
		"reservation": m.ReservationID,
		"requester":   m.RequesterID,
		"date":        m.Date,
		"window":      m.StartTime + "-" + m.EndTime,
	}).Info("notification")
	return nil
}

// Queue is a buffered in-process outbox. Enqueue never blocks: when the
// buffer is full the message is dropped and logged, keeping notification
// pressure away from request handling.
type Queue struct {
	ch       chan Message
	sender   Sender
	retries  int
	backoff  time.Duration
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewQueue(sender Sender, size int) *Queue {
	if size < 1 {
		size = 64
	}
	return &Queue{
		ch:      make(chan Message, size),
		sender:  sender,
		retries: 3,
		backoff: 500 * time.Millisecond,
	}
}

// Start launches the delivery worker.
func (q *Queue) Start() {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for m := range q.ch {
			q.deliver(m)
		}
	}()
}

// Stop closes the queue and waits for buffered messages to drain.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.ch) })
	q.wg.Wait()
}

// Enqueue hands a message to the worker without blocking.
func (q *Queue) Enqueue(m Message) {
	select {
	case q.ch <- m:
	default:
		logrus.WithFields(logrus.Fields{
			"event":       m.Event,
			"reservation": m.ReservationID,
		}).Warn("notification queue full, message dropped")
	}
}

func (q *Queue) deliver(m Message) {
	var err error
	for attempt := 0; attempt <= q.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(q.backoff * time.Duration(attempt))
		}
		if err = q.sender.Send(m); err == nil {
			return
		}
	}
	logrus.WithError(err).WithFields(logrus.Fields{
		"event":       m.Event,
		"reservation": m.ReservationID,
	}).Error("notification delivery failed")
}

// ReservationNotifier adapts the queue to the reservation engine's
// Notifier interface.
type ReservationNotifier struct {
	q *Queue
}

func NewReservationNotifier(q *Queue) *ReservationNotifier {
	return &ReservationNotifier{q: q}
}

func (n *ReservationNotifier) NotifyCreated(r models.Reservation) {
	n.q.Enqueue(messageFor(EventCreated, r, ""))
}

func (n *ReservationNotifier) NotifyApproved(r models.Reservation) {
	n.q.Enqueue(messageFor(EventApproved, r, ""))
}

func (n *ReservationNotifier) NotifyRejected(r models.Reservation, reason string) {
	n.q.Enqueue(messageFor(EventRejected, r, reason))
}

func (n *ReservationNotifier) NotifyCancelled(r models.Reservation, reason string) {
	n.q.Enqueue(messageFor(EventCancelled, r, reason))
}

func messageFor(ev Event, r models.Reservation, reason string) Message {
	return Message{
		Event:         ev,
		Reference:     r.Reference,
		ReservationID: r.ID,
		VehicleID:     r.VehicleID,
		DriverID:      r.DriverID,
		RequesterID:   r.RequesterID,
		Date:          r.Date.Format("2006-01-02"),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Destination:   r.Destination,
		Reason:        reason,
	}
}
