// Package outbox models broker messages parked after a failed publish.
package outbox

import (
	"math"
	"time"
)

// Kinds of outbox messages.
const (
	KindNotification = "notification"
)

// Message is a payload waiting to be republished to a queue through the default exchange.
// The failed publish that parked it counts as the first attempt.
type Message struct {
	ID            int64
	Kind          string
	RoutingKey    string
	Payload       []byte
	ContentType   string
	Attempts      int
	MaxAttempts   int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	NextAttemptAt time.Time
}

// Park builds the outbox row for a payload whose publish just failed with cause.
func Park(kind, routingKey, contentType string, payload []byte, maxAttempts int, cause error, now time.Time) Message {
	return Message{
		Kind:          kind,
		RoutingKey:    routingKey,
		Payload:       payload,
		ContentType:   contentType,
		Attempts:      1,
		MaxAttempts:   maxAttempts,
		LastError:     cause.Error(),
		CreatedAt:     now,
		UpdatedAt:     now,
		NextAttemptAt: now.Add(Backoff(1)),
	}
}

// Retry records another failed attempt and schedules the next one.
func (m Message) Retry(cause error, now time.Time) Message {
	m.Attempts++
	m.LastError = cause.Error()
	m.UpdatedAt = now
	m.NextAttemptAt = now.Add(Backoff(m.Attempts))

	return m
}

// Exhausted reports whether no attempts are left.
func (m Message) Exhausted() bool {
	return m.Attempts >= m.MaxAttempts
}

// Backoff returns the delay after attempt n: 60s, 120s, 240s, ...
func Backoff(n int) time.Duration {
	return time.Duration(math.Pow(2, float64(n))*30) * time.Second
}
