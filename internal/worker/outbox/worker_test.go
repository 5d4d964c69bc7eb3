package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopfront/orders/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(exchange, routingKey, contentType string, body []byte) error {
	return m.Called(exchange, routingKey, contentType, body).Error(0)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Park(ctx context.Context, msg outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) Due(ctx context.Context, kind string, limit int) ([]outbox.Message, error) {
	args := m.Called(ctx, kind, limit)
	return args.Get(0).([]outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) Delivered(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) Reschedule(ctx context.Context, msg outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) PurgeExhausted(ctx context.Context, kind string, before time.Time) (int64, error) {
	args := m.Called(ctx, kind, before)
	return args.Get(0).(int64), args.Error(1)
}

func TestWorker_ProcessMessages(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := new(mockOutboxRepo)
	pub := new(mockPublisher)
	w := NewWorker(repo, pub, outbox.KindNotification)
	w.now = func() time.Time { return now }

	ok := outbox.Message{ID: 1, Kind: outbox.KindNotification, RoutingKey: "q", ContentType: "application/json", Payload: []byte(`{}`), Attempts: 1, MaxAttempts: 5}
	bad := outbox.Message{ID: 2, Kind: outbox.KindNotification, RoutingKey: "q", ContentType: "application/json", Payload: []byte(`[]`), Attempts: 1, MaxAttempts: 5}

	repo.On("Due", mock.Anything, outbox.KindNotification, w.batchSize).Return([]outbox.Message{ok, bad}, nil)
	pub.On("Publish", "", "q", "application/json", []byte(`{}`)).Return(nil)
	pub.On("Publish", "", "q", "application/json", []byte(`[]`)).Return(errors.New("broker down"))
	repo.On("Delivered", mock.Anything, int64(1)).Return(nil)
	repo.On("Reschedule", mock.Anything, mock.MatchedBy(func(m outbox.Message) bool {
		return m.ID == 2 &&
			m.Attempts == 2 &&
			m.LastError == "broker down" &&
			m.NextAttemptAt.Equal(now.Add(120*time.Second)) &&
			m.UpdatedAt.Equal(now)
	})).Return(nil)

	w.ProcessMessages(context.Background())

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestWorker_LastAttemptIsStillRecorded(t *testing.T) {
	repo := new(mockOutboxRepo)
	pub := new(mockPublisher)
	w := NewWorker(repo, pub, outbox.KindNotification)

	last := outbox.Message{ID: 7, RoutingKey: "q", Attempts: 4, MaxAttempts: 5}
	repo.On("Due", mock.Anything, outbox.KindNotification, mock.Anything).Return([]outbox.Message{last}, nil)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	repo.On("Reschedule", mock.Anything, mock.MatchedBy(func(m outbox.Message) bool {
		return m.ID == 7 && m.Exhausted()
	})).Return(nil)

	w.ProcessMessages(context.Background())

	repo.AssertExpectations(t)
}

func TestWorker_ProcessMessagesStopsOnReadError(t *testing.T) {
	repo := new(mockOutboxRepo)
	pub := new(mockPublisher)
	w := NewWorker(repo, pub, outbox.KindNotification)

	repo.On("Due", mock.Anything, mock.Anything, mock.Anything).Return([]outbox.Message(nil), assert.AnError)

	w.ProcessMessages(context.Background())

	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorker_Purge(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	repo := new(mockOutboxRepo)
	w := NewWorker(repo, new(mockPublisher), outbox.KindNotification)
	w.now = func() time.Time { return now }

	repo.On("PurgeExhausted", mock.Anything, outbox.KindNotification, now.Add(-72*time.Hour)).Return(int64(3), nil)

	w.Purge(context.Background())

	repo.AssertExpectations(t)
}
