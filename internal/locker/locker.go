package locker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"innkeeper/internal/domain"
)

// releaseScript deletes the lock only when the stored token still
// matches, so a holder whose TTL expired cannot free the next holder's
// lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker serializes writers touching the same room or booking through
// short-lived redis keys. The database constraints remain the ground
// truth; this keeps concurrent assign/check-in calls from burning a
// transaction each on the same room.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{client: client, ttl: ttl}
}

func roomKey(id int64) string    { return fmt.Sprintf("lock:room:%d", id) }
func bookingKey(id int64) string { return fmt.Sprintf("lock:booking:%d", id) }

// AcquireRooms takes the locks for every room id, in sorted order so
// two overlapping acquisitions cannot deadlock. On any failure the
// locks already taken are released and ConcurrencyConflictError is
// returned.
func (l *Locker) AcquireRooms(ctx context.Context, roomIDs []int64) (func(), error) {
	ids := append([]int64(nil), roomIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	token := uuid.NewString()
	var held []string
	release := func() {
		for _, key := range held {
			_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
		}
	}

	for _, id := range ids {
		key := roomKey(id)
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			release()
			return nil, fmt.Errorf("acquire room lock: %w", err)
		}
		if !ok {
			release()
			return nil, &domain.ConcurrencyConflictError{Entity: "room", ID: fmt.Sprintf("%d", id)}
		}
		held = append(held, key)
	}
	return release, nil
}

// AcquireBooking serializes payment and refund recording per booking.
func (l *Locker) AcquireBooking(ctx context.Context, bookingID int64) (func(), error) {
	key := bookingKey(bookingID)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire booking lock: %w", err)
	}
	if !ok {
		return nil, &domain.ConcurrencyConflictError{Entity: "booking", ID: fmt.Sprintf("%d", bookingID)}
	}
	return func() {
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}, nil
}
