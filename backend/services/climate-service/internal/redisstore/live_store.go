package redisstore

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"climawatch/backend/services/climate-service/internal/models"
)

const (
	// CurrentKey holds the latest update per sensor, keyed by sensor id.
	CurrentKey = "sensors:current"
	// StreamChannel carries every update as it is ingested.
	StreamChannel = "sensors:stream"
)

// LiveStore keeps the current state of each sensor and fans updates out over pub/sub.
type LiveStore struct {
	client *redis.Client
}

// NewLiveStore returns redis-backed store.
func NewLiveStore(client *redis.Client) *LiveStore {
	return &LiveStore{client: client}
}

// Publish caches the update as the sensor's current state and publishes it.
func (s *LiveStore) Publish(ctx context.Context, update models.LiveUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, CurrentKey, strconv.FormatInt(update.SensorID, 10), data)
	pipe.Publish(ctx, StreamChannel, data)
	_, err = pipe.Exec(ctx)
	return err
}

// Current returns the cached state of every sensor ordered by sensor id. Entries that do
// not decode are skipped.
func (s *LiveStore) Current(ctx context.Context) ([]models.LiveUpdate, error) {
	raw, err := s.client.HGetAll(ctx, CurrentKey).Result()
	if err != nil {
		return nil, err
	}
	return decodeCurrent(raw), nil
}

// Subscribe opens a subscription to the update channel. The caller closes it.
func (s *LiveStore) Subscribe(ctx context.Context) *redis.PubSub {
	return s.client.Subscribe(ctx, StreamChannel)
}

// Listen subscribes to the update channel and forwards raw payloads until ctx is done.
// The returned channel is closed when the subscription ends.
func (s *LiveStore) Listen(ctx context.Context) (<-chan []byte, error) {
	sub := s.Subscribe(ctx)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func decodeCurrent(raw map[string]string) []models.LiveUpdate {
	updates := make([]models.LiveUpdate, 0, len(raw))
	for field, value := range raw {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		var update models.LiveUpdate
		if err := json.Unmarshal([]byte(value), &update); err != nil {
			continue
		}
		update.SensorID = id
		updates = append(updates, update)
	}
	sort.Slice(updates, func(i, j int) bool {
		return updates[i].SensorID < updates[j].SensorID
	})
	return updates
}
