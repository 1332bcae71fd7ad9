package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	json "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisPublisher, *redis.Client) {
	s := miniredis.RunT(t)

	pub, err := NewRedisPublisher(s.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { pub.Close() })

	sub := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { sub.Close() })

	return pub, sub
}

func TestRedisPublisherDeliversToSubscriber(t *testing.T) {
	pub, sub := setupTestRedis(t)

	ctx := context.Background()
	topic := "projects/p1/issues"

	psc := sub.Subscribe(ctx, topic)
	defer psc.Close()
	_, err := psc.Receive(ctx)
	require.NoError(t, err)

	payload := map[string]string{"id": "i1", "title": "broken build"}
	require.NoError(t, pub.Publish(ctx, topic, payload))

	select {
	case msg := <-psc.Channel():
		require.Equal(t, topic, msg.Channel)

		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		require.Equal(t, payload, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published message")
	}
}

func TestRedisPublisherRejectsUnencodablePayload(t *testing.T) {
	pub, _ := setupTestRedis(t)

	err := pub.Publish(context.Background(), "projects/p1/issues", make(chan int))
	require.Error(t, err)
}

func TestLogPublisherNeverFails(t *testing.T) {
	p := NewLogPublisher()
	require.NoError(t, p.Publish(context.Background(), "projects/p1/issues", "payload"))
}
