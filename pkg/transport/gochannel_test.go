package transport

import (
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestGoChannelBroker_Lookup(t *testing.T) {
	b := NewGoChannelBroker(zerolog.Nop())
	defer func() { _ = b.Close() }()

	topic, err := b.LookupTopic("chat.lobby")
	require.NoError(t, err)
	require.Equal(t, "chat.lobby", topic.Name())

	_, err = b.LookupTopic("")
	require.Error(t, err)

	_, err = b.LookupConnectionFactory(DefaultConnectionFactory)
	require.NoError(t, err)

	_, err = b.LookupConnectionFactory("nope")
	require.ErrorIs(t, err, ErrUnknownFactory)
}

func TestGoChannelHandle_PublishSubscribe(t *testing.T) {
	b := NewGoChannelBroker(zerolog.Nop())
	defer func() { _ = b.Close() }()

	topic, err := b.LookupTopic("chat.roundtrip")
	require.NoError(t, err)
	factory, err := b.LookupConnectionFactory(DefaultConnectionFactory)
	require.NoError(t, err)

	sub, err := factory.OpenSession()
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	got := make(chan string, 4)
	require.NoError(t, sub.Subscribe(topic, func(msg *message.Message) {
		got <- string(msg.Payload)
	}))

	pubHandle, err := factory.OpenSession()
	require.NoError(t, err)
	defer func() { _ = pubHandle.Close() }()
	pub, err := pubHandle.Publisher()
	require.NoError(t, err)

	require.NoError(t, pub.Publish(topic, message.NewMessage(watermill.NewUUID(), []byte("hello"))))

	select {
	case payload := <-got:
		require.Equal(t, "hello", payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery")
	}
}

func TestGoChannelHandle_CloseStopsDelivery(t *testing.T) {
	b := NewGoChannelBroker(zerolog.Nop())
	defer func() { _ = b.Close() }()

	topic, err := b.LookupTopic("chat.close")
	require.NoError(t, err)
	factory, err := b.LookupConnectionFactory(DefaultConnectionFactory)
	require.NoError(t, err)

	h, err := factory.OpenSession()
	require.NoError(t, err)

	got := make(chan struct{}, 16)
	require.NoError(t, h.Subscribe(topic, func(msg *message.Message) {
		got <- struct{}{}
	}))

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	// Subscriber removal is asynchronous in gochannel; give it a moment.
	time.Sleep(100 * time.Millisecond)

	// Publishing after close of the subscribing handle must not deliver.
	pubHandle, err := factory.OpenSession()
	require.NoError(t, err)
	defer func() { _ = pubHandle.Close() }()
	pub, err := pubHandle.Publisher()
	require.NoError(t, err)
	require.NoError(t, pub.Publish(topic, message.NewMessage(watermill.NewUUID(), []byte("late"))))

	select {
	case <-got:
		t.Fatal("delivery after close")
	case <-time.After(200 * time.Millisecond):
	}

	_, err = h.Publisher()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, h.Subscribe(topic, func(*message.Message) {}), ErrClosed)
}
