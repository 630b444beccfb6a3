// Package transport defines the broker-facing contracts the message hub
// depends on: topic lookup, connection/session creation, publish, and
// subscribe with asynchronous delivery callbacks. Implementations must be
// safe for concurrent use.
package transport

import (
	"github.com/ThreeDotsLabs/watermill/message"
)

// DefaultConnectionFactory is the factory name used when a hub does not
// configure one.
const DefaultConnectionFactory = "ConnectionFactory"

// Topic is a resolved pub/sub destination. It is only valid against the
// broker that resolved it.
type Topic interface {
	Name() string
}

// MessageFunc receives inbound messages on a transport-owned goroutine. It
// must not block beyond the cost of handing the message off.
type MessageFunc func(msg *message.Message)

// Broker resolves named destinations and connection factories. Lookup
// failures are fatal to the caller's attach attempt; the broker does not
// retry.
type Broker interface {
	LookupTopic(name string) (Topic, error)
	LookupConnectionFactory(name string) (ConnectionFactory, error)
}

// ConnectionFactory opens live broker sessions.
type ConnectionFactory interface {
	OpenSession() (Handle, error)
}

// Handle is one live connection+session to the broker. A handle is
// exclusively owned by a single hub, never serialized, and recreated on
// every attach.
type Handle interface {
	// Subscribe registers fn as the delivery callback for topic and starts
	// delivery. Delivery stops when the handle is closed.
	Subscribe(topic Topic, fn MessageFunc) error
	// Publisher returns the handle's outbound publisher, creating it on
	// first use. The publisher is scoped to this handle.
	Publisher() (Publisher, error)
	// Close tears the session down. Closing twice is a no-op.
	Close() error
}

// Publisher sends messages to a topic. Publish blocks until the transport
// accepts the message.
type Publisher interface {
	Publish(topic Topic, msg *message.Message) error
}
