package transport

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrClosed         = errors.New("transport handle is closed")
	ErrUnknownFactory = errors.New("unknown connection factory")
)

// GoChannelBroker is an in-process broker backed by watermill's gochannel
// pub/sub. Every handle opened from it shares the same bus, so all
// subscribers of a topic see every message published to it.
type GoChannelBroker struct {
	bus *gochannel.GoChannel
	log zerolog.Logger

	mu        sync.Mutex
	factories map[string]ConnectionFactory
}

// NewGoChannelBroker creates a broker with the default connection factory
// pre-registered.
func NewGoChannelBroker(log zerolog.Logger) *GoChannelBroker {
	b := &GoChannelBroker{
		bus: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NopLogger{}),
		log:       log,
		factories: map[string]ConnectionFactory{},
	}
	b.factories[DefaultConnectionFactory] = &goChannelFactory{broker: b}
	return b
}

func (b *GoChannelBroker) LookupTopic(name string) (Topic, error) {
	if name == "" {
		return nil, errors.New("empty topic name")
	}
	return goChannelTopic(name), nil
}

func (b *GoChannelBroker) LookupConnectionFactory(name string) (ConnectionFactory, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.factories[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownFactory, name)
	}
	return f, nil
}

// RegisterConnectionFactory makes name resolvable. The default factory is
// registered by NewGoChannelBroker.
func (b *GoChannelBroker) RegisterConnectionFactory(name string, f ConnectionFactory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.factories[name] = f
}

// Close shuts the underlying bus down; all open handles stop delivering.
func (b *GoChannelBroker) Close() error {
	return errors.Wrap(b.bus.Close(), "close bus")
}

type goChannelTopic string

func (t goChannelTopic) Name() string { return string(t) }

type goChannelFactory struct {
	broker *GoChannelBroker
}

func (f *goChannelFactory) OpenSession() (Handle, error) {
	ctx, cancel := context.WithCancel(context.Background())
	return &goChannelHandle{
		bus:    f.broker.bus,
		log:    f.broker.log,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

type goChannelHandle struct {
	bus    *gochannel.GoChannel
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	pub    Publisher
}

func (h *goChannelHandle) Subscribe(topic Topic, fn MessageFunc) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	ch, err := h.bus.Subscribe(h.ctx, topic.Name())
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", topic.Name())
	}

	go func() {
		for msg := range ch {
			fn(msg)
			msg.Ack()
		}
		h.log.Debug().Str("topic", topic.Name()).Msg("delivery stopped")
	}()
	return nil
}

func (h *goChannelHandle) Publisher() (Publisher, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	if h.pub == nil {
		h.pub = &goChannelPublisher{handle: h}
	}
	return h.pub, nil
}

func (h *goChannelHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.cancel()
	return nil
}

type goChannelPublisher struct {
	handle *goChannelHandle
}

func (p *goChannelPublisher) Publish(topic Topic, msg *message.Message) error {
	p.handle.mu.Lock()
	closed := p.handle.closed
	p.handle.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return errors.Wrapf(p.handle.bus.Publish(topic.Name(), msg), "publish %s", topic.Name())
}
