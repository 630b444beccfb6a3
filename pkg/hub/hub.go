// Package hub bridges a per-user, single-threaded UI to a pub/sub topic.
//
// A Hub owns at most one live transport handle at a time. It registers
// itself in session-scoped storage so the container's passivation
// notifications can find it: before the session is serialized the handle is
// closed (a live connection cannot survive a snapshot), and after the
// session is revived — possibly on another node — the hub relocates a UI of
// its declared kind and attaches again. Messages published to the topic
// while the session is passivated are lost; durable replay belongs to an
// external state store.
package hub

import (
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/go-go-golems/msghub/pkg/sessions"
	"github.com/go-go-golems/msghub/pkg/transport"
	"github.com/go-go-golems/msghub/pkg/ui"
)

// State is the hub's lifecycle state. The transport handle is non-nil iff
// the state is Attached.
type State int

const (
	// Unattached: constructed, not yet listening.
	Unattached State = iota
	// Attached: live transport handle, sends and deliveries flow.
	Attached
	// Detached: handle torn down for session passivation.
	Detached
	// Discarded: the owning UI is gone; terminal.
	Discarded
)

func (s State) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Attached:
		return "attached"
	case Detached:
		return "detached"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Handler processes one inbound message with exclusive access to the UI's
// state. It runs on the UI's execution context, never on a transport
// thread.
type Handler func(u ui.UI, msg *message.Message)

// Options configures a Hub. Broker, Exec, Storage, TopicName and Handler
// are required.
type Options struct {
	// UIKind is the type tag of the UI this hub serves; the locator matches
	// it on revival. Defaults to the founding UI's kind.
	UIKind string
	// TopicName is resolved against the broker on every attach.
	TopicName string
	// ConnectionFactory names the factory to open sessions from. Defaults
	// to transport.DefaultConnectionFactory.
	ConnectionFactory string

	Handler Handler
	Broker  transport.Broker
	Exec    ui.Executor
	Storage sessions.Storage
	Logger  zerolog.Logger
}

// Hub is one session-affine topic subscription. One instance per
// (session, UI kind) pair.
type Hub struct {
	opts Options
	key  string
	log  zerolog.Logger

	mu     sync.Mutex
	state  State
	u      ui.UI
	topic  transport.Topic
	handle transport.Handle
	pub    transport.Publisher
}

// New registers a hub for u in session storage and returns it Unattached.
// Call StartListening to open the subscription.
func New(u ui.UI, opts Options) (*Hub, error) {
	if u == nil {
		return nil, errors.New("nil ui")
	}
	if opts.TopicName == "" {
		return nil, errors.New("missing TopicName")
	}
	if opts.Handler == nil {
		return nil, errors.New("missing Handler")
	}
	if opts.Broker == nil {
		return nil, errors.New("missing Broker")
	}
	if opts.Exec == nil {
		return nil, errors.New("missing Exec")
	}
	if opts.Storage == nil {
		return nil, errors.New("missing Storage")
	}
	if opts.UIKind == "" {
		opts.UIKind = u.Kind()
	}
	if opts.ConnectionFactory == "" {
		opts.ConnectionFactory = transport.DefaultConnectionFactory
	}

	h := &Hub{
		opts: opts,
		key:  RegistrationKey(opts.UIKind, u.ID()),
		u:    u,
	}
	h.log = opts.Logger.With().Str("topic", opts.TopicName).Str("key", h.key).Logger()
	opts.Storage.Put(h.key, h)
	return h, nil
}

// StartListening resolves the topic, opens a transport handle, subscribes
// the hub as the delivery callback and installs the UI discard hook.
// Lookup or subscribe failures are returned as-is, without retry, leaving
// the hub with no live handle; the caller decides whether to try again.
func (h *Hub) StartListening() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attachLocked()
}

// caller holds h.mu
func (h *Hub) attachLocked() error {
	switch h.state {
	case Attached:
		return ErrAlreadyAttached
	case Discarded:
		return ErrDiscarded
	}

	topic, err := h.opts.Broker.LookupTopic(h.opts.TopicName)
	if err != nil {
		return errors.Wrap(err, "lookup topic")
	}
	factory, err := h.opts.Broker.LookupConnectionFactory(h.opts.ConnectionFactory)
	if err != nil {
		return errors.Wrap(err, "lookup connection factory")
	}
	handle, err := factory.OpenSession()
	if err != nil {
		return errors.Wrap(err, "open session")
	}
	if err := handle.Subscribe(topic, h.onMessage); err != nil {
		_ = handle.Close()
		return errors.Wrap(err, "subscribe")
	}

	h.topic = topic
	h.handle = handle
	h.pub = nil
	h.state = Attached

	// The hook binds to the current UI; after revival a fresh hook is
	// installed on the new one. discard is idempotent, so stale hooks from
	// earlier incarnations are harmless.
	h.opts.Exec.OnDetach(h.u, h.discard)

	h.log.Debug().Int("ui", h.u.ID()).Msg("attached")
	return nil
}

// SendText publishes text to the hub's topic. Requires state Attached;
// concurrent senders are serialized, not interleaved.
func (h *Hub) SendText(text string) error {
	return h.send(message.NewMessage(watermill.NewUUID(), []byte(text)))
}

// SendObject publishes v encoded with msgpack, tagged so handlers can
// detect and decode it with DecodeObject. Requires state Attached.
func (h *Hub) SendObject(v any) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode object")
	}
	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.Metadata.Set(contentTypeKey, contentTypeMsgpack)
	return h.send(msg)
}

func (h *Hub) send(msg *message.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Attached {
		return ErrNotAttached
	}
	if h.pub == nil {
		pub, err := h.handle.Publisher()
		if err != nil {
			return errors.Wrap(err, "create publisher")
		}
		h.pub = pub
	}
	return errors.Wrap(h.pub.Publish(h.topic, msg), "publish")
}

// onMessage is the transport delivery callback. It runs on a transport
// goroutine and must not touch UI state directly; it only schedules the
// handler on the UI's execution context.
func (h *Hub) onMessage(msg *message.Message) {
	h.mu.Lock()
	u := h.u
	attached := h.state == Attached
	h.mu.Unlock()
	if !attached {
		// In flight while the handle was closing. Offline-window loss, by
		// contract not an error.
		return
	}
	h.opts.Exec.Access(u, func() {
		h.opts.Handler(u, msg)
	})
}

// BeforeSerialize tears the transport handle down ahead of session
// passivation. It shares the send mutex, so a send in progress completes
// before the handle closes. In-flight inbound messages are dropped.
func (h *Hub) BeforeSerialize() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Attached {
		// Nothing live to tear down.
		return
	}
	h.closeHandleLocked()
	h.u = nil
	h.state = Detached
	h.log.Debug().Msg("detached for passivation")
}

// AfterRevive rebinds the hub after the session has been deserialized,
// possibly on another node. The UI it held before is gone; it scans set for
// the first UI of its declared kind, rebinds, and reruns the attach
// procedure. No matching UI is fatal: the session has nothing to deliver
// into. A discarded hub ignores the notification.
func (h *Hub) AfterRevive(set sessions.SessionSet) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == Discarded {
		return nil
	}
	if h.state == Attached {
		return ErrAlreadyAttached
	}
	u, err := LocateUI(set, h.opts.UIKind)
	if err != nil {
		return err
	}
	h.u = u
	return h.attachLocked()
}

// discard is the UI discard hook: close any live handle and remove the
// session-storage entry. Idempotent; terminal.
func (h *Hub) discard() {
	h.mu.Lock()
	if h.state == Discarded {
		h.mu.Unlock()
		return
	}
	h.closeHandleLocked()
	h.u = nil
	h.state = Discarded
	h.mu.Unlock()

	h.opts.Storage.Remove(h.key)
	h.log.Debug().Msg("discarded")
}

// caller holds h.mu
func (h *Hub) closeHandleLocked() {
	if h.handle != nil {
		if err := h.handle.Close(); err != nil {
			h.log.Warn().Err(err).Msg("close transport handle")
		}
		h.handle = nil
	}
	h.pub = nil
	h.topic = nil
}

// UI returns the currently bound UI, nil while the hub is offline.
func (h *Hub) UI() ui.UI {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.u
}

func (h *Hub) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Key returns the session-storage registration key.
func (h *Hub) Key() string { return h.key }
