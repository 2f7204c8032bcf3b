package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

const (
	// DefaultClientPrefix prefixes the per-process client identifier.
	DefaultClientPrefix = "enclosure-controller"
	// DefaultBufferSize is how many messages are held while disconnected.
	DefaultBufferSize = 256
	// DefaultRetryInterval is the delay between connection attempts.
	DefaultRetryInterval = 5 * time.Second

	publishTimeout = 5 * time.Second
)

// Options configures a RealPublisher.
type Options struct {
	Broker        string
	ClientPrefix  string
	BufferSize    int
	RetryInterval time.Duration
}

// ClientID returns a client identifier unique to this process, so two
// controllers sharing a broker never kick each other off.
func ClientID(prefix string) string {
	if prefix == "" {
		prefix = DefaultClientPrefix
	}
	return prefix + "-" + uuid.NewString()[:8]
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the broker is unreachable are held in a bounded buffer and replayed in
// order once the connection is established.
type RealPublisher struct {
	client paho.Client
	log    *slog.Logger

	mu        sync.Mutex
	connected bool
	connects  int
	buf       *outbox
}

// NewRealPublisher creates a publisher and starts connecting in the
// background. It never blocks on the broker.
func NewRealPublisher(opts Options, log *slog.Logger) *RealPublisher {
	if log == nil {
		log = slog.Default()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}

	p := &RealPublisher{
		log: log,
		buf: newOutbox(opts.BufferSize, log),
	}

	will, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "LWT"})
	id := ClientID(opts.ClientPrefix)

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(id).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(opts.RetryInterval).
		SetMaxReconnectInterval(opts.RetryInterval).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(co)
	p.client.Connect()
	log.Info("mqtt connecting", "broker", opts.Broker, "client_id", id)
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connected = true
	p.connects++
	if p.connects > 1 {
		ev := SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED", Retained: true}
		payload, _ := FormatSystemPayload(ev)
		p.buf.push(systemMsg(payload, ev))
	}

	pending := p.buf.drainAll()
	for _, m := range pending {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	p.log.Info("mqtt connected", "replayed", len(pending))
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	p.log.Warn("mqtt connection lost", "err", err)
}

// send publishes msg, or buffers it when there is no connection.
func (p *RealPublisher) send(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.connected {
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	p.mu.Unlock()

	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Publish sends a control event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(eventMsg(payload, event.Type))
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	if err := p.send(systemMsg(payload, event)); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second quiesce
	return nil
}
