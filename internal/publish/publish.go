// Package publish fans readings out to ZeroMQ subscribers as CBOR messages.
//
// Each message has two frames: the topic ("reading" or "failure") and the
// CBOR-encoded Envelope.
package publish

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/pebbe/zmq4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/mapreader/internal/store"
)

// Topics used as the first message frame.
const (
	TopicReading = "reading"
	TopicFailure = "failure"
)

// ErrClosed is returned when publishing on a closed Publisher.
var ErrClosed = errors.New("publisher closed")

// Envelope is the CBOR payload of a published message.
type Envelope struct {
	Type    string         `cbor:"type"`
	Reading *store.Reading `cbor:"reading"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Topic returns the topic a reading is published under.
func Topic(rd *store.Reading) string {
	if rd.OK() {
		return TopicReading
	}
	return TopicFailure
}

// Encode returns the CBOR envelope of a reading.
func Encode(rd *store.Reading) ([]byte, error) {
	return encMode.Marshal(Envelope{Type: Topic(rd), Reading: rd})
}

// Decode parses a CBOR envelope.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Reading == nil {
		return nil, errors.New("decode envelope: missing reading")
	}
	return &env, nil
}

// Publisher owns a ZeroMQ PUB socket.
type Publisher struct {
	mu       sync.Mutex
	socket   *zmq4.Socket
	endpoint string
	log      zerolog.Logger
}

// New binds a PUB socket to endpoint, e.g. "tcp://*:5557".
func New(endpoint string) (*Publisher, error) {
	socket, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, err
	}
	if err := socket.Bind(endpoint); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("bind %s: %w", endpoint, err)
	}

	p := &Publisher{
		socket:   socket,
		endpoint: endpoint,
		log:      log.With().Str("module", "publish").Logger(),
	}
	p.log.Info().Str("endpoint", endpoint).Msg("publishing readings")
	return p, nil
}

// Endpoint returns the bound endpoint.
func (p *Publisher) Endpoint() string {
	return p.endpoint
}

// Publish sends one reading. ZeroMQ sockets are not goroutine-safe, so sends
// are serialized.
func (p *Publisher) Publish(rd *store.Reading) error {
	payload, err := Encode(rd)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.socket == nil {
		return ErrClosed
	}
	if _, err := p.socket.SendMessage(Topic(rd), payload); err != nil {
		return fmt.Errorf("publish %s: %w", rd.ID, err)
	}
	p.log.Debug().Str("reading", rd.ID).Int("bytes", len(payload)).Msg("published")
	return nil
}

// Notify publishes rd. It lets a Publisher serve as an app sink.
func (p *Publisher) Notify(_ context.Context, rd *store.Reading) error {
	return p.Publish(rd)
}

// Close closes the socket. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.socket == nil {
		return nil
	}
	err := p.socket.Close()
	p.socket = nil
	return err
}
