// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/questline/internal/config"
	"github.com/tomtom215/questline/internal/logging"
)

// Backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// StreamName is the JetStream stream holding change events.
const StreamName = "QUESTLINE_GAME_CHANGES"

const (
	ackWaitTimeout  = 30 * time.Second
	closeTimeout    = 30 * time.Second
	streamRetention = 24 * time.Hour
)

// Bus pairs a publisher and subscriber on one transport.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	backend string
	server  *EmbeddedServer
	logger  zerolog.Logger
}

// NewGoChannelBus creates an in-process bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGoChannelBus(logger zerolog.Logger) *Bus {
	logger = logger.With().Str("component", "events").Logger()
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logging.NewWatermillAdapter(logger))
	return &Bus{Publisher: ch, Subscriber: ch, backend: BackendGoChannel, logger: logger}
}

// NewBus creates the bus selected by cfg. Topics are needed to provision the
// JetStream stream.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg *config.EventsConfig, topics Topics, logger zerolog.Logger) (*Bus, error) {
	switch cfg.Backend {
	case "", BackendGoChannel:
		return NewGoChannelBus(logger), nil
	case BackendNATS:
		return newNATSBus(cfg, topics, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newNATSBus(cfg *config.EventsConfig, topics Topics, logger zerolog.Logger) (*Bus, error) {
	logger = logger.With().Str("component", "events").Logger()
	b := &Bus{backend: BackendNATS, logger: logger}

	url := cfg.NATSURL
	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(&ServerConfig{
			Port:      cfg.EmbeddedPort,
			JetStream: cfg.JetStream,
			StoreDir:  cfg.StoreDir,
		})
		if err != nil {
			return nil, err
		}
		b.server = srv
		url = srv.ClientURL()
		logger.Info().Str("url", url).Bool("jetstream", cfg.JetStream).Msg("Embedded NATS server started")
	}

	if cfg.JetStream {
		if err := ensureStream(url, topics); err != nil {
			b.shutdownServer()
			return nil, err
		}
	}

	adapter := logging.NewWatermillAdapter(logger)
	opts := natsOptions(logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      !cfg.JetStream,
			AutoProvision: false,
			TrackMsgId:    cfg.JetStream,
		},
	}, adapter)
	if err != nil {
		b.shutdownServer()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	subOpts := []natsgo.SubOpt{natsgo.DeliverNew()}
	if cfg.JetStream {
		subOpts = append(subOpts, natsgo.BindStream(StreamName))
	}
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: max(cfg.SubscribersCount, 1),
		AckWaitTimeout:   ackWaitTimeout,
		CloseTimeout:     closeTimeout,
		NatsOptions:      opts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         !cfg.JetStream,
			AutoProvision:    false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.QueueGroup,
		},
	}, adapter)
	if err != nil {
		_ = pub.Close()
		b.shutdownServer()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	b.Publisher = pub
	b.Subscriber = sub
	return b, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func natsOptions(logger zerolog.Logger) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("questline"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
}

// ensureStream creates or updates the change stream.
func ensureStream(url string, topics Topics) error {
	nc, err := natsgo.Connect(url, natsgo.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{topics.Wildcard()},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    streamRetention,
		Storage:   jetstream.FileStorage,
		Discard:   jetstream.DiscardOld,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", StreamName, err)
	}
	return nil
}

// Backend returns the transport name.
func (b *Bus) Backend() string {
	return b.backend
}

// Close closes the publisher, subscriber and embedded server.
func (b *Bus) Close() error {
	var errs []error
	if b.Publisher != nil {
		errs = append(errs, b.Publisher.Close())
	}
	// gochannel uses one value for both sides.
	if b.Subscriber != nil && any(b.Subscriber) != any(b.Publisher) {
		errs = append(errs, b.Subscriber.Close())
	}
	b.shutdownServer()
	return errors.Join(errs...)
}

func (b *Bus) shutdownServer() {
	if b.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.server.Shutdown(ctx); err != nil {
		b.logger.Warn().Err(err).Msg("Embedded NATS server shutdown timed out")
	}
	b.server = nil
}
