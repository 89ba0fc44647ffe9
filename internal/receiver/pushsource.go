package receiver

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

// KafkaSource consumes push payloads from the push-messaging backend.
type KafkaSource struct {
	client *kgo.Client
}

// NewKafkaSource connects to the backend described by cfg. It is the
// production SourceFactory.
func NewKafkaSource(cfg domain.PushConfig) (PushSource, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaSource{client: client}, nil
}

// Run polls the backend and hands each decoded payload to handle.
// Blocks until ctx is cancelled or the client is closed.
func (s *KafkaSource) Run(ctx context.Context, handle func(domain.PushPayload)) error {
	for {
		fetches := s.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error().Err(err).Str("topic", topic).Int32("partition", partition).Msg("push fetch error")
		})

		fetches.EachRecord(func(rec *kgo.Record) {
			var payload domain.PushPayload
			if err := json.Unmarshal(rec.Value, &payload); err != nil {
				log.Warn().Err(err).Str("topic", rec.Topic).Msg("undecodable push payload, skipping")
				return
			}
			handle(payload)
		})

		if err := s.client.CommitUncommittedOffsets(ctx); err != nil {
			log.Error().Err(err).Msg("push offset commit error")
		}
	}
}

// Close tears down the backend connection.
func (s *KafkaSource) Close() {
	s.client.Close()
}
