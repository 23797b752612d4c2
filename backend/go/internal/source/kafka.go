package source

import (
	"context"
	"fmt"

	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSource consumes JSON articles from a topic. Offsets are committed as
// each article is handed out; malformed messages are committed and skipped.
type KafkaSource struct {
	reader messageReader
	log    *logger.Logger
}

func NewKafkaSource(r *kafka.Reader, log *logger.Logger) *KafkaSource {
	return &KafkaSource{reader: r, log: log}
}

func (k *KafkaSource) Name() string { return "kafka" }

func (k *KafkaSource) Next(ctx context.Context) (*models.Article, error) {
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message: %w", err)
		}

		a, decodeErr := DecodeArticle(msg.Value)
		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to commit message: %w", err)
		}
		if decodeErr != nil {
			k.log.WithField("offset", msg.Offset).
				WithError(models.ErrorInfo{Message: decodeErr.Error(), Type: "decode"}).
				Warn("skipping malformed article message")
			continue
		}
		return a, nil
	}
}

func (k *KafkaSource) Close() error {
	return k.reader.Close()
}
