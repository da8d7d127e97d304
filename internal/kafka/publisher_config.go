package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

type PublisherConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// newWriter — синхронный writer: Publish возвращает ошибку брокера, а не теряет её в фоне.
func (c *PublisherConfig) newWriter() *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           c.writeTimeout(),
	}
}

func (c *PublisherConfig) writeTimeout() time.Duration {
	if c.WriteTimeout <= 0 {
		return 5 * time.Second
	}
	return c.WriteTimeout
}
