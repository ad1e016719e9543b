package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes stock events to Kafka. It satisfies the stock publisher
// hook on the core services. With no brokers configured the producer runs
// disabled and only logs at debug level, so a local setup needs no Kafka.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer builds a Producer for the given brokers and topic. An empty
// brokers string yields a disabled producer.
func NewProducer(brokers, topic string, logger *zap.Logger) *Producer {
	p := &Producer{logger: logger}
	if brokers == "" {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return p
}

// StockChanged publishes a StockChangedEvent. Messages are keyed by product
// ID so consumers see each product's updates in order. Publish failures are
// logged, not surfaced; the database write already committed.
func (p *Producer) StockChanged(ctx context.Context, productID, quantity int, source string) {
	event := NewStockChangedEvent(productID, quantity, source)

	if p.writer == nil {
		p.logger.Debug("stock event skipped, no brokers configured",
			zap.Int("product_id", productID),
			zap.String("source", source))
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal stock event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(productID)),
		Value: value,
	})
	if err != nil {
		p.logger.Error("failed to publish stock event",
			zap.String("event_id", event.EventID.String()),
			zap.Int("product_id", productID),
			zap.Error(err))
		return
	}

	p.logger.Debug("stock event published",
		zap.String("event_id", event.EventID.String()),
		zap.Int("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("source", source))
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
