package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher публикует события заявок в Kafka
type Publisher struct {
	writer messageWriter
	topic  string
	log    Logger
}

// NewKafkaPublisher создает издателя поверх kafka.Writer.
// brokers передаются строкой через запятую.
func NewKafkaPublisher(brokers, topic string, timeout time.Duration, log Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(SplitBrokers(brokers)...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: timeout,
	}
	return newPublisher(writer, topic, log)
}

func newPublisher(writer messageWriter, topic string, log Logger) *Publisher {
	return &Publisher{
		writer: writer,
		topic:  topic,
		log:    log,
	}
}

// PublishTicketEvent записывает событие; ключ сообщения id заявки, чтобы события одной заявки шли по порядку
func (p *Publisher) PublishTicketEvent(ctx context.Context, event TicketEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: event=%s: %v", ErrEncode, event.Type, err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.TicketID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: event=%s ticket=%s: %v", ErrPublish, event.Type, event.TicketID, err)
	}

	p.log.Info("Events: published %s for ticket=%s", event.Type, event.TicketID)
	return nil
}

// Close закрывает соединения с брокером
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// SplitBrokers разбирает список брокеров через запятую, пустые элементы отбрасываются
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
