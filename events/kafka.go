package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Client хранит адреса брокеров Kafka
type Client struct {
	Brokers []string
}

// NewClient разбирает список брокеров через запятую
func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

// Enabled сообщает, настроены ли брокеры
func (c *Client) Enabled() bool {
	return c != nil && len(c.Brokers) > 0
}

// NewWriter создает writer для топика
func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// PublishJSON сериализует payload и отправляет одно сообщение
func PublishJSON(ctx context.Context, writer *kafka.Writer, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}

// Publisher отправляет события в один топик. Нулевой Publisher ничего не делает.
type Publisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewPublisher возвращает nil, если Kafka не настроена
func NewPublisher(client *Client, topic string) *Publisher {
	if !client.Enabled() || topic == "" {
		return nil
	}
	return &Publisher{writer: client.NewWriter(topic), timeout: 5 * time.Second}
}

// Enabled сообщает, будет ли событие реально отправлено
func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// Publish отправляет событие с ограничением по времени
func (p *Publisher) Publish(ctx context.Context, key string, payload any) error {
	if !p.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return PublishJSON(ctx, p.writer, key, payload)
}

// Close закрывает writer
func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
