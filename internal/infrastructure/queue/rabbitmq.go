// Package queue publishes price alert events to RabbitMQ so other systems
// (dashboards, email, analytics) can react to them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
)

var (
	_ ports.AlertPublisher = (*AlertPublisher)(nil)
	_ ports.AlertPublisher = NopPublisher{}
)

const (
	ExchangeName = "ridefare.events"
	QueueName    = "price_alerts"
	eventType    = "price_alert.triggered"
)

// Dial opens a connection to the broker.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	return conn, nil
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AlertPublisher publishes PriceAlerts to a durable fanout exchange.
type AlertPublisher struct {
	ch    channel
	newID func() string
}

// NewAlertPublisher declares the exchange and the alert queue and binds them.
func NewAlertPublisher(conn *amqp.Connection) (*AlertPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return newAlertPublisher(ch), nil
}

func newAlertPublisher(ch channel) *AlertPublisher {
	return &AlertPublisher{ch: ch, newID: func() string { return uuid.NewString() }}
}

type alertMessage struct {
	EventID     string  `json:"event_id"`
	Type        string  `json:"type"`
	RouteID     int64   `json:"route_id"`
	PhoneNumber string  `json:"phone_number"`
	Pickup      string  `json:"pickup"`
	Dropoff     string  `json:"dropoff"`
	Service     string  `json:"service"`
	Price       float64 `json:"price"`
	TargetPrice float64 `json:"target_price"`
	Timestamp   int64   `json:"timestamp"`
}

func (p *AlertPublisher) PublishAlert(ctx context.Context, alert domain.PriceAlert) error {
	msg := alertMessage{
		EventID:     p.newID(),
		Type:        eventType,
		RouteID:     alert.RouteID,
		PhoneNumber: alert.PhoneNumber,
		Pickup:      alert.Pickup,
		Dropoff:     alert.Dropoff,
		Service:     string(alert.Service),
		Price:       alert.Price,
		TargetPrice: alert.TargetPrice,
		Timestamp:   alert.At.Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.EventID,
		Type:         eventType,
		Timestamp:    alert.At,
		Body:         body,
	})
}

// NopPublisher drops alerts. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishAlert(context.Context, domain.PriceAlert) error { return nil }
