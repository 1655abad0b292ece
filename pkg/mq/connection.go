package mq

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// DefaultExchange receives habit events when mq.exchange is not set.
const DefaultExchange = "habit.events"

// NewConnection dials the broker at url.
func NewConnection(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func exchangeOrDefault(name string) string {
	if name == "" {
		return DefaultExchange
	}
	return name
}

// DeclareExchange declares a durable topic exchange so consumers can bind
// to habit.* routing keys.
func DeclareExchange(ch *amqp091.Channel, name string) error {
	return ch.ExchangeDeclare(name, amqp091.ExchangeTopic, true, false, false, false, nil)
}
