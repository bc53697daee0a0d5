package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"hwmonitor/internal/logger"
)

type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// Sink publishes snapshot envelopes to a single retained topic so late
// subscribers see the latest reading immediately.
type Sink struct {
	client publisher
	topic  string
}

func Connect(opts Options, log logger.Logger) (*Sink, mqtt.Client, error) {
	co := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info("mqtt: connected", "broker", opts.Broker)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("mqtt: connection lost", "broker", opts.Broker, "error", err)
		})
	if opts.Username != "" {
		co.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		co.SetPassword(opts.Password)
	}

	client := mqtt.NewClient(co)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return NewSink(client, opts.Topic), client, nil
}

func NewSink(client publisher, topic string) *Sink {
	return &Sink{client: client, topic: topic}
}

func (s *Sink) Name() string {
	return "mqtt:" + s.topic
}

func (s *Sink) Publish(ctx context.Context, payload []byte) error {
	if s.client == nil {
		return errors.New("mqtt client not connected")
	}

	token := s.client.Publish(s.topic, 0, true, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
