package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type token struct {
	done chan struct{}
	err  error
}

func completed(err error) *token {
	t := &token{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *token) Wait() bool                       { <-t.done; return true }
func (t *token) WaitTimeout(d time.Duration) bool { return true }
func (t *token) Done() <-chan struct{}            { return t.done }
func (t *token) Error() error                     { return t.err }

type fakeClient struct {
	tok      *token
	topic    string
	retained bool
	payload  any
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload any) mqtt.Token {
	c.topic = topic
	c.retained = retained
	c.payload = payload
	return c.tok
}

func TestSinkPublishesRetained(t *testing.T) {
	client := &fakeClient{tok: completed(nil)}
	sink := NewSink(client, "hwmonitor/bench")

	require.NoError(t, sink.Publish(t.Context(), []byte(`{"hostname":"bench"}`)))
	assert.Equal(t, "hwmonitor/bench", client.topic)
	assert.True(t, client.retained)
	assert.Equal(t, []byte(`{"hostname":"bench"}`), client.payload)
	assert.Equal(t, "mqtt:hwmonitor/bench", sink.Name())
}

func TestSinkReturnsBrokerError(t *testing.T) {
	client := &fakeClient{tok: completed(errors.New("not authorized"))}
	sink := NewSink(client, "t")

	assert.EqualError(t, sink.Publish(t.Context(), []byte("{}")), "not authorized")
}

func TestSinkHonoursContext(t *testing.T) {
	client := &fakeClient{tok: &token{done: make(chan struct{})}}
	sink := NewSink(client, "t")

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, sink.Publish(ctx, []byte("{}")), context.DeadlineExceeded)
}

func TestSinkWithoutClient(t *testing.T) {
	sink := NewSink(nil, "t")
	assert.Error(t, sink.Publish(t.Context(), []byte("{}")))
}
