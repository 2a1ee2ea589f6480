package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter registra los mensajes escritos.
type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewProducerWithWriter(fw)

	err := p.Publish(context.Background(), "inv-1", map[string]string{"type": "invoice.issued"})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "inv-1", string(fw.msgs[0].Key))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &payload))
	assert.Equal(t, "invoice.issued", payload["type"])
}

func TestPublish_ErrorDelWriter(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker caído")}
	p := NewProducerWithWriter(fw)

	err := p.Publish(context.Background(), "inv-1", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker caído")
}

func TestPublish_ValorNoSerializable(t *testing.T) {
	fw := &fakeWriter{}
	p := NewProducerWithWriter(fw)

	err := p.Publish(context.Background(), "k", make(chan int))
	require.Error(t, err)
	assert.Empty(t, fw.msgs)
}

func TestClose(t *testing.T) {
	fw := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(fw).Close())
	assert.True(t, fw.closed)
}
