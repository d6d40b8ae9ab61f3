package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/BradenHooton/leadintake/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestCRMPublisher_Publishes(t *testing.T) {
	ch := &fakeChannel{}
	path := "uploads/resumes/resume-1.pdf"
	lead := &models.Lead{
		ID:          "lead-1",
		FirstName:   "Ana",
		LastName:    "Silva",
		Email:       "ana@example.com",
		LinkedinURL: "https://linkedin.com/in/ana",
		Country:     "Brazil",
		VisaType:    models.VisaTypeEB2NIW,
		ResumePath:  &path,
		CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	err := NewCRMPublisher(ch).NotifyLeadSubmitted(context.Background(), lead)
	require.NoError(t, err)

	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, RoutingKey, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "lead-1", ch.msg.MessageId)

	var event LeadCreatedEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &event))
	assert.Equal(t, "lead-1", event.LeadID)
	assert.Equal(t, "EB2_NIW", event.VisaType)
	assert.True(t, event.HasResume)
	assert.Nil(t, event.AdditionalInfo)
}

func TestCRMPublisher_PropagatesError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}

	err := NewCRMPublisher(ch).NotifyLeadSubmitted(context.Background(), &models.Lead{ID: "x"})
	assert.Error(t, err)
}
