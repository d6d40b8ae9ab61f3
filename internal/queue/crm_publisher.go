package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/BradenHooton/leadintake/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadCreatedEvent is the message body the CRM worker consumes
type LeadCreatedEvent struct {
	LeadID         string    `json:"lead_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	LinkedinURL    string    `json:"linkedin_url"`
	Country        string    `json:"country"`
	VisaType       string    `json:"visa_type"`
	AdditionalInfo *string   `json:"additional_info,omitempty"`
	HasResume      bool      `json:"has_resume"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewLeadCreatedEvent(lead *models.Lead) LeadCreatedEvent {
	return LeadCreatedEvent{
		LeadID:         lead.ID,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		Email:          lead.Email,
		LinkedinURL:    lead.LinkedinURL,
		Country:        lead.Country,
		VisaType:       string(lead.VisaType),
		AdditionalInfo: lead.AdditionalInfo,
		HasResume:      lead.ResumePath != nil,
		CreatedAt:      lead.CreatedAt,
	}
}

// Publisher is the subset of *amqp.Channel the CRM publisher uses
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// CRMPublisher pushes every new lead onto the lead exchange
type CRMPublisher struct {
	mu sync.Mutex
	ch Publisher
}

func NewCRMPublisher(ch Publisher) *CRMPublisher {
	return &CRMPublisher{ch: ch}
}

func (p *CRMPublisher) Name() string { return "crm" }

func (p *CRMPublisher) NotifyLeadSubmitted(ctx context.Context, lead *models.Lead) error {
	body, err := json.Marshal(NewLeadCreatedEvent(lead))
	if err != nil {
		return fmt.Errorf("failed to encode lead event: %w", err)
	}

	// amqp channels must not be published to from several goroutines at once
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    lead.ID,
			Timestamp:    time.Now().UTC(),
			Type:         RoutingKey,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}
	return nil
}
