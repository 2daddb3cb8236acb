package partner

import (
	"github.com/google/uuid"
	"github.com/proxima/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientCreated = "ClientCreated"
	EventTypeClientUpdated = "ClientUpdated"
	EventTypeClientDeleted = "ClientDeleted"
)

// ClientCreatedEvent is published when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Name:            client.Name,
	}
}

// ClientUpdatedEvent is published when a client is updated
type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientUpdatedEvent creates a new ClientUpdatedEvent
func NewClientUpdatedEvent(client *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientUpdated, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Name:            client.Name,
	}
}

// ClientDeletedEvent is published when a client is deleted
type ClientDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientDeletedEvent creates a new ClientDeletedEvent
func NewClientDeletedEvent(client *Client) *ClientDeletedEvent {
	return &ClientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeleted, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Name:            client.Name,
	}
}
