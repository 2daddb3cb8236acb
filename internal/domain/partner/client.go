package partner

import (
	"time"

	"github.com/proxima/backend/internal/domain/shared"
)

// Client represents a customer of the business
// It is the aggregate root for client operations
type Client struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(200);not null"`
	Phone   string `gorm:"type:varchar(30)"`
	Address string `gorm:"type:varchar(300)"`
	City    string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client
func NewClient(name, phone, address, city string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}

	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             phone,
		Address:           address,
		City:              city,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// Update updates the client's contact information
func (c *Client) Update(name, phone, address, city string) error {
	if err := validateClientName(name); err != nil {
		return err
	}

	c.Name = name
	c.Phone = phone
	c.Address = address
	c.City = city
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}
