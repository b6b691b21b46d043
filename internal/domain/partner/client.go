// Package partner contains the client (author/publisher customer) aggregate.
package partner

import (
	"strings"
	"time"

	"github.com/ddmpress/backend/internal/domain/shared"
)

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client represents a client of the publishing house.
// It is the aggregate root for client-related operations.
//
// Number is the sequential client number. It is nil until the sequence
// allocator assigns one, which happens exactly once, inside the transaction
// that first durably creates the client. Two distinct clients never share a
// number.
type Client struct {
	shared.BaseAggregateRoot
	Number      *int64       `gorm:"uniqueIndex"`
	Name        string       `gorm:"type:varchar(200);not null"`
	ContactName string       `gorm:"type:varchar(100)"`
	Phone       string       `gorm:"type:varchar(50);index"`
	Email       string       `gorm:"type:varchar(200);index"`
	Document    string       `gorm:"type:varchar(50)"` // CPF/CNPJ
	Address     string       `gorm:"type:text"`
	City        string       `gorm:"type:varchar(100)"`
	State       string       `gorm:"type:varchar(100)"`
	Status      ClientStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes       string       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client with required fields.
// The client number is not assigned here; it is allocated by the sequence
// allocator inside the creating transaction.
func NewClient(name string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}

	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Status:            ClientStatusActive,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// AssignNumber assigns the sequential client number. The number is assigned
// at most once; a second assignment is an invalid state transition.
func (c *Client) AssignNumber(number int64) error {
	if c.Number != nil {
		return shared.NewDomainError("NUMBER_ALREADY_ASSIGNED", "Client number is assigned at most once")
	}
	if number <= 0 {
		return shared.NewDomainError("INVALID_NUMBER", "Client number must be positive")
	}

	c.Number = &number
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientNumberAssignedEvent(c, number))

	return nil
}

// SetContact updates the client's contact information
func (c *Client) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	c.ContactName = contactName
	c.Phone = phone
	c.Email = strings.ToLower(email)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetAddress updates the client's address
func (c *Client) SetAddress(address, city, state string) {
	c.Address = address
	c.City = city
	c.State = state
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetDocument sets the client's fiscal document (CPF/CNPJ)
func (c *Client) SetDocument(document string) error {
	if document != "" && len(document) > 50 {
		return shared.NewDomainError("INVALID_DOCUMENT", "Document cannot exceed 50 characters")
	}
	c.Document = document
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetNotes sets free-form notes about the client
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Update updates the client's name
func (c *Client) Update(name string) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate marks the client as inactive
func (c *Client) Deactivate() error {
	if c.Status == ClientStatusInactive {
		return shared.ErrInvalidState
	}
	c.Status = ClientStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewClientDeactivatedEvent(c))
	return nil
}

// Activate marks the client as active
func (c *Client) Activate() error {
	if c.Status == ClientStatusActive {
		return shared.ErrInvalidState
	}
	c.Status = ClientStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsActive returns true if the client is active
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// HasNumber returns true if the sequential number has been assigned
func (c *Client) HasNumber() bool {
	return c.Number != nil
}

func validateClientName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}
