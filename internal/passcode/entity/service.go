package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDuplicateService indicates two catalog entries share an ID.
	ErrDuplicateService = errors.New("passcode: duplicate service id in catalog")

	// ErrInvalidValidity indicates a non-positive validity duration.
	ErrInvalidValidity = errors.New("passcode: service validity must be positive")
)

// ServiceDefinition describes a named context an OTP can be issued for. The
// service determines how long its codes stay valid.
type ServiceDefinition struct {
	ID          string
	DisplayName string
	Validity    time.Duration
}

// Catalog is the read-only, ordered set of services known at startup.
type Catalog struct {
	ordered []ServiceDefinition
	byID    map[string]ServiceDefinition
}

// NewCatalog builds a catalog, preserving insertion order. It fails on
// duplicate IDs or non-positive validity durations.
func NewCatalog(services []ServiceDefinition) (*Catalog, error) {
	c := &Catalog{
		ordered: make([]ServiceDefinition, 0, len(services)),
		byID:    make(map[string]ServiceDefinition, len(services)),
	}

	for _, svc := range services {
		if _, exists := c.byID[svc.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateService, svc.ID)
		}
		if svc.Validity <= 0 {
			return nil, fmt.Errorf("%w: %q has %s", ErrInvalidValidity, svc.ID, svc.Validity)
		}

		c.ordered = append(c.ordered, svc)
		c.byID[svc.ID] = svc
	}

	return c, nil
}

// List returns the services in insertion order. The slice is a copy.
func (c *Catalog) List() []ServiceDefinition {
	out := make([]ServiceDefinition, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Lookup returns the service for id.
func (c *Catalog) Lookup(id string) (ServiceDefinition, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

// Len returns the number of services.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// DefaultServices is the built-in service set, used when configuration does
// not override the catalog.
func DefaultServices() []ServiceDefinition {
	return []ServiceDefinition{
		{ID: "email_verification", DisplayName: "Email Verification", Validity: 300 * time.Second},
		{ID: "login_2fa", DisplayName: "2FA Login", Validity: 180 * time.Second},
		{ID: "password_reset", DisplayName: "Password Reset", Validity: 600 * time.Second},
		{ID: "transaction_verify", DisplayName: "Transaction Verification", Validity: 120 * time.Second},
		{ID: "account_security", DisplayName: "Account Security", Validity: 300 * time.Second},
	}
}
