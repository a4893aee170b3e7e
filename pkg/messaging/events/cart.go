// Package events contains the domain events published by the storefront.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
)

type CartLineAddedEvent struct {
	CartID     string    `json:"cart_id"`
	VariantID  string    `json:"variant_id"`
	Quantity   int64     `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e CartLineAddedEvent) Subject() string {
	return messaging.CartLineAddedSubject
}

func (e CartLineAddedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type CartLineUpdatedEvent struct {
	CartID     string    `json:"cart_id"`
	LineID     string    `json:"line_id"`
	Quantity   int64     `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e CartLineUpdatedEvent) Subject() string {
	return messaging.CartLineUpdatedSubject
}

func (e CartLineUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type CartLineRemovedEvent struct {
	CartID     string    `json:"cart_id"`
	LineID     string    `json:"line_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e CartLineRemovedEvent) Subject() string {
	return messaging.CartLineRemovedSubject
}

func (e CartLineRemovedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
