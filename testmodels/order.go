package testmodels

import "github.com/go-openapi/strfmt"

type Order struct {

	// Timestamp when the order was created.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt"`

	// Unique identifier for the order.
	// Required: true
	ID *string `json:"Id"`

	// Current fulfillment status of the order.
	// Required: true
	Status *string `json:"Status"`

	// Order total in the smallest currency unit.
	// Required: true
	Total *int64 `json:"Total"`

	// customer Id
	CustomerID string `json:"CustomerId,omitempty"`
}

type OrderItem struct {

	// Unique identifier for the line item.
	// Required: true
	ID *string `json:"Id"`

	// Identifier of the owning order.
	// Required: true
	OrderID *string `json:"OrderId"`

	// Stock keeping unit of the purchased product.
	// Required: true
	SKU *string `json:"Sku"`

	// quantity
	Quantity int32 `json:"Quantity,omitempty"`

	// Line price in the smallest currency unit.
	Price int64 `json:"Price,omitempty"`
}

type OrderNote struct {

	// Unique identifier for the note.
	// Required: true
	ID *string `json:"Id"`

	// Identifier of the owning order.
	// Required: true
	OrderID *string `json:"OrderId"`

	// note body
	Body string `json:"Body,omitempty"`

	// Timestamp when the note was written.
	// Format: date-time
	WrittenAt strfmt.DateTime `json:"WrittenAt,omitempty"`
}
