/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package querymodels

import (
	"testing"
	"time"

	"github.com/suparena/fastpath/errors"
	"github.com/suparena/fastpath/schema"
)

type queryTestInvoice struct {
	ID         string
	CustomerID string
	Status     string
	Total      float64
	CreatedAt  string
}

func init() {
	schema.RegisterSchema[queryTestInvoice](schema.Schema{
		EntityType:   "QueryTestInvoice",
		Fields:       []string{"ID", "CustomerID", "Status", "Total", "CreatedAt"},
		KeyTemplates: map[string]string{"PK": "INVOICE#{ID}", "SK": "INVOICE#{ID}"},
		Relations: []schema.Relation{
			{Name: "Lines", EntityType: "QueryTestInvoiceLine", SortKeyPrefix: "LINE#"},
		},
	})
}

func TestEntityQueryValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		q := &EntityQuery{
			EntityType: "QueryTestInvoice",
			Key:        "inv-1",
			Projection: []string{"ID", "Status"},
			Include:    []string{"Lines"},
		}
		s, err := q.Validate()
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if s.EntityType != "QueryTestInvoice" {
			t.Errorf("unexpected schema %q", s.EntityType)
		}
	})

	t.Run("UnknownSchema", func(t *testing.T) {
		q := &EntityQuery{EntityType: "Nope", Projection: []string{"ID"}}
		if _, err := q.Validate(); err != errors.ErrUnknownSchema {
			t.Errorf("expected ErrUnknownSchema, got %v", err)
		}
	})

	t.Run("EmptyProjection", func(t *testing.T) {
		q := &EntityQuery{EntityType: "QueryTestInvoice", Key: "inv-1"}
		_, err := q.Validate()
		if !errors.IsInvalidQuery(err) {
			t.Errorf("expected invalid query error, got %v", err)
		}
	})

	t.Run("FieldOutsideSchema", func(t *testing.T) {
		q := &EntityQuery{
			EntityType: "QueryTestInvoice",
			Projection: []string{"ID", "Discount"},
		}
		_, err := q.Validate()
		if !errors.IsInvalidQuery(err) {
			t.Errorf("expected invalid query error, got %v", err)
		}
	})

	t.Run("UndeclaredRelation", func(t *testing.T) {
		q := &EntityQuery{
			EntityType: "QueryTestInvoice",
			Projection: []string{"ID"},
			Include:    []string{"Payments"},
		}
		_, err := q.Validate()
		if !errors.IsInvalidQuery(err) {
			t.Errorf("expected invalid query error, got %v", err)
		}
	})
}

func TestTimeWindowHelpers(t *testing.T) {
	t.Run("InLastDays", func(t *testing.T) {
		p := InLastDays("CreatedAt", 30)
		if p.Op != OpGreaterThan {
			t.Errorf("expected %q, got %q", OpGreaterThan, p.Op)
		}
		if len(p.Values) != 1 {
			t.Fatalf("expected 1 operand, got %d", len(p.Values))
		}
		boundary, err := time.Parse(time.RFC3339, p.Values[0].(string))
		if err != nil {
			t.Fatalf("boundary is not RFC3339: %v", err)
		}
		want := time.Now().AddDate(0, 0, -30)
		if boundary.After(want.Add(time.Minute)) || boundary.Before(want.Add(-time.Minute)) {
			t.Errorf("boundary %v too far from expected %v", boundary, want)
		}
	})

	t.Run("BetweenTimes", func(t *testing.T) {
		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		p := BetweenTimes("CreatedAt", start, end)
		if p.Op != OpBetween {
			t.Errorf("expected %q, got %q", OpBetween, p.Op)
		}
		if len(p.Values) != 2 {
			t.Fatalf("expected 2 operands, got %d", len(p.Values))
		}
		if p.Values[0].(string) != "2025-01-01T00:00:00Z" {
			t.Errorf("unexpected start %v", p.Values[0])
		}
	})
}
