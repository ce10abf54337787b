/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"reflect"
	"sync"
)

// Relation declares a related sub-entity collection reachable from a parent
// entity. Related items live in the parent's item collection and are
// distinguished by their sort-key prefix.
type Relation struct {
	// Name is the relation name used in EntityQuery.Include.
	Name string
	// EntityType is the registered type name of the related entity.
	EntityType string
	// SortKeyPrefix identifies items of this relation within the parent's
	// item collection (for example "ORDERITEM#").
	SortKeyPrefix string
}

// Schema describes an entity type: its known fields, its key templates and
// the relations that can be included in a fetch. Key templates use {Field}
// macros expanded from entity attributes (for example "ORDER#{ID}").
type Schema struct {
	// EntityType is the stable type name written to the store alongside each
	// item, used to dispatch decoding on composed reads.
	EntityType string
	// Fields is the complete attribute list for the type. A query projection
	// must be a subset of this list; there is no implicit select-all.
	Fields []string
	// KeyTemplates maps index attributes (PK, SK, GSI1PK, ...) to macro
	// templates.
	KeyTemplates map[string]string
	// Relations lists the sub-entity collections of this type.
	Relations []Relation
}

// HasField reports whether name is part of the declared schema.
func (s *Schema) HasField(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Relation returns the declared relation with the given name.
func (s *Schema) Relation(name string) (Relation, bool) {
	for _, r := range s.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

var (
	schemaRegistry = make(map[reflect.Type]*Schema)
	byName         = make(map[string]*Schema)
	mu             sync.RWMutex
)

// RegisterSchema associates a Go type T with its entity schema.
func RegisterSchema[T any](s Schema) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	cp := s
	schemaRegistry[t] = &cp
	if s.EntityType != "" {
		byName[s.EntityType] = &cp
	}
}

// GetSchema retrieves the schema for type T, if any.
func GetSchema[T any]() (*Schema, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	s, ok := schemaRegistry[t]
	return s, ok
}

// GetSchemaByName retrieves a schema by its registered entity type name.
func GetSchemaByName(entityType string) (*Schema, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := byName[entityType]
	return s, ok
}
