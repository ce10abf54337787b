package schema

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DecodeFunc takes a raw DynamoDB item and returns the decoded object.
type DecodeFunc func(item map[string]types.AttributeValue) (interface{}, error)

// decoderRegistry holds the mapping from an entity type name to its decoder.
var decoderRegistry = make(map[string]DecodeFunc)

// RegisterDecoder registers a decoder for a given entity type name.
// If a decoder is already registered for the name, it panics to prevent
// accidental overrides.
func RegisterDecoder(entityType string, fn DecodeFunc) {
	if _, exists := decoderRegistry[entityType]; exists {
		panic(fmt.Sprintf("schema: decoder for entity type %q already registered", entityType))
	}
	decoderRegistry[entityType] = fn
}

// GetDecoder returns the registered decoder for the given entity type name.
// If no decoder is registered, it returns an error.
func GetDecoder(entityType string) (DecodeFunc, error) {
	fn, ok := decoderRegistry[entityType]
	if !ok {
		return nil, fmt.Errorf("schema: no decoder registered for entity type %q", entityType)
	}
	return fn, nil
}
