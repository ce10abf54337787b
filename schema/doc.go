/*
Package schema manages entity schema registration for FastPath.

The schema system enables:
  - Explicit field projection validated against the declared attribute list
  - Relation declarations that the planner composes into single round trips
  - Polymorphic decoding of composed reads via EntityType dispatch
  - Flexible key patterns through {Field} macro templates

Schema Registry:
Associates Go types with their entity schema:

	schema.RegisterSchema[Order](schema.Schema{
	    EntityType:   "Order",
	    Fields:       []string{"ID", "CustomerID", "Status", "Total", "CreatedAt"},
	    KeyTemplates: map[string]string{"PK": "ORDER#{ID}", "SK": "ORDER#{ID}"},
	    Relations: []schema.Relation{
	        {Name: "Items", EntityType: "OrderItem", SortKeyPrefix: "ORDERITEM#"},
	    },
	})

Decoder Registry:
Maps entity type names to decode functions used on composed reads:

	schema.RegisterDecoder("Order", func(item map[string]types.AttributeValue) (interface{}, error) {
	    o := &Order{}
	    return o, attributevalue.UnmarshalMap(item, o)
	})

The registry is thread-safe and should be populated during initialization,
typically in init() functions or through generated code.
*/
package schema
