/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandStringKey replaces macro patterns in the key templates with the
// provided logical key. Each template is assumed to contain one macro
// (for example "ORDER#{ID}" with key "o-1" expands to "ORDER#o-1").
func expandStringKey(templates map[string]string, key string) map[string]string {
	expanded := make(map[string]string, len(templates))
	for field, template := range templates {
		expanded[field] = macroPattern.ReplaceAllString(template, key)
	}
	return expanded
}

// expandMacros expands key templates from an entity's own attributes. Used
// at write time when seeding items; at read time expandStringKey suffices.
func expandMacros(templates map[string]string, entity any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	res := make(map[string]string, len(templates))
	for fieldName, template := range templates {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			name := macro[1 : len(macro)-1]
			val, ok := av[name]
			if !ok {
				return ""
			}
			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				return ""
			}
		})
		res[fieldName] = expanded
	}
	return res, nil
}

// partitionKey returns the expanded PK for a logical key, which anchors the
// item collection a composed fetch reads.
func partitionKey(templates map[string]string, key string) (string, error) {
	expanded := expandStringKey(templates, key)
	pk, ok := expanded["PK"]
	if !ok || pk == "" {
		return "", fmt.Errorf("key templates missing PK")
	}
	return pk, nil
}
