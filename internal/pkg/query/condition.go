package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition.
type Condition interface {
	// SQL returns the fragment and its parameters. paramIndex is the first
	// free index for generated names (@p0, @p1, ...).
	SQL(paramIndex int) (string, map[string]interface{})
}

type compareCondition struct {
	field string
	op    string
	value interface{}
}

func (c *compareCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := fmt.Sprintf("p%d", paramIndex)
	return fmt.Sprintf("%s %s @%s", c.field, c.op, name), map[string]interface{}{name: c.value}
}

// Eq generates "field = @pN".
func Eq(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// Gt generates "field > @pN". Used for keyset pagination.
func Gt(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: ">", value: value}
}

// Gte generates "field >= @pN".
func Gte(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: ">=", value: value}
}

// Lt generates "field < @pN".
func Lt(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "<", value: value}
}

// Lte generates "field <= @pN".
func Lte(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "<=", value: value}
}

type inCondition struct {
	field  string
	values []string
	not    bool
}

// In generates "field IN UNNEST(@pN)" for a string list.
func In(field string, values []string) Condition {
	return &inCondition{field: field, values: values}
}

// NotIn generates "field NOT IN UNNEST(@pN)".
func NotIn(field string, values []string) Condition {
	return &inCondition{field: field, values: values, not: true}
}

func (c *inCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := fmt.Sprintf("p%d", paramIndex)
	op := "IN"
	if c.not {
		op = "NOT IN"
	}
	values := c.values
	if values == nil {
		values = []string{}
	}
	return fmt.Sprintf("%s %s UNNEST(@%s)", c.field, op, name), map[string]interface{}{name: values}
}

type isNullCondition struct {
	field string
	not   bool
}

// IsNull generates "field IS NULL".
func IsNull(field string) Condition {
	return &isNullCondition{field: field}
}

// IsNotNull generates "field IS NOT NULL".
func IsNotNull(field string) Condition {
	return &isNullCondition{field: field, not: true}
}

func (c *isNullCondition) SQL(int) (string, map[string]interface{}) {
	if c.not {
		return fmt.Sprintf("%s IS NOT NULL", c.field), map[string]interface{}{}
	}
	return fmt.Sprintf("%s IS NULL", c.field), map[string]interface{}{}
}

type anyOfCondition struct {
	conditions []Condition
}

// AnyOf joins conditions with OR inside parentheses. With no conditions it
// yields FALSE, with one it yields that condition unwrapped.
func AnyOf(conditions ...Condition) Condition {
	return &anyOfCondition{conditions: conditions}
}

func (c *anyOfCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	params := make(map[string]interface{})
	if len(c.conditions) == 0 {
		return "FALSE", params
	}

	parts := make([]string, 0, len(c.conditions))
	for _, cond := range c.conditions {
		fragment, condParams := cond.SQL(paramIndex)
		parts = append(parts, fragment)
		for k, v := range condParams {
			params[k] = v
		}
		paramIndex += len(condParams)
	}

	if len(parts) == 1 {
		return parts[0], params
	}
	return "(" + strings.Join(parts, " OR ") + ")", params
}
