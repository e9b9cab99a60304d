// Package filter compiles widget filter conditions into SQL predicate
// fragments.
//
// The compiler is deliberately tolerant: widget configurations come from a
// form-driven UI and routinely contain half-finished conditions. A condition
// missing its column, referencing an unknown column, or carrying an operand
// its column type cannot accept is silently skipped and the rest of the list
// still compiles - a partially-filtered dashboard beats a crashed one. The
// only hard failure is an unknown relative-date range name, which proves a
// real misconfiguration rather than an unfinished form.
package filter

import (
	"encoding/json"

	"github.com/roach88/widgetql/internal/catalog"
	"github.com/roach88/widgetql/internal/scalar"
)

// Joiner values for Condition.LogicalOperator.
const (
	JoinAnd = "AND"
	JoinOr  = "OR"
)

// Condition is one user-authored filter clause.
//
// Value is nil only for the null-check operators. LogicalOperator, when set,
// controls how this condition joins with the next one in the list; it
// defaults to AND. Config carries opaque consumer tags (the metric widget's
// trend filter lives there); the engine round-trips it untouched.
type Condition struct {
	Column          string
	Operator        catalog.Operator
	Value           scalar.Value
	LogicalOperator string
	Config          map[string]any
}

// IsTrendFilter reports whether the condition carries the metric-widget
// trend tag. The engine does not enforce cardinality; consumers interpret
// the tag.
func (c Condition) IsTrendFilter() bool {
	if c.Config == nil {
		return false
	}
	v, ok := c.Config["isTrendFilter"].(bool)
	return ok && v
}

// Joiner returns the effective logical operator joining this condition with
// the next: the condition's own LogicalOperator when valid, AND otherwise.
func (c Condition) Joiner() string {
	if c.LogicalOperator == JoinOr {
		return JoinOr
	}
	return JoinAnd
}

// conditionJSON mirrors the wire shape of a condition. Extra keys are
// ignored by encoding/json, which is the explicit unknown-keys policy.
type conditionJSON struct {
	Column          string          `json:"column"`
	Operator        string          `json:"operator"`
	Value           json.RawMessage `json:"value"`
	LogicalOperator string          `json:"logicalOperator,omitempty"`
	Config          map[string]any  `json:"config,omitempty"`
}

// UnmarshalJSON decodes a loosely-typed condition. An operand of an
// unsupported type decodes as nil rather than failing, leaving the compiler
// to skip the condition.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Column = raw.Column
	c.Operator = catalog.Operator(raw.Operator)
	c.LogicalOperator = raw.LogicalOperator
	c.Config = raw.Config
	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		c.Value = scalar.Null{}
		return nil
	}
	if v, err := scalar.FromJSON(raw.Value); err == nil {
		c.Value = v
	} else {
		c.Value = nil
	}
	return nil
}

// MarshalJSON encodes the condition back to its wire shape.
func (c Condition) MarshalJSON() ([]byte, error) {
	raw := struct {
		Column          string         `json:"column"`
		Operator        string         `json:"operator"`
		Value           any            `json:"value"`
		LogicalOperator string         `json:"logicalOperator,omitempty"`
		Config          map[string]any `json:"config,omitempty"`
	}{
		Column:          c.Column,
		Operator:        string(c.Operator),
		Value:           scalar.ToAny(c.Value),
		LogicalOperator: c.LogicalOperator,
		Config:          c.Config,
	}
	return json.Marshal(raw)
}
