// Package catalog maps column data types to their legal filter operators.
//
// The catalog is a pure lookup layer: it owns the closed operator vocabulary,
// classifies column data types, and rewrites date-domain operators onto the
// comparison domain the filter compiler consumes. It has no failure modes -
// unknown data types fall back to a minimal operator set rather than erroring,
// so a schema with an exotic column type still yields a filterable widget.
package catalog

// Operator identifies one filter operator from the closed vocabulary.
type Operator string

// Comparison operators.
const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// Range and membership operators.
const (
	OpBetween    Operator = "between"
	OpNotBetween Operator = "notBetween"
	OpIn         Operator = "in"
	OpNotIn      Operator = "notIn"
)

// Text operators.
const (
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpStartsWith  Operator = "startsWith"
	OpEndsWith    Operator = "endsWith"
)

// Null checks.
const (
	OpIsNull  Operator = "isNull"
	OpNotNull Operator = "notNull"
)

// Date-domain operators. These exist only in widget configuration; the
// compiler rewrites them via MapDateOperator before emitting SQL.
const (
	OpBefore     Operator = "before"
	OpBeforeOrOn Operator = "beforeOrOn"
	OpAfter      Operator = "after"
	OpAfterOrOn  Operator = "afterOrOn"
	OpDuring     Operator = "during"
)

// JSON operators.
const (
	OpJSONContains Operator = "jsonContains"
	OpHasKey       Operator = "hasKey"
)

// DataType is a column's declared type, lower-cased.
type DataType string

const (
	TypeText        DataType = "text"
	TypeVarchar     DataType = "varchar"
	TypeInteger     DataType = "integer"
	TypeBigint      DataType = "bigint"
	TypeNumeric     DataType = "numeric"
	TypeReal        DataType = "real"
	TypeDouble      DataType = "double"
	TypeDecimal     DataType = "decimal"
	TypeBoolean     DataType = "boolean"
	TypeDate        DataType = "date"
	TypeTimestamp   DataType = "timestamp"
	TypeTimestampTZ DataType = "timestamptz"
	TypeUUID        DataType = "uuid"
	TypeEnum        DataType = "enum"
	TypeJSON        DataType = "json"
	TypeJSONB       DataType = "jsonb"
)

var comparisonOps = []Operator{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte}

var textOps = []Operator{
	OpEq, OpNeq, OpContains, OpNotContains, OpStartsWith, OpEndsWith,
	OpIn, OpNotIn, OpIsNull, OpNotNull,
}

var numericOps = []Operator{
	OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
	OpBetween, OpNotBetween, OpIn, OpNotIn, OpIsNull, OpNotNull,
}

var dateOps = []Operator{
	OpEq, OpNeq, OpBefore, OpBeforeOrOn, OpAfter, OpAfterOrOn, OpDuring,
	OpBetween, OpNotBetween, OpIsNull, OpNotNull,
}

var boolOps = []Operator{OpEq, OpNeq, OpIsNull, OpNotNull}

var uuidOps = []Operator{OpEq, OpNeq, OpIn, OpNotIn, OpIsNull, OpNotNull}

var enumOps = []Operator{OpEq, OpNeq, OpIn, OpNotIn, OpIsNull, OpNotNull}

var jsonOps = []Operator{OpJSONContains, OpHasKey, OpIsNull, OpNotNull}

// fallbackOps is the minimal set applied to unknown data types.
var fallbackOps = []Operator{OpEq, OpNeq, OpIsNull, OpNotNull}

// OperatorsFor returns the legal operator set for a declared data type.
// Unknown types get the minimal {eq, neq, isNull, notNull} set.
func OperatorsFor(dt DataType) []Operator {
	var ops []Operator
	switch {
	case IsTextual(dt):
		ops = textOps
	case IsNumeric(dt):
		ops = numericOps
	case IsDateLike(dt):
		ops = dateOps
	case dt == TypeBoolean:
		ops = boolOps
	case dt == TypeUUID:
		ops = uuidOps
	case dt == TypeEnum:
		ops = enumOps
	case dt == TypeJSON || dt == TypeJSONB:
		ops = jsonOps
	default:
		ops = fallbackOps
	}
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// Allows reports whether op is legal for columns of type dt.
func Allows(dt DataType, op Operator) bool {
	for _, o := range OperatorsFor(dt) {
		if o == op {
			return true
		}
	}
	return false
}

// IsNumeric reports whether dt is in the numeric type family. Aggregations
// other than count require a numeric metric column.
func IsNumeric(dt DataType) bool {
	switch dt {
	case TypeInteger, TypeBigint, TypeNumeric, TypeReal, TypeDouble, TypeDecimal:
		return true
	}
	return false
}

// IsDateLike reports whether dt carries calendar semantics.
func IsDateLike(dt DataType) bool {
	switch dt {
	case TypeDate, TypeTimestamp, TypeTimestampTZ:
		return true
	}
	return false
}

// IsTextual reports whether dt is a text type.
func IsTextual(dt DataType) bool {
	return dt == TypeText || dt == TypeVarchar
}

// IsRangeOperator reports whether op compares against a range of values
// rather than a single operand.
func IsRangeOperator(op Operator) bool {
	return op == OpBetween || op == OpNotBetween || op == OpDuring
}

// IsDateOperator reports whether op belongs to the date-only domain.
func IsDateOperator(op Operator) bool {
	switch op {
	case OpBefore, OpBeforeOrOn, OpAfter, OpAfterOrOn, OpDuring:
		return true
	}
	return false
}

// NeedsNoOperand reports whether op takes no value (null checks).
func NeedsNoOperand(op Operator) bool {
	return op == OpIsNull || op == OpNotNull
}

// MapDateOperator rewrites a date-domain operator onto the comparison domain:
// before becomes lt, during becomes eq, and so on. Operators outside the date
// domain pass through unchanged. The during/eq mapping relies on the filter
// compiler's date-equality widening, which turns eq on a date column into a
// full-day BETWEEN.
func MapDateOperator(op Operator) Operator {
	switch op {
	case OpBefore:
		return OpLt
	case OpBeforeOrOn:
		return OpLte
	case OpAfter:
		return OpGt
	case OpAfterOrOn:
		return OpGte
	case OpDuring:
		return OpEq
	default:
		return op
	}
}
