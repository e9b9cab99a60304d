package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperatorsFor_TextColumns(t *testing.T) {
	ops := OperatorsFor(TypeText)

	assert.Contains(t, ops, OpContains)
	assert.Contains(t, ops, OpStartsWith)
	assert.Contains(t, ops, OpEndsWith)
	assert.Contains(t, ops, OpIn)
	assert.NotContains(t, ops, OpGt)
	assert.NotContains(t, ops, OpBefore)
}

func TestOperatorsFor_NumericColumns(t *testing.T) {
	for _, dt := range []DataType{TypeInteger, TypeBigint, TypeNumeric, TypeReal, TypeDouble, TypeDecimal} {
		ops := OperatorsFor(dt)
		assert.Contains(t, ops, OpBetween, "type %s", dt)
		assert.Contains(t, ops, OpGte, "type %s", dt)
		assert.NotContains(t, ops, OpContains, "type %s", dt)
	}
}

func TestOperatorsFor_DateColumns(t *testing.T) {
	ops := OperatorsFor(TypeTimestampTZ)

	assert.Contains(t, ops, OpBefore)
	assert.Contains(t, ops, OpDuring)
	assert.Contains(t, ops, OpBetween)
	assert.NotContains(t, ops, OpContains)
}

func TestOperatorsFor_UnknownTypeFallsBack(t *testing.T) {
	ops := OperatorsFor(DataType("geometry"))

	assert.ElementsMatch(t, []Operator{OpEq, OpNeq, OpIsNull, OpNotNull}, ops)
}

func TestOperatorsFor_ReturnsCopy(t *testing.T) {
	ops := OperatorsFor(TypeBoolean)
	ops[0] = Operator("mutated")

	assert.Equal(t, OpEq, OperatorsFor(TypeBoolean)[0])
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(TypeText, OpContains))
	assert.True(t, Allows(TypeDate, OpDuring))
	assert.False(t, Allows(TypeBoolean, OpGt))
	assert.False(t, Allows(TypeJSONB, OpContains))
	assert.True(t, Allows(TypeJSONB, OpJSONContains))
}

func TestMapDateOperator(t *testing.T) {
	testCases := []struct {
		in   Operator
		want Operator
	}{
		{OpBefore, OpLt},
		{OpBeforeOrOn, OpLte},
		{OpAfter, OpGt},
		{OpAfterOrOn, OpGte},
		{OpDuring, OpEq},
		{OpEq, OpEq},       // non-date operators pass through
		{OpBetween, OpBetween},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, MapDateOperator(tc.in), "map %s", tc.in)
	}
}

func TestIsRangeOperator(t *testing.T) {
	assert.True(t, IsRangeOperator(OpBetween))
	assert.True(t, IsRangeOperator(OpNotBetween))
	assert.True(t, IsRangeOperator(OpDuring))
	assert.False(t, IsRangeOperator(OpEq))
	assert.False(t, IsRangeOperator(OpIn))
}

func TestTypeClassification(t *testing.T) {
	assert.True(t, IsNumeric(TypeDecimal))
	assert.False(t, IsNumeric(TypeText))
	assert.True(t, IsDateLike(TypeDate))
	assert.False(t, IsDateLike(TypeUUID))
	assert.True(t, IsTextual(TypeVarchar))
	assert.False(t, IsTextual(TypeEnum))
}

func TestNeedsNoOperand(t *testing.T) {
	assert.True(t, NeedsNoOperand(OpIsNull))
	assert.True(t, NeedsNoOperand(OpNotNull))
	assert.False(t, NeedsNoOperand(OpEq))
}
