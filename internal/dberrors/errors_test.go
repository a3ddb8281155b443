package dberrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedMessages(t *testing.T) {
	assert.Equal(t, "Syntax Error", New(SyntaxError).Error())
	assert.Equal(t, "No such table", New(NoSuchTable).Error())
	assert.Equal(t, "Where clause trying to compare incomparable values", New(WhereIncomparable).Error())
	assert.Equal(t, "Insertion has failed: Primary key duplication", New(InsertDuplicatePrimaryKey).Error())
}

func TestParameterizedMessages(t *testing.T) {
	assert.Equal(t, "Insertion has failed: 'age' does not exist", NewWithArg(InsertColumnExistence, "age").Error())
	assert.Equal(t, "Drop table has failed: 'a' is referenced by other table", NewWithArg(DropReferencedTable, "a").Error())
	assert.Equal(t, "Selection has failed: fail to resolve 'x'", NewWithArg(SelectColumnResolve, "x").Error())
}
