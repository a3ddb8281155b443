// Package dberrors defines the fixed error-kind taxonomy raised by the
// parser, analyzer and executor, and renders each kind to the exact
// user-visible message text the REPL must print.
package dberrors

import "fmt"

// Kind identifies one of the named error kinds from the specification.
type Kind int

const (
	// Parser
	SyntaxError Kind = iota

	// CREATE TABLE
	TableExistence
	CharLength
	DuplicateColumnDef
	DuplicatePrimaryKeyDef
	NonExistingColumnDef
	ReferenceTableSelf
	ReferenceTableExistence
	ReferenceColumnExistence
	ReferenceType
	ReferenceNonPrimaryKey
	ReferenceColumnCountMismatch

	// DROP TABLE
	NoSuchTable
	DropReferencedTable

	// INSERT
	InsertColumnExistence
	InsertTableDuplicateColumn
	InsertColumnNonNullable
	InsertTypeMismatch
	InsertDuplicatePrimaryKey
	InsertReferentialIntegrity

	// WHERE (shared by SELECT/DELETE)
	WhereTableNotSpecified
	WhereColumnNotExist
	WhereAmbiguousReference
	WhereIncomparable

	// SELECT
	SelectTableExistence
	SelectColumnResolve
)

// Error is a semantic or syntax error carrying the formatting argument (if
// any) required by its message template.
type Error struct {
	Kind Kind
	Arg  string
}

func New(kind Kind) *Error               { return &Error{Kind: kind} }
func NewWithArg(kind Kind, arg string) *Error { return &Error{Kind: kind, Arg: arg} }

func (e *Error) Error() string {
	return e.Message()
}

// Message renders the error to the exact fixed or parameterized wording
// from the specification's message catalog.
func (e *Error) Message() string {
	switch e.Kind {
	case SyntaxError:
		return "Syntax Error"
	case TableExistence:
		return "Create table has failed: table with the same name already exists"
	case CharLength:
		return "Char length should be over 0"
	case DuplicateColumnDef:
		return "Create table has failed: column definition is duplicated"
	case DuplicatePrimaryKeyDef:
		return "Create table has failed: primary key definition is duplicated"
	case NonExistingColumnDef:
		return fmt.Sprintf("Create table has failed: '%s' does not exist in column definition", e.Arg)
	case ReferenceTableSelf:
		return "Create table has failed: foreign key cannot reference its own table"
	case ReferenceTableExistence:
		return "Create table has failed: foreign key references non existing table"
	case ReferenceColumnExistence:
		return "Create table has failed: foreign key references non existing column"
	case ReferenceType:
		return "Create table has failed: foreign key references wrong type"
	case ReferenceNonPrimaryKey:
		return "Create table has failed: foreign key references non primary key column"
	case ReferenceColumnCountMismatch:
		return "Create table has failed: number of referencing columns does not match number of referenced columns"
	case NoSuchTable:
		return "No such table"
	case DropReferencedTable:
		return fmt.Sprintf("Drop table has failed: '%s' is referenced by other table", e.Arg)
	case InsertColumnExistence:
		return fmt.Sprintf("Insertion has failed: '%s' does not exist", e.Arg)
	case InsertTableDuplicateColumn:
		return "Insert has failed: column name is duplicated"
	case InsertColumnNonNullable:
		return fmt.Sprintf("Insertion has failed: '%s' is not nullable", e.Arg)
	case InsertTypeMismatch:
		return "Insertion has failed: Types are not matched"
	case InsertDuplicatePrimaryKey:
		return "Insertion has failed: Primary key duplication"
	case InsertReferentialIntegrity:
		return "Insertion has failed: Referential integrity violation"
	case WhereTableNotSpecified:
		return "Where clause trying to reference tables which are not specified"
	case WhereColumnNotExist:
		return "Where clause trying to reference non existing column"
	case WhereAmbiguousReference:
		return "Where clause contains ambiguous reference"
	case WhereIncomparable:
		return "Where clause trying to compare incomparable values"
	case SelectTableExistence:
		return fmt.Sprintf("Selection has failed: '%s' does not exist", e.Arg)
	case SelectColumnResolve:
		return fmt.Sprintf("Selection has failed: fail to resolve '%s'", e.Arg)
	default:
		return "Syntax Error"
	}
}
