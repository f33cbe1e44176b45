// Command tinyheap is a minimal resolved-request collaborator: a REPL that
// parses a tiny non-SQL grammar and drives the storage/catalog core through
// exactly the operations section 6 of the design documents as the
// "collaborator interface" (init_database, heap_create, get_oid_relation,
// get_attributes_from_relation, heap_insert, heap_scan, flush_all_buffers).
// It is not, and is not meant to become, a SQL engine.
package main

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var tinyLexer = lexer.MustSimple([]lexer.Rule{
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z_0-9]*`},
	{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Punct", Pattern: `[,()*;]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Type is a column type: a fixed-width int, or a varchar with a declared
// byte length.
type Type struct {
	Int     bool `@"int"`
	Varchar int  `| "varchar" "(" @Int ")"`
}

// ColumnDef is one column in a CREATE TABLE statement.
type ColumnDef struct {
	Name string `@Ident`
	Type *Type  `@@`
}

// CreateDatabase is "create database <name>".
type CreateDatabase struct {
	Name string `"create" "database" @Ident`
}

// CreateTable is "create table <name> (<col> <type>, ...)".
type CreateTable struct {
	Name    string      `"create" "table" @Ident`
	Columns []ColumnDef `"(" @@ ("," @@)* ")"`
}

// Literal is a value in an INSERT statement: an integer or a quoted string.
type Literal struct {
	Int *int64  `@Int`
	Str *string `| @String`
}

// Insert is "insert into <table> values (<literal>, ...)".
type Insert struct {
	Table  string    `"insert" "into" @Ident`
	Values []Literal `"values" "(" @@ ("," @@)* ")"`
}

// Select is "select * from <table>".
type Select struct {
	Table string `"select" "*" "from" @Ident`
}

// Statement is one parsed line of input.
type Statement struct {
	CreateDatabase *CreateDatabase `@@`
	CreateTable    *CreateTable    `| @@`
	Insert         *Insert         `| @@`
	Select         *Select         `| @@`
}

var parser = participle.MustBuild(&Statement{},
	participle.Lexer(tinyLexer),
	participle.Unquote("String"),
)

// ParseStatement parses one line of the tiny grammar.
func ParseStatement(line string) (*Statement, error) {
	stmt := &Statement{}
	if err := parser.ParseString("", line, stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}
