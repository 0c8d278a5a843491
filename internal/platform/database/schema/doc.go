// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema names every table and column of the LifeQuest database.

Stores build their SQL from these definitions instead of repeating string
literals, so a renamed column is a one-line change checked by the compiler.
The authoritative DDL lives in data/migrations.
*/
package schema

import "strings"

// List joins column names for a SELECT or INSERT column list.
func List(columns []string) string {
	return strings.Join(columns, ", ")
}

// Qualified prefixes each column with a table alias.
func Qualified(alias string, columns []string) string {
	qualified := make([]string, len(columns))
	for index, column := range columns {
		qualified[index] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}
