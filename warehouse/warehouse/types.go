package warehouse

import (
	"fmt"
	"regexp"
	"strings"
)

// Row is one flat record of a query result, keyed by column name.
type Row map[string]any

// Table is a query result: column names in select order and the rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records returns the rows, never nil, so an empty result encodes as [].
func (t *Table) Records() []Row {
	if t == nil || t.Rows == nil {
		return []Row{}
	}
	return t.Rows
}

// Param is a named query parameter, referenced in SQL as @Name.
type Param struct {
	Name  string
	Value any
}

// Statement is a query ready to run.
type Statement struct {
	Name    string   // short label used in logs
	SQL     string
	Params  []Param
	Columns []string // output columns the query selects, when fixed
}

// Param returns the value of the named parameter.
func (s Statement) Param(name string) (any, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Field is one column of a table schema.
type Field struct {
	Name string
	Type string
}

// TableRef is a fully qualified project.dataset.table name.
type TableRef struct {
	ProjectID string
	DatasetID string
	TableID   string
}

var (
	projectPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)
	namePattern    = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// ParseTableRef parses "project.dataset.table".
func ParseTableRef(s string) (TableRef, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return TableRef{}, fmt.Errorf("table %q: expected project.dataset.table", s)
	}
	ref := TableRef{ProjectID: parts[0], DatasetID: parts[1], TableID: parts[2]}
	if !projectPattern.MatchString(ref.ProjectID) {
		return TableRef{}, fmt.Errorf("table %q: invalid project id %q", s, ref.ProjectID)
	}
	if !namePattern.MatchString(ref.DatasetID) || !namePattern.MatchString(ref.TableID) {
		return TableRef{}, fmt.Errorf("table %q: invalid dataset or table name", s)
	}
	return ref, nil
}

// ParseDatasetRef parses "project.dataset" and returns a ref with an empty TableID.
func ParseDatasetRef(s string) (TableRef, error) {
	project, dataset, ok := strings.Cut(s, ".")
	if !ok || strings.Contains(dataset, ".") {
		return TableRef{}, fmt.Errorf("dataset %q: expected project.dataset", s)
	}
	if !projectPattern.MatchString(project) || !namePattern.MatchString(dataset) {
		return TableRef{}, fmt.Errorf("dataset %q: invalid name", s)
	}
	return TableRef{ProjectID: project, DatasetID: dataset}, nil
}

func (r TableRef) String() string {
	if r.TableID == "" {
		return r.ProjectID + "." + r.DatasetID
	}
	return r.ProjectID + "." + r.DatasetID + "." + r.TableID
}
