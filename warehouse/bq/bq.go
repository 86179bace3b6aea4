package bq

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"nyctaxi/warehouse/warehouse"
)

// Client runs statements on BigQuery. Credentials come from the environment
// (GOOGLE_APPLICATION_CREDENTIALS or gcloud application-default login).
type Client struct {
	client *bigquery.Client
}

// NewClient creates a BigQuery client billed to projectID.
func NewClient(ctx context.Context, projectID string) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP project id is empty")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client for project %s: %w", projectID, err)
	}
	return &Client{client: client}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

// RunQuery runs stmt and reads every row, normalizing values to plain Go types.
func (c *Client) RunQuery(ctx context.Context, stmt warehouse.Statement) (*warehouse.Table, error) {
	q := c.client.Query(stmt.SQL)
	for _, p := range stmt.Params {
		q.Parameters = append(q.Parameters, bigquery.QueryParameter{Name: p.Name, Value: p.Value})
	}

	start := time.Now()
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", stmt.Name, err)
	}

	table := &warehouse.Table{Columns: stmt.Columns, Rows: []warehouse.Row{}}
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: read row %d: %w", stmt.Name, len(table.Rows), err)
		}
		row, err := toRow(it.Schema, values)
		if err != nil {
			return nil, fmt.Errorf("query %s: row %d: %w", stmt.Name, len(table.Rows), err)
		}
		table.Rows = append(table.Rows, row)
	}
	if len(it.Schema) > 0 {
		table.Columns = columnNames(it.Schema)
	}

	log.Printf("BigQuery %s returned %d rows in %s", stmt.Name, len(table.Rows), time.Since(start).Round(time.Millisecond))
	return table, nil
}

// ListTables lists the tables of a dataset, which may live in another project.
func (c *Client) ListTables(ctx context.Context, dataset warehouse.TableRef) ([]warehouse.TableRef, error) {
	it := c.client.DatasetInProject(dataset.ProjectID, dataset.DatasetID).Tables(ctx)
	var refs []warehouse.TableRef
	for {
		t, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list tables of %s: %w", dataset, err)
		}
		refs = append(refs, warehouse.TableRef{ProjectID: t.ProjectID, DatasetID: t.DatasetID, TableID: t.TableID})
	}
	return refs, nil
}

// TableSchema returns the top level fields of a table.
func (c *Client) TableSchema(ctx context.Context, table warehouse.TableRef) ([]warehouse.Field, error) {
	md, err := c.client.DatasetInProject(table.ProjectID, table.DatasetID).Table(table.TableID).Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata of %s: %w", table, err)
	}
	fields := make([]warehouse.Field, 0, len(md.Schema))
	for _, f := range md.Schema {
		fields = append(fields, warehouse.Field{Name: f.Name, Type: string(f.Type)})
	}
	return fields, nil
}

func columnNames(schema bigquery.Schema) []string {
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}

func toRow(schema bigquery.Schema, values []bigquery.Value) (warehouse.Row, error) {
	if len(schema) != len(values) {
		return nil, fmt.Errorf("schema has %d fields but row has %d values", len(schema), len(values))
	}
	row := make(warehouse.Row, len(values))
	for i, f := range schema {
		v, err := normalizeValue(values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Name, err)
		}
		row[f.Name] = v
	}
	return row, nil
}
