package regions

import (
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/fragility/schema"
	"github.com/jmoiron/sqlx"
)

// AttributesTable stores one row per (region, domain, attribute).
const AttributesTable = "region_attributes"

type attributeRow struct {
	RegionID  string  `db:"region_id"`
	Domain    string  `db:"domain"`
	Attribute string  `db:"attribute"`
	Value     float64 `db:"attr_value"`
}

// SQLSource serves region records from a relational table.
type SQLSource struct {
	db      *sqlx.DB
	backend schema.DatabaseBackend
}

// NewSQLSource wraps an open database and makes sure the attributes table exists.
func NewSQLSource(ctx context.Context, db *sqlx.DB, backend schema.DatabaseBackend) (*SQLSource, error) {
	if _, err := db.ExecContext(ctx, createAttributesQuery(backend)); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", AttributesTable, err)
	}
	return &SQLSource{db: db, backend: backend}, nil
}

func createAttributesQuery(backend schema.DatabaseBackend) string {
	valueType := "REAL"
	switch backend {
	case schema.MySQLBackend:
		valueType = "DOUBLE"
	case schema.PostgreSQLBackend:
		valueType = "DOUBLE PRECISION"
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			region_id VARCHAR(128) NOT NULL,
			domain VARCHAR(32) NOT NULL,
			attribute VARCHAR(64) NOT NULL,
			attr_value %s NOT NULL,
			PRIMARY KEY (region_id, domain, attribute)
		);
	`, AttributesTable, valueType)
}

// Load returns the four records of a region. A region missing from any domain is not found.
func (s *SQLSource) Load(ctx context.Context, regionID string) (schema.RegionData, error) {
	var rows []attributeRow
	query := s.db.Rebind(fmt.Sprintf(
		"SELECT region_id, domain, attribute, attr_value FROM %s WHERE region_id = ?", AttributesTable))
	if err := s.db.SelectContext(ctx, &rows, query, regionID); err != nil {
		return schema.RegionData{}, fmt.Errorf("failed to query region %s: %w", regionID, err)
	}

	records := make(map[schema.Domain]schema.Record)
	for _, row := range rows {
		d := schema.Domain(row.Domain)
		if records[d] == nil {
			records[d] = schema.Record{}
		}
		records[d][row.Attribute] = row.Value
	}

	data := schema.RegionData{RegionID: regionID}
	for _, domain := range schema.RecordDomains {
		rec, ok := records[domain]
		if !ok {
			return schema.RegionData{}, &schema.RegionNotFoundError{RegionID: regionID}
		}
		setRecord(&data, domain, rec)
	}
	return data, nil
}

// List returns the ids present in every domain, sorted.
func (s *SQLSource) List(ctx context.Context) ([]string, error) {
	var ids []string
	query := fmt.Sprintf(
		"SELECT region_id FROM %s GROUP BY region_id HAVING COUNT(DISTINCT domain) = %d",
		AttributesTable, len(schema.RecordDomains))
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// Seed copies every table into the database, replacing existing values.
func (s *SQLSource) Seed(ctx context.Context, tables map[schema.Domain]map[string]schema.Record) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del := tx.Rebind(fmt.Sprintf(
		"DELETE FROM %s WHERE region_id = ? AND domain = ? AND attribute = ?", AttributesTable))
	ins := fmt.Sprintf(
		"INSERT INTO %s (region_id, domain, attribute, attr_value) VALUES (:region_id, :domain, :attribute, :attr_value)",
		AttributesTable)

	count := 0
	for _, domain := range schema.RecordDomains {
		table := tables[domain]
		for _, id := range sortedKeys(table) {
			rec := table[id]
			for _, attr := range sortedKeys(rec) {
				row := attributeRow{RegionID: id, Domain: string(domain), Attribute: attr, Value: rec[attr]}
				if _, err := tx.ExecContext(ctx, del, row.RegionID, row.Domain, row.Attribute); err != nil {
					return 0, fmt.Errorf("failed to replace %s/%s/%s: %w", id, domain, attr, err)
				}
				if _, err := tx.NamedExecContext(ctx, ins, row); err != nil {
					return 0, fmt.Errorf("failed to insert %s/%s/%s: %w", id, domain, attr, err)
				}
				count++
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return count, nil
}

// SeedFromCSV loads every CSV table and writes it into the database.
func (s *SQLSource) SeedFromCSV(ctx context.Context, src *CSVSource) (int, error) {
	tables, err := src.Tables()
	if err != nil {
		return 0, err
	}
	return s.Seed(ctx, tables)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
