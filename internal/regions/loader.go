package regions

import (
	"context"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/fragility/schema"
)

//go:embed data/*.csv
var defaultData embed.FS

// RegionIDColumn is the key column of every dataset.
const RegionIDColumn = "region_id"

// DatasetFile returns the CSV file name holding a domain's records.
func DatasetFile(d schema.Domain) string {
	return string(d) + ".csv"
}

// CSVSource reads the four domain tables from CSV files keyed by region_id.
type CSVSource struct {
	fsys fs.FS
}

// NewCSVSource reads tables from dir. An empty dir means the embedded dataset.
func NewCSVSource(dir string) *CSVSource {
	if dir == "" {
		sub, _ := fs.Sub(defaultData, "data")
		return &CSVSource{fsys: sub}
	}
	return &CSVSource{fsys: os.DirFS(dir)}
}

// NewCSVSourceFS reads tables from an arbitrary filesystem.
func NewCSVSourceFS(fsys fs.FS) *CSVSource {
	return &CSVSource{fsys: fsys}
}

// Load returns the four records of a region.
func (s *CSVSource) Load(ctx context.Context, regionID string) (schema.RegionData, error) {
	data := schema.RegionData{RegionID: regionID}
	for _, domain := range schema.RecordDomains {
		if err := ctx.Err(); err != nil {
			return schema.RegionData{}, err
		}
		table, err := s.readTable(domain)
		if err != nil {
			return schema.RegionData{}, err
		}
		rec, ok := table[regionID]
		if !ok {
			return schema.RegionData{}, &schema.RegionNotFoundError{RegionID: regionID}
		}
		setRecord(&data, domain, rec)
	}
	return data, nil
}

// List returns the region ids present in every table.
func (s *CSVSource) List(ctx context.Context) ([]string, error) {
	counts := make(map[string]int)
	for _, domain := range schema.RecordDomains {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := s.readTable(domain)
		if err != nil {
			return nil, err
		}
		for id := range table {
			counts[id]++
		}
	}
	var ids []string
	for id, n := range counts {
		if n == len(schema.RecordDomains) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Tables returns every table keyed by domain. The SQL source seeds from it.
func (s *CSVSource) Tables() (map[schema.Domain]map[string]schema.Record, error) {
	out := make(map[schema.Domain]map[string]schema.Record, len(schema.RecordDomains))
	for _, domain := range schema.RecordDomains {
		table, err := s.readTable(domain)
		if err != nil {
			return nil, err
		}
		out[domain] = table
	}
	return out, nil
}

func (s *CSVSource) readTable(domain schema.Domain) (map[string]schema.Record, error) {
	file := DatasetFile(domain)
	f, err := s.fsys.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("missing dataset: %s", file)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer func() { _ = f.Close() }()
	return parseTable(file, f)
}

// parseTable reads a CSV table whose first column set includes region_id and
// every other column is numeric. The first row for a region wins.
func parseTable(file string, r io.Reader) (map[string]schema.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty dataset", file)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", file, err)
	}
	idCol := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == RegionIDColumn {
			idCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%s: missing %s column", file, RegionIDColumn)
	}

	table := make(map[string]schema.Record)
	for row := 2; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", file, row, err)
		}
		id := strings.TrimSpace(fields[idCol])
		if _, seen := table[id]; seen {
			continue
		}
		rec := make(schema.Record, len(header)-1)
		for i, cell := range fields {
			if i == idCol {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%s: column %s row %d: invalid number %q", file, header[i], row, cell)
			}
			rec[header[i]] = v
		}
		table[id] = rec
	}
	return table, nil
}

func setRecord(data *schema.RegionData, domain schema.Domain, rec schema.Record) {
	switch domain {
	case schema.TerrainDomain:
		data.Terrain = rec
	case schema.PopulationDomain:
		data.Population = rec
	case schema.WeatherDomain:
		data.Weather = rec
	case schema.NetworkDomain:
		data.Network = rec
	}
}
