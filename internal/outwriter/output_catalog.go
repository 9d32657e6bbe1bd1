package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// FeatureRow is one entry of the feature schema listing.
type FeatureRow struct {
	Index      int            `json:"index"`
	Name       schema.Feature `json:"name"`
	Domain     schema.Domain  `json:"domain"`
	Source     string         `json:"source"`
	Importance float64        `json:"importance"`
}

// BuildFeatureRows joins the schema with the model importances.
func BuildFeatureRows(specs []schema.FeatureSpec, importance map[string]float64) []FeatureRow {
	rows := make([]FeatureRow, len(specs))
	for i, s := range specs {
		rows[i] = FeatureRow{
			Index:      i,
			Name:       s.Name,
			Domain:     s.Domain,
			Source:     s.Source,
			Importance: importance[string(s.Name)],
		}
	}
	return rows
}

// PrintScenarios outputs the scenario catalog.
func PrintScenarios(catalog []schema.ScenarioDefinition, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, catalog)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"name", "description", "modifiers"}, func(cw *csv.Writer) error {
				for _, sc := range catalog {
					if err := cw.Write([]string{sc.Name, sc.Description, formatFactors(sc.Modifiers)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for the scenario catalog")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Scenario", "Description", "Modifiers"})
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignLeft
			})
			textWidth := GetMaxTableTextWidth(cfg, 60)
			data := make([][]string, 0, len(catalog))
			for _, sc := range catalog {
				data = append(data, []string{sc.Name, contract.TruncateText(sc.Description, textWidth), formatFactors(sc.Modifiers)})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		}, "Wrote table")
	}
}

// PrintSchema outputs the ordered feature schema with the model's importances.
func PrintSchema(specs []schema.FeatureSpec, importance map[string]float64, cfg *contract.Config) error {
	rows := BuildFeatureRows(specs, importance)
	fmtFloat, intFmt := createFormatters(max(cfg.Precision, 4))

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"index", "name", "domain", "source", "importance"}, func(cw *csv.Writer) error {
				for _, r := range rows {
					rec := []string{fmt.Sprintf(intFmt, r.Index), string(r.Name), string(r.Domain), r.Source, fmtFloat(r.Importance)}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for the feature schema")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header([]string{"#", "Feature", "Domain", "Source", "Importance"})
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignRight
			})
			data := make([][]string, 0, len(rows))
			for _, r := range rows {
				data = append(data, []string{strconv.Itoa(r.Index), string(r.Name), string(r.Domain), r.Source, fmtFloat(r.Importance)})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		}, "Wrote table")
	}
}

// PrintRegions outputs the region ids known to the data source.
func PrintRegions(ids []string, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if ids == nil {
				ids = []string{}
			}
			return writeJSON(w, ids)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"region_id"}, func(cw *csv.Writer) error {
				for _, id := range ids {
					if err := cw.Write([]string{id}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for the region list")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, id := range ids {
				if _, err := fmt.Fprintln(w, id); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(w, "%d region(s)\n", len(ids))
			return err
		}, "Wrote list")
	}
}
