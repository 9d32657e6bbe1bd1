package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/parquet"
	"github.com/huangsam/fragility/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRuns outputs the history runs, newest first.
func PrintRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, parquet.ConvertRunRecords(runs))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunsCSV(w, runs)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunsTable(w, runs, cfg)
		}, "Wrote table")
	}
}

func writeRunsCSV(w io.Writer, runs []schema.RunRecord) error {
	header := []string{"run_id", "start_time", "end_time", "duration_ms", "total_assessments", "config_params"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range runs {
			if err := cw.Write(runFields(r)); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRunsTable(w io.Writer, runs []schema.RunRecord, cfg *contract.Config) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No assessment runs recorded")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Started", "Ended", "Duration (ms)", "Assessments", "Config"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	configWidth := GetMaxTableTextWidth(cfg, 75)
	data := make([][]string, 0, len(runs))
	for _, r := range runs {
		fields := runFields(r)
		fields[5] = contract.TruncateText(fields[5], configWidth)
		data = append(data, fields)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// runFields flattens a run; unfinished runs have empty end and duration.
func runFields(r schema.RunRecord) []string {
	end, duration, params := "", "", ""
	if r.EndTime != nil {
		end = r.EndTime.Format(contract.DateTimeFormat)
	}
	if r.RunDurationMs != nil {
		duration = strconv.Itoa(int(*r.RunDurationMs))
	}
	if r.ConfigParams != nil {
		params = *r.ConfigParams
	}
	return []string{
		strconv.FormatInt(r.RunID, 10),
		r.StartTime.Format(contract.DateTimeFormat),
		end,
		duration,
		strconv.Itoa(int(r.TotalAssessments)),
		params,
	}
}
