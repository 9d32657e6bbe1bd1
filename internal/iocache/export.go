package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/parquet"
)

// ExecuteHistoryExport writes every stored run and assessment to two Parquet files
// named after outputFile. Progress is reported to w.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no assessment history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total assessments: %d\n", status.TotalAssessments)

	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	assessments, err := store.ListAssessments(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve assessments: %w", err)
	}

	runRows := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runRows), runsFile)

	assessmentRows := parquet.ConvertAssessmentRecords(assessments)
	assessmentsFile := outputFile + ".assessments.parquet"
	if err := parquet.WriteAssessmentsParquet(assessmentRows, assessmentsFile); err != nil {
		return fmt.Errorf("failed to write assessments: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d assessments to: %s\n", len(assessmentRows), assessmentsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with DuckDB, Pandas or Spark.")
	return nil
}
