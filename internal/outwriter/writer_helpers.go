package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// formatFactors renders scenario modifiers as "name=x|name=y" in name order.
func formatFactors(factors map[string]float64) string {
	parts := make([]string, 0, len(factors))
	for _, k := range slices.Sorted(maps.Keys(factors)) {
		parts = append(parts, k+"="+strconv.FormatFloat(factors[k], 'f', -1, 64))
	}
	return strings.Join(parts, "|")
}

// labelFuncs returns the class, priority and severity labelers, colored when enabled.
func labelFuncs(useColors bool) (classLabel func(schema.RiskClass) string, priorityLabel func(schema.Priority) string, severityLabel func(float64) string) {
	if useColors {
		return contract.GetClassLabel, contract.GetPriorityLabel, contract.GetColorLabel
	}
	return func(c schema.RiskClass) string { return string(c) },
		func(p schema.Priority) string { return string(p) },
		schema.GetPlainLabel
}
