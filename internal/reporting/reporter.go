// File: internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// Reporter writes journey reports to an output.
type Reporter interface {
	// Write records a single journey report.
	Write(report schemas.JourneyReport) error
	// Close finalizes the report and releases the underlying writer.
	Close() error
}

// nopWriteCloser wraps an io.Writer with a no-op Close, so stdout is never
// closed by a reporter.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error { return nil }

// New creates a reporter for the given format and output path. An empty
// path or "stdout" writes to standard output.
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdout := outputPath == "" || outputPath == "stdout"

	if isStdout {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case "json":
		return newJSONReporter(writer), nil
	case "text":
		return newTextReporter(writer), nil
	default:
		if !isStdout {
			writer.Close()
		}
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// jsonReporter accumulates reports and emits one indented JSON array on
// Close, so a partial run still produces a parseable document.
type jsonReporter struct {
	writer  io.WriteCloser
	reports []schemas.JourneyReport
}

func newJSONReporter(w io.WriteCloser) *jsonReporter {
	return &jsonReporter{writer: w}
}

func (r *jsonReporter) Write(report schemas.JourneyReport) error {
	r.reports = append(r.reports, report)
	return nil
}

func (r *jsonReporter) Close() error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r.reports, "", "  ")
	if err != nil {
		r.writer.Close()
		return fmt.Errorf("marshal run report: %w", err)
	}
	data = append(data, '\n')
	if _, err := r.writer.Write(data); err != nil {
		r.writer.Close()
		return fmt.Errorf("write run report: %w", err)
	}
	return r.writer.Close()
}

// textReporter streams a human-readable summary, one journey per Write.
type textReporter struct {
	writer io.WriteCloser
}

func newTextReporter(w io.WriteCloser) *textReporter {
	return &textReporter{writer: w}
}

func (r *textReporter) Write(report schemas.JourneyReport) error {
	verdict := "PASS"
	if !report.Succeeded {
		verdict = "FAIL"
	}
	if _, err := fmt.Fprintf(r.writer, "%s  %s  (%s, %d steps, run %s)\n",
		verdict, report.Journey, report.Elapsed.Round(time.Millisecond), len(report.Steps), report.RunID); err != nil {
		return err
	}
	for _, step := range report.Steps {
		line := fmt.Sprintf("  [%s] %s", step.Status, step.Name)
		if step.Reason != "" {
			line += ": " + step.Reason
		}
		if _, err := fmt.Fprintln(r.writer, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *textReporter) Close() error { return r.writer.Close() }
