package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ubq-audit/tally/internal/log"
	"github.com/ubq-audit/tally/internal/model"
	"golang.org/x/sync/errgroup"
)

// Writer renders report artifacts into an output directory.
type Writer struct {
	dir    string
	format Format
}

// NewWriter creates a writer. An empty dir means the current directory.
func NewWriter(dir string, format Format) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir, format: format}
}

// Write renders the combined report: three CSV artifacts plus the
// manual-review JSON dump, or a single JSON document in JSON mode.
// Artifacts are independent, so they are written concurrently.
func (w *Writer) Write(report *model.Report) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", w.dir, err)
	}

	if w.format == FormatJSON {
		return w.writeJSONReport("report.json", report)
	}

	var g errgroup.Group
	g.Go(func() error {
		return w.writeArtifact("contributors.csv", func(buf *bytes.Buffer) error {
			return writeContributorsCSV(buf, report.Contributors)
		})
	})
	g.Go(func() error {
		return w.writeArtifact("all_payments.csv", func(buf *bytes.Buffer) error {
			return writePaymentsCSV(buf, report.AllPayments, report.NoAssigneePayments)
		})
	})
	g.Go(func() error {
		return w.writeArtifact("no_payments.csv", func(buf *bytes.Buffer) error {
			return writeNoPaymentsCSV(buf, report.NoPayments)
		})
	})
	g.Go(func() error {
		return w.writeManualChecks("manual-checks-required.json", report.NoAssigneePayments)
	})
	return g.Wait()
}

// WriteRepo renders one repository's artifacts with the repository name as
// file prefix (per-repository output mode).
func (w *Writer) WriteRepo(repoName string, report *model.Report) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", w.dir, err)
	}

	if w.format == FormatJSON {
		return w.writeJSONReport(repoName+"-report.json", report)
	}

	var g errgroup.Group
	g.Go(func() error {
		return w.writeArtifact(repoName+"-raw-balances.csv", func(buf *bytes.Buffer) error {
			return writeContributorsCSV(buf, report.Contributors)
		})
	})
	g.Go(func() error {
		return w.writeArtifact(repoName+"-all-payments.csv", func(buf *bytes.Buffer) error {
			return writePaymentsCSV(buf, report.AllPayments, report.NoAssigneePayments)
		})
	})
	g.Go(func() error {
		return w.writeArtifact(repoName+"-no-payments.csv", func(buf *bytes.Buffer) error {
			return writeNoPaymentsCSV(buf, report.NoPayments)
		})
	})
	if len(report.NoAssigneePayments) > 0 {
		g.Go(func() error {
			return w.writeManualChecks(repoName+"-manual-checks-required.json", report.NoAssigneePayments)
		})
	}
	return g.Wait()
}

// writeArtifact renders into a buffer first so a failed render never leaves
// a truncated file behind.
func (w *Writer) writeArtifact(name string, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	log.Info("wrote artifact", "path", path)
	return nil
}

// writeManualChecks dumps the manual-review claims sorted by issue number.
func (w *Writer) writeManualChecks(name string, claims []model.PaymentClaim) error {
	sorted := make([]model.PaymentClaim, len(claims))
	copy(sorted, claims)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IssueNumber < sorted[j].IssueNumber
	})

	return w.writeArtifact(name, func(buf *bytes.Buffer) error {
		enc := json.NewEncoder(buf)
		enc.SetIndent("", "  ")
		return enc.Encode(sorted)
	})
}

func (w *Writer) writeJSONReport(name string, report *model.Report) error {
	return w.writeArtifact(name, func(buf *bytes.Buffer) error {
		enc := json.NewEncoder(buf)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	})
}
