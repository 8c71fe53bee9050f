package driven

import (
	"context"

	"github.com/alorle/iptv-checker/internal/port/driven"
	"github.com/alorle/iptv-checker/internal/report"
)

// DefaultReportFile is where the plain-text report is written by default.
const DefaultReportFile = "telegram_report.txt"

// ReportFileNotifier implements the Notifier port by saving the report,
// stripped of Markdown, to a local file.
type ReportFileNotifier struct {
	path string
}

func NewReportFileNotifier(path string) *ReportFileNotifier {
	if path == "" {
		path = DefaultReportFile
	}
	return &ReportFileNotifier{path: path}
}

func (n *ReportFileNotifier) Name() string { return "file" }

func (n *ReportFileNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(n.path, []byte(report.PlainText(text)), 0o644)
}

var _ driven.Notifier = (*ReportFileNotifier)(nil)
