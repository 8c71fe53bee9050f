package driven

import (
	port "github.com/alorle/iptv-checker/internal/port/driven"
)

// Compile-time checks that the adapters implement their ports
var (
	_ port.Prober            = (*HTTPProber)(nil)
	_ port.SourceFetcher     = (*HTTPSource)(nil)
	_ port.SourceFetcher     = (*FileSource)(nil)
	_ port.PlaylistWriter    = (*PlaylistFileWriter)(nil)
	_ port.HistoryRepository = (*HistoryJSONRepository)(nil)
	_ port.HistoryRepository = (*HistoryBoltDBRepository)(nil)
	_ port.Notifier          = (*TelegramNotifier)(nil)
	_ port.Notifier          = (*ReportFileNotifier)(nil)
	_ port.Discoverer        = (*HTMLDiscoverer)(nil)
)
