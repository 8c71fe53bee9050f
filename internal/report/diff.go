package report

import (
	"sort"
	"time"

	"github.com/alorle/iptv-checker/internal/history"
)

// Mode tells how a source was compared against its history.
type Mode string

const (
	ModeCount Mode = "count"
	ModeNames Mode = "names"
)

// SourceChange is the comparison of one source against its previous record.
// Added and Removed are only populated in ModeNames and always hold the full
// lists; display caps are applied at render time.
type SourceChange struct {
	Source        string
	PreviousCount int
	CurrentCount  int
	Added         []string
	Removed       []string
	Unchanged     int
	Mode          Mode
	HadPrevious   bool
	Failed        bool
}

// Delta is the signed change in channel count.
func (c SourceChange) Delta() int {
	return c.CurrentCount - c.PreviousCount
}

// Changed reports whether the source differs from its previous record.
func (c SourceChange) Changed() bool {
	return c.Delta() != 0 || len(c.Added) > 0 || len(c.Removed) > 0
}

// SourceResult is what a run produced for one source.
type SourceResult struct {
	Source string
	Record history.Record
	Failed bool
}

// ChangeReport aggregates the per-source changes of one run.
type ChangeReport struct {
	Sources     []SourceChange
	GeneratedAt time.Time
}

// Total returns the current channel count across all sources.
func (r ChangeReport) Total() int {
	total := 0
	for _, s := range r.Sources {
		total += s.CurrentCount
	}
	return total
}

// PreviousTotal returns the previous channel count across all sources.
func (r ChangeReport) PreviousTotal() int {
	total := 0
	for _, s := range r.Sources {
		total += s.PreviousCount
	}
	return total
}

// HasPrevious reports whether any source had a stored record.
func (r ChangeReport) HasPrevious() bool {
	for _, s := range r.Sources {
		if s.HadPrevious {
			return true
		}
	}
	return false
}

// Split partitions the sources into changed and unchanged, keeping order.
func (r ChangeReport) Split() (changed, unchanged []SourceChange) {
	for _, s := range r.Sources {
		if s.Changed() {
			changed = append(changed, s)
		} else {
			unchanged = append(unchanged, s)
		}
	}
	return changed, unchanged
}

// Diff compares the current record of a source with its previous one, if
// any. Named-set comparison is used only when both sides carry names; any
// count on either side falls back to count comparison.
func Diff(source string, previous *history.Record, current history.Record) SourceChange {
	change := SourceChange{
		Source:       source,
		CurrentCount: current.Count(),
		Mode:         ModeCount,
		HadPrevious:  previous != nil,
	}

	var prevNames []string
	if previous != nil {
		change.PreviousCount = previous.Count()
		if !previous.IsNamedSet() {
			return change
		}
		prevNames = previous.Names()
	}
	if !current.IsNamedSet() {
		return change
	}

	change.Mode = ModeNames
	curNames := current.Names()

	prevSet := toSet(prevNames)
	curSet := toSet(curNames)

	for _, n := range curNames {
		if _, ok := prevSet[n]; ok {
			change.Unchanged++
		} else {
			change.Added = append(change.Added, n)
		}
	}
	for _, n := range prevNames {
		if _, ok := curSet[n]; !ok {
			change.Removed = append(change.Removed, n)
		}
	}
	return change
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Build diffs every current result against the previous snapshot and returns
// the report sorted by source name.
func Build(previous history.Snapshot, current []SourceResult, now time.Time) ChangeReport {
	changes := make([]SourceChange, 0, len(current))
	for _, res := range current {
		c := Diff(res.Source, previous.Lookup(res.Source), res.Record)
		c.Failed = res.Failed
		changes = append(changes, c)
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Source < changes[j].Source
	})

	return ChangeReport{Sources: changes, GeneratedAt: now}
}
