package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-declaration/pkg/storage"
)

var (
	// ErrNoProvider is returned by LoadStatistics when the session has no
	// storage provider.
	ErrNoProvider = errors.New("wizard: no storage provider")
	// ErrStaleStatistics reports that an edit happened while the fetch was in
	// flight; the result was discarded.
	ErrStaleStatistics = errors.New("wizard: statistics outdated by a later edit")
)

// LoadStatistics fetches aggregate statistics from the provider and, unless an
// edit happened meanwhile, stores the snapshot and fires the rerender
// callback. It blocks for the duration of the fetch and may be called from a
// separate goroutine; the callback then runs on that goroutine.
func (d *Declaration) LoadStatistics(ctx context.Context) error {
	if d.provider == nil {
		return ErrNoProvider
	}

	d.statsMu.Lock()
	gen := d.statsGen
	d.statsMu.Unlock()

	stats, err := d.provider.Statistics(ctx)
	if err != nil {
		d.logger.Warn("statistics fetch failed", "error", err)
		return fmt.Errorf("wizard: load statistics: %w", err)
	}

	d.statsMu.Lock()
	if gen != d.statsGen {
		d.statsMu.Unlock()
		d.logger.Debug("stale statistics discarded", "generation", gen)
		return ErrStaleStatistics
	}
	d.stats = &stats
	d.statsMu.Unlock()

	d.notify()
	return nil
}

// Statistics returns the last loaded snapshot. ok is false when nothing has
// been loaded since the last edit.
func (d *Declaration) Statistics() (stats storage.Statistics, ok bool) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	if d.stats == nil {
		return storage.Statistics{}, false
	}
	return *d.stats, true
}

func (d *Declaration) invalidateStatistics() {
	d.statsMu.Lock()
	d.stats = nil
	d.statsGen++
	d.statsMu.Unlock()
}
