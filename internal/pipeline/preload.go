package pipeline

import (
	"time"

	"photogrid/internal/mediatypes"
)

const (
	// preloadBatchSize bounds how many loads a preload pass starts at
	// once, so a filter change does not saturate the worker channel
	// with a burst of simultaneous requests.
	preloadBatchSize = 3
	// preloadBatchDelay spaces consecutive batches.
	preloadBatchDelay = 120 * time.Millisecond
)

// Preload schedules loads for items that are expected to scroll into
// view soon. Items already pending or ready are skipped. A later
// Preload call supersedes an unfinished earlier one.
func (p *Pipeline) Preload(items []mediatypes.Item) {
	gen := p.preloadGen.Add(1)

	go func() {
		for i := 0; i < len(items); i += preloadBatchSize {
			if p.preloadGen.Load() != gen {
				return
			}
			if p.throttled != nil && p.throttled() {
				return
			}
			select {
			case <-p.done:
				return
			default:
			}

			end := i + preloadBatchSize
			if end > len(items) {
				end = len(items)
			}
			for _, item := range items[i:end] {
				if p.Entry(item.Path).State == StateAbsent {
					p.Request(item, nil)
				}
			}

			if end < len(items) {
				select {
				case <-p.done:
					return
				case <-time.After(preloadBatchDelay):
				}
			}
		}
	}()
}
