// Package monitor runs monitoring passes: detect a comment count change, crawl, flatten and persist.
package monitor

// ShouldCrawl reports whether the comment set changed since the last pass. A drop counts as a
// change as much as a rise does.
func ShouldCrawl(lastCount, currentCount int) bool {
	return currentCount != lastCount
}
