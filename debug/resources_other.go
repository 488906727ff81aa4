//go:build !windows

package debug

func processCounters() (rss, gdi uint64, err error) { return 0, 0, nil }
