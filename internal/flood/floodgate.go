// Package flood provides per-user rate limiting so one member spamming links
// cannot monopolize the playlist.
package flood

import (
	"sync"
	"time"
)

const (
	// windowDuration is the sliding window for flood detection.
	windowDuration = 60 * time.Second
	// cleanupInterval is how often idle entries are swept.
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long an entry may sit unused before removal.
	idleTimeout = 10 * time.Minute
)

// Floodgate tracks recent message timestamps per channel/user pair and
// rejects messages beyond the per-minute limit.
type Floodgate struct {
	limitPerMinute int
	entries        map[string]*senderEntry // key: "channelID:userID"
	mutex          sync.Mutex
	stopCleanup    chan struct{}
}

type senderEntry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// New creates a Floodgate allowing limitPerMinute messages per sender per
// channel within a fixed 60-second sliding window.
func New(limitPerMinute int) *Floodgate {
	fg := &Floodgate{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*senderEntry),
		stopCleanup:    make(chan struct{}),
	}

	go fg.cleanupLoop()

	return fg
}

// Stop terminates the background sweep goroutine.
func (fg *Floodgate) Stop() {
	close(fg.stopCleanup)
}

// Allow reports whether a message from userID in channelID may be processed,
// recording it against the sender's window if so.
func (fg *Floodgate) Allow(channelID, userID string) bool {
	key := channelID + ":" + userID
	now := time.Now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries[key]
	if !exists {
		entry = &senderEntry{timestamps: make([]time.Time, 0, fg.limitPerMinute+1)}
		fg.entries[key] = entry
	}
	entry.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= fg.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

func (fg *Floodgate) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.sweep()
		case <-fg.stopCleanup:
			return
		}
	}
}

func (fg *Floodgate) sweep() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := time.Now().Add(-idleTimeout)
	for key, entry := range fg.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.entries, key)
		}
	}
}
