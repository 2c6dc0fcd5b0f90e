package flood

import (
	"testing"
	"time"
)

func TestFloodgate_AllowsUnderLimit(t *testing.T) {
	fg := New(3)
	defer fg.Stop()

	for i := 0; i < 3; i++ {
		if !fg.Allow("chan1", "user1") {
			t.Errorf("message %d should be allowed", i+1)
		}
	}

	if fg.Allow("chan1", "user1") {
		t.Error("4th message inside the window should be blocked")
	}
}

func TestFloodgate_SendersAreIndependent(t *testing.T) {
	fg := New(1)
	defer fg.Stop()

	if !fg.Allow("chan1", "user1") {
		t.Error("first sender should be allowed")
	}
	if !fg.Allow("chan1", "user2") {
		t.Error("second sender should be unaffected by first sender's usage")
	}
	if !fg.Allow("chan2", "user1") {
		t.Error("same sender in another channel should be unaffected")
	}
}

func TestFloodgate_WindowExpiry(t *testing.T) {
	fg := New(1)
	defer fg.Stop()

	if !fg.Allow("chan1", "user1") {
		t.Fatal("first message should be allowed")
	}
	if fg.Allow("chan1", "user1") {
		t.Fatal("second message should be blocked")
	}

	// Age the recorded timestamp past the window instead of sleeping.
	fg.mutex.Lock()
	entry := fg.entries["chan1:user1"]
	for i := range entry.timestamps {
		entry.timestamps[i] = entry.timestamps[i].Add(-2 * windowDuration)
	}
	fg.mutex.Unlock()

	if !fg.Allow("chan1", "user1") {
		t.Error("message should be allowed once the window has passed")
	}
}

func TestFloodgate_Sweep(t *testing.T) {
	fg := New(5)
	defer fg.Stop()

	fg.Allow("chan1", "user1")

	fg.mutex.Lock()
	fg.entries["chan1:user1"].lastSeen = time.Now().Add(-2 * idleTimeout)
	fg.mutex.Unlock()

	fg.sweep()

	fg.mutex.Lock()
	_, exists := fg.entries["chan1:user1"]
	fg.mutex.Unlock()

	if exists {
		t.Error("idle entry should have been swept")
	}
}
