package cmd

import (
	"testing"
	"time"
)

func TestDebouncer_CoalescesTriggers(t *testing.T) {
	b := &debouncer{delay: 20 * time.Millisecond}
	defer b.stop()

	c := b.trigger()
	c = b.trigger() // a second burst resets the deadline, same channel

	select {
	case <-c:
	case <-time.After(time.Second):
		t.Fatal("debounce never fired")
	}
}

func TestDebouncer_StopPreventsFiring(t *testing.T) {
	b := &debouncer{delay: 20 * time.Millisecond}

	c := b.trigger()
	b.stop()

	select {
	case <-c:
		t.Error("timer fired after stop")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncer_StopBeforeTriggerIsSafe(t *testing.T) {
	b := &debouncer{delay: time.Millisecond}
	b.stop() // no timer yet
}
