package cliui

import "testing"

func TestStdoutProgressStartsNotCancelled(t *testing.T) {
	p := NewStdoutProgress()
	if p.IsCancelled() {
		t.Fatal("a fresh StdoutProgress should not be cancelled")
	}
}

func TestStdoutProgressCancelTripsFlag(t *testing.T) {
	p := NewStdoutProgress()
	p.Cancel()
	if !p.IsCancelled() {
		t.Fatal("Cancel should make IsCancelled report true")
	}
}

func TestStdoutProgressUpdateDoesNotPanic(t *testing.T) {
	p := NewStdoutProgress()
	p.Update(0.0, "starting")
	p.Update(0.5, "halfway")
	p.Update(1.0, "done")
}
