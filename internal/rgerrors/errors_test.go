package rgerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryConfig, SeverityFatal, "unknown provider")
	want := "config (fatal): unknown provider"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := Wrap(cause, CategoryFileSystem, SeverityWindow, "write output")

	if !errors.Is(e, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	want := "filesystem (window): write output: disk full"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestIsCategory(t *testing.T) {
	e := New(CategoryArchive, SeverityTask, "no valid time range")
	if !IsCategory(e, CategoryArchive) {
		t.Error("expected CategoryArchive match")
	}
	if IsCategory(e, CategoryRender) {
		t.Error("unexpected CategoryRender match")
	}
	if IsCategory(fmt.Errorf("plain"), CategoryArchive) {
		t.Error("plain errors have no category")
	}
}

func TestGetSeverity(t *testing.T) {
	if GetSeverity(New(CategoryRender, SeverityWindow, "x")) != SeverityWindow {
		t.Error("expected SeverityWindow")
	}
	if GetSeverity(errors.New("plain")) != SeverityFatal {
		t.Error("plain errors default to fatal")
	}
}
