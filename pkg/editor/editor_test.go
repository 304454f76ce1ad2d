package editor

import "testing"

func TestUnsupported(t *testing.T) {
	err := Unsupported("add_directory")
	if !IsUnsupported(err) {
		t.Fatal("IsUnsupported should report true for an Unsupported() error")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}

func TestIsUnsupported_OtherErrors(t *testing.T) {
	if IsUnsupported(errString("boom")) {
		t.Error("IsUnsupported should report false for an unrelated error")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
