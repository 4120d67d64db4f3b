package tui

import "testing"

func TestMockPrompts(t *testing.T) {
	MockPrompts("secret", "y", "no")
	t.Cleanup(ClearMock)

	v, err := HiddenInput("Value")
	if err != nil || v != "secret" {
		t.Errorf("HiddenInput() = %q, %v", v, err)
	}

	ok, err := Confirm("Overwrite?")
	if err != nil || !ok {
		t.Errorf("Confirm() = %v, %v, want true", ok, err)
	}

	ok, err = Confirm("Overwrite?")
	if err != nil || ok {
		t.Errorf("Confirm() = %v, %v, want false", ok, err)
	}

	if _, err := PlaintextInput("Value"); err == nil {
		t.Error("PlaintextInput() expected error when no answers are left")
	}
}

func TestPad(t *testing.T) {
	if got := Pad("A", 4); len(got) < 4 {
		t.Errorf("Pad() = %q, want at least 4 bytes", got)
	}
	if got := Pad("LONG_KEY", 2); got != Key("LONG_KEY") {
		t.Errorf("Pad() = %q, want key unpadded", got)
	}
}
