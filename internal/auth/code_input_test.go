package auth

import (
	"errors"
	"testing"
)

func TestCodeInputAutoSubmitTyping(t *testing.T) {
	c := NewCodeInput(AutoSubmit)

	if c.Type(0, "a") {
		t.Error("Letters must not be accepted")
	}
	if c.Cells()[0] != "" {
		t.Errorf("Cell should stay empty, got %q", c.Cells()[0])
	}
	if c.Type(0, "12") {
		t.Error("Two digits in one cell must be rejected")
	}

	for i, d := range []string{"1", "2", "3", "4", "5"} {
		if c.Type(i, d) {
			t.Fatalf("Incomplete code must not submit (cell %d)", i)
		}
		if i < CodeLength-1 && c.Focus() != i+1 {
			t.Errorf("Focus should advance to %d, got %d", i+1, c.Focus())
		}
	}
	if !c.Type(5, "6") {
		t.Error("Completing the code should submit")
	}
	if c.Code() != "123456" {
		t.Errorf("Expected 123456, got %s", c.Code())
	}
}

func TestCodeInputBackspace(t *testing.T) {
	c := NewCodeInput(AutoSubmit)
	c.Type(0, "1")
	c.Type(1, "2")

	c.Backspace(1)
	if c.Cells()[1] != "" || c.Focus() != 1 {
		t.Errorf("Backspace should clear cell 1, got %v focus %d", c.Cells(), c.Focus())
	}

	c.Backspace(1)
	if c.Cells()[0] != "" || c.Focus() != 0 {
		t.Errorf("Backspace on empty cell should clear the previous one, got %v focus %d", c.Cells(), c.Focus())
	}

	c.Backspace(0)
	if c.Focus() != 0 {
		t.Errorf("Focus must not go below 0, got %d", c.Focus())
	}
}

func TestCodeInputAutoSubmitPaste(t *testing.T) {
	tests := []struct {
		raw      string
		complete bool
		code     string
	}{
		{"123456", true, "123456"},
		{" 12-34-56 ", true, "123456"},
		{"12345", false, ""},
		{"1234567", false, ""},
		{"abcdef", false, ""},
	}

	for _, tt := range tests {
		c := NewCodeInput(AutoSubmit)
		complete, err := c.Paste(tt.raw)
		if err != nil {
			t.Errorf("Paste(%q) unexpected error: %v", tt.raw, err)
		}
		if complete != tt.complete || c.Code() != tt.code {
			t.Errorf("Paste(%q) = %v %q, want %v %q", tt.raw, complete, c.Code(), tt.complete, tt.code)
		}
	}
}

func TestCodeInputGatedPaste(t *testing.T) {
	c := NewCodeInput(SubmitGated)

	if _, err := c.Paste("abc"); !errors.Is(err, ErrCodeNotNumeric) {
		t.Errorf("Expected ErrCodeNotNumeric, got %v", err)
	}

	complete, err := c.Paste("12a3")
	if err != nil || complete {
		t.Fatalf("Gated paste never submits: %v %v", complete, err)
	}
	if c.Code() != "123" || c.Focus() != 3 {
		t.Errorf("Expected 123 with focus 3, got %q focus %d", c.Code(), c.Focus())
	}
	if c.Complete() {
		t.Error("Code should be incomplete")
	}

	c.Paste("987654321")
	if c.Code() != "987654" || c.Focus() != CodeLength-1 {
		t.Errorf("Expected 987654 with focus 5, got %q focus %d", c.Code(), c.Focus())
	}

	if c.Type(0, "x") {
		t.Error("Gated input never submits on typing")
	}
	if c.Cells()[0] != "" {
		t.Errorf("Non-digit typing should clear the cell, got %q", c.Cells()[0])
	}
}

func TestCodeInputClear(t *testing.T) {
	c := NewCodeInput(AutoSubmit)
	c.Paste("123456")
	c.Clear()
	if c.Code() != "" || c.Focus() != 0 {
		t.Errorf("Clear should empty cells, got %q focus %d", c.Code(), c.Focus())
	}
}
