package envfile

import (
	"errors"
	"strings"
	"testing"
)

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name           string
		line           string
		expectedKey    string
		expectedValue  string
		expectedInline string
	}{
		{"simple value", "KEY=value", "KEY", "value", ""},
		{"spaces around equals", "KEY = value", "KEY", "value", ""},
		{"value with inline comment", "KEY=value # comment", "KEY", "value", " # comment"},
		{"tab before comment", "KEY=value\t# comment", "KEY", "value", "\t# comment"},
		{"hash without whitespace is value", "KEY=val#ue#comment", "KEY", "val#ue#comment", ""},
		{"quoted value with hash", `KEY="val#ue"`, "KEY", "val#ue", ""},
		{"quoted value with comment", `KEY="value" # comment`, "KEY", "value", " # comment"},
		{"single quoted value", `KEY='val#ue'`, "KEY", "val#ue", ""},
		{"double quoted escapes", `KEY="a\tb\nc\"d\\e"`, "KEY", "a\tb\nc\"d\\e", ""},
		{"unknown escape kept", `KEY="a\xb"`, "KEY", `a\xb`, ""},
		{"single quoted escapes are literal", `KEY='a\nb\'c'`, "KEY", `a\nb'c`, ""},
		{"unquoted backslashes are literal", `KEY=a\nb`, "KEY", `a\nb`, ""},
		{"trailing whitespace trimmed", "KEY=value   ", "KEY", "value", ""},
		{"empty value", "KEY=", "KEY", "", ""},
		{"empty quoted value", `KEY=""`, "KEY", "", ""},
		{"export prefix", "export KEY=value", "KEY", "value", ""},
		{"export mixed case", "Export KEY=value", "KEY", "value", ""},
		{"key with punctuation", "app.db:host-1=x", "app.db:host-1", "x", ""},
		{"url value", "URL=postgres://u:p@h:5432/db?x=1", "URL", "postgres://u:p@h:5432/db?x=1", ""},
		{"leading whitespace", "   KEY=value", "KEY", "value", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(lines) != 1 {
				t.Fatalf("Parse() returned %d lines, want 1", len(lines))
			}
			line := lines[0]
			if !line.IsEntry() {
				t.Fatalf("line type = %v, want entry", line.Type)
			}
			if line.Key != tt.expectedKey {
				t.Errorf("key = %q, want %q", line.Key, tt.expectedKey)
			}
			if line.Value != tt.expectedValue {
				t.Errorf("value = %q, want %q", line.Value, tt.expectedValue)
			}
			if line.InlineComment != tt.expectedInline {
				t.Errorf("inline comment = %q, want %q", line.InlineComment, tt.expectedInline)
			}
			if line.Raw != tt.line {
				t.Errorf("raw = %q, want %q", line.Raw, tt.line)
			}
		})
	}
}

func TestParseNonEntries(t *testing.T) {
	tests := []struct {
		name string
		line string
		want LineType
	}{
		{"whitespace only", "  \t", LineTypeRaw},
		{"comment", "# hello", LineTypeComment},
		{"indented comment", "   # hello", LineTypeComment},
		{"commented assignment", "# KEY=value", LineTypeComment},
		{"no equals", "just some words", LineTypeRaw},
		{"leading equals", "=value", LineTypeRaw},
		{"export alone", "export", LineTypeRaw},
		{"key then text", "KEY value=1", LineTypeRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(lines) != 1 {
				t.Fatalf("Parse() returned %d lines, want 1", len(lines))
			}
			if lines[0].Type != tt.want {
				t.Errorf("type = %v, want %v", lines[0].Type, tt.want)
			}
			if lines[0].Raw != tt.line {
				t.Errorf("raw = %q, want %q", lines[0].Raw, tt.line)
			}
		})
	}
}

func TestParseMultiline(t *testing.T) {
	t.Run("double quoted", func(t *testing.T) {
		lines, err := Parse("KEY=\"line1\nline2\"\nNEXT=1")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("Parse() returned %d lines, want 2", len(lines))
		}
		if lines[0].Value != "line1\nline2" {
			t.Errorf("value = %q, want %q", lines[0].Value, "line1\nline2")
		}
		if lines[0].Raw != "KEY=\"line1\nline2\"" {
			t.Errorf("raw = %q", lines[0].Raw)
		}
		if lines[0].Num != 1 || lines[1].Num != 3 {
			t.Errorf("line numbers = %d, %d, want 1, 3", lines[0].Num, lines[1].Num)
		}
	})

	t.Run("single quoted keeps inner lines", func(t *testing.T) {
		lines, err := Parse("KEY='a\n  b # not a comment\nc'")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if lines[0].Value != "a\n  b # not a comment\nc" {
			t.Errorf("value = %q", lines[0].Value)
		}
	})

	t.Run("escaped quote does not close", func(t *testing.T) {
		lines, err := Parse("KEY=\"a\nb\\\"\nc\"")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(lines) != 1 {
			t.Fatalf("Parse() returned %d lines, want 1", len(lines))
		}
		if lines[0].Value != "a\nb\"\nc" {
			t.Errorf("value = %q", lines[0].Value)
		}
	})

	t.Run("even backslashes close", func(t *testing.T) {
		lines, err := Parse("KEY=\"a\nb\\\\\"\nNEXT=1")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("Parse() returned %d lines, want 2", len(lines))
		}
		if lines[0].Value != "a\nb\\" {
			t.Errorf("value = %q", lines[0].Value)
		}
	})

	t.Run("unterminated", func(t *testing.T) {
		_, err := Parse("A=1\nKEY=\"never\nclosed\n")
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Parse() error = %v, want *ParseError", err)
		}
		if perr.Key != "KEY" || perr.Line != 2 {
			t.Errorf("ParseError = %+v, want key KEY on line 2", perr)
		}
		if !strings.Contains(err.Error(), "unterminated") {
			t.Errorf("error = %q, want it to mention unterminated", err.Error())
		}
	})
}

func TestParseEmpty(t *testing.T) {
	lines, err := Parse("")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Parse(\"\") returned %d lines, want 0", len(lines))
	}

	lines, err = Parse("\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(lines) != 2 || lines[0].Raw != "" || lines[0].Type != LineTypeComment {
		t.Errorf("Parse(\"\\n\") = %+v, want two blank comments", lines)
	}
}

func TestParseInvalidKey(t *testing.T) {
	_, err := Parse("GOOD=1\nBAD$KEY=2\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if perr.Key != "BAD$KEY" {
		t.Errorf("ParseError.Key = %q, want BAD$KEY", perr.Key)
	}
	if perr.Line != 2 {
		t.Errorf("ParseError.Line = %d, want 2", perr.Line)
	}
	if !errors.Is(err, ErrParse) {
		t.Error("ParseError should match ErrParse")
	}
}

func TestParseNormalizesInput(t *testing.T) {
	t.Run("bom", func(t *testing.T) {
		lines, err := Parse("\xEF\xBB\xBFKEY=value")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if lines[0].Key != "KEY" {
			t.Errorf("key = %q, want KEY", lines[0].Key)
		}
	})

	t.Run("crlf and cr", func(t *testing.T) {
		lines, err := Parse("A=1\r\nB=2\rC=3\r\n")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		var keys []string
		for _, line := range lines {
			if line.IsEntry() {
				keys = append(keys, line.Key)
				if strings.ContainsRune(line.Raw, '\r') {
					t.Errorf("raw %q still has CR", line.Raw)
				}
			}
		}
		if strings.Join(keys, ",") != "A,B,C" {
			t.Errorf("keys = %v, want A,B,C", keys)
		}
	})
}

func TestValidKey(t *testing.T) {
	valid := []string{"A", "a_b", "APP.NAME", "x:y", "with-dash", "123"}
	invalid := []string{"", "A B", "A=B", "A$", "ключ", "A#"}

	for _, k := range valid {
		if !ValidKey(k) {
			t.Errorf("ValidKey(%q) = false, want true", k)
		}
	}
	for _, k := range invalid {
		if ValidKey(k) {
			t.Errorf("ValidKey(%q) = true, want false", k)
		}
	}
}
