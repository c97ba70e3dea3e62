package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
	}{
		{name: "yes", input: "yes\n", want: true},
		{name: "y", input: "y\n", want: true},
		{name: "Y case insensitive", input: "Y\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "anything else", input: "maybe\n", want: false},
		{name: "empty defaults to no", input: "\n", want: false},
		{name: "empty defaults to yes", input: "\n", defaultYes: true, want: true},
		{name: "no trailing newline", input: "y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &buf)
			got, err := p.Confirm("Continue?", tt.defaultYes)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirm_Hint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader("\n\n"), &buf)
	_, _ = p.Confirm("Remove?", false)
	_, _ = p.Confirm("Merge?", true)

	out := buf.String()
	if !strings.Contains(out, "Remove? [y/N]: ") || !strings.Contains(out, "Merge? [Y/n]: ") {
		t.Errorf("unexpected prompt output: %q", out)
	}
}

func TestConfirm_EOF(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader(""), &buf)
	if _, err := p.Confirm("Continue?", true); err != ErrSelectionCancelled {
		t.Errorf("expected ErrSelectionCancelled, got: %v", err)
	}
}

func TestPrompter_SharesBuffer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader("y\n2\n"), &buf)

	ok, err := p.Confirm("First?", false)
	if err != nil || !ok {
		t.Fatalf("Confirm() = %v, %v", ok, err)
	}
	idx, err := p.Select("git", []Option{{Label: "a"}, {Label: "b"}})
	if err != nil || idx != 1 {
		t.Errorf("Select() = %d, %v; want 1", idx, err)
	}
}

func TestSelect_EmptyAndSingle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader(""), &buf)

	if _, err := p.Select("x", nil); err != ErrNoOptions {
		t.Errorf("expected ErrNoOptions, got: %v", err)
	}

	idx, err := p.Select("fetch", []Option{{Label: "Fetch"}})
	if err != nil || idx != 0 {
		t.Errorf("Select() = %d, %v", idx, err)
	}
	if buf.Len() > 0 {
		t.Errorf("expected no output for single option, got: %s", buf.String())
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	options := []Option{
		{Label: "Fetch", Detail: "modelcontextprotocol"},
		{Label: "Fetch Plus", Detail: "someone"},
	}

	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{name: "explicit first", input: "1\n", want: 0},
		{name: "explicit second", input: "2\n", want: 1},
		{name: "default on empty", input: "\n", want: 0},
		{name: "whitespace trimmed", input: "  2  \n", want: 1},
		{name: "too low", input: "0\n", wantErr: "out of range"},
		{name: "too high", input: "3\n", wantErr: "out of range"},
		{name: "not a number", input: "abc\n", wantErr: "not a number"},
		{name: "eof", input: "", wantErr: "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &buf)
			got, err := p.Select("fetch", options)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSelect_OutputFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader("1\n"), &buf)
	_, err := p.Select("fetch", []Option{
		{Label: "Fetch", Detail: "modelcontextprotocol"},
		{Label: "fetch-lite"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		`Multiple servers match "fetch":`,
		"[1] Fetch (modelcontextprotocol)",
		"[2] fetch-lite\n",
		"Select [1]:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in output: %s", want, output)
		}
	}
}
