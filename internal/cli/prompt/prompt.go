// Package prompt provides line-based interactive prompts.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// Sentinel errors for prompts.
var (
	ErrNoOptions          = errors.New("no options to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Prompter reads answers from one buffered reader so consecutive prompts
// never lose input.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// New creates a Prompter using stdin and stdout.
func New() *Prompter {
	return NewWithIO(os.Stdin, os.Stdout)
}

// NewWithIO creates a Prompter with custom reader and writer for testing.
func NewWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Confirm asks a yes/no question. An empty answer returns defaultYes; EOF
// returns ErrSelectionCancelled.
func (p *Prompter) Confirm(question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.writer, "%s %s: ", question, hint)

	input, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Option is one numbered choice.
type Option struct {
	Label  string
	Detail string
}

// Select asks the user to pick one of options by number.
//
// Returns:
//   - ErrNoOptions if the list is empty
//   - 0 without prompting if only one option exists
//   - the chosen index (empty input picks the first)
//   - ErrInvalidSelection if the input is not a number in range
//   - ErrSelectionCancelled on EOF (e.g., Ctrl+D)
func (p *Prompter) Select(query string, options []Option) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	if len(options) == 1 {
		return 0, nil
	}

	fmt.Fprintf(p.writer, "Multiple servers match %q:\n", query)
	for i, o := range options {
		if o.Detail != "" {
			fmt.Fprintf(p.writer, "  [%d] %s (%s)\n", i+1, o.Label, o.Detail)
		} else {
			fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, o.Label)
		}
	}
	fmt.Fprintf(p.writer, "Select [1]: ")

	input, err := p.readLine()
	if err != nil {
		return 0, err
	}
	if input == "" {
		return 0, nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if selection < 1 || selection > len(options) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(options))
	}
	return selection - 1, nil
}

func (p *Prompter) readLine() (string, error) {
	input, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimSpace(input), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading answer")
	}
	return strings.TrimSpace(input), nil
}
