package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/halcyonchain/nodectl/pkg/consts"
	"github.com/halcyonchain/nodectl/pkg/errors"
)

// Prompter supplies the interactive answers an action needs. The terminal
// implementation below is the real one; tests script answers through any
// io.Reader.
type Prompter interface {
	// Action asks which operation to run when none was given on the
	// command line.
	Action(choices []string) (string, error)
	// Mode asks for a run mode, re-prompting until the answer is valid.
	Mode() (consts.RunMode, error)
	// Retention asks for a block-retention count; blank means def.
	Retention(def int) (int, error)
	// Confirm asks a y/n question. Anything but an explicit yes declines.
	Confirm(question string) (bool, error)
	// Lines asks for a log line count; blank or non-positive input
	// falls back to def.
	Lines(def int) (int, error)
}

// Terminal prompts on out and reads answers from in. When in is a
// non-terminal file (piped stdin), prompts do not block: selections fail,
// numeric questions take their default, confirmations decline.
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: bufio.NewReader(in), out: out, interactive: true}
	if f, ok := in.(*os.File); ok {
		t.interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return t
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Action(choices []string) (string, error) {
	if !t.interactive {
		return "", errors.New(errors.ErrCodeBadInput, "Prompt", "no action given and stdin is not a terminal", nil)
	}
	fmt.Fprintf(t.out, "Action [%s]: ", strings.Join(choices, "/"))
	answer, err := t.readLine()
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (t *Terminal) Mode() (consts.RunMode, error) {
	if !t.interactive {
		return "", errors.New(errors.ErrCodeBadInput, "Prompt", "run mode required but stdin is not a terminal", nil)
	}
	for {
		fmt.Fprintf(t.out, "Run mode [%s/%s/%s]: ", consts.ModeLite, consts.ModeFull, consts.ModeArchive)
		answer, err := t.readLine()
		if err != nil {
			return "", err
		}
		m := consts.RunMode(strings.ToLower(answer))
		if m.Valid() {
			return m, nil
		}
		fmt.Fprintf(t.out, "Unrecognized mode %q\n", answer)
	}
}

func (t *Terminal) Retention(def int) (int, error) {
	if !t.interactive {
		return def, nil
	}
	for {
		fmt.Fprintf(t.out, "Blocks to retain [%d]: ", def)
		answer, err := t.readLine()
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n <= 0 {
			fmt.Fprintf(t.out, "Retention must be a positive integer\n")
			continue
		}
		return n, nil
	}
}

func (t *Terminal) Confirm(question string) (bool, error) {
	if !t.interactive {
		return false, nil
	}
	fmt.Fprintf(t.out, "%s [y/N]: ", question)
	answer, err := t.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (t *Terminal) Lines(def int) (int, error) {
	if !t.interactive {
		return def, nil
	}
	fmt.Fprintf(t.out, "Lines to show [%d]: ", def)
	answer, err := t.readLine()
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(answer)
	if answer == "" || convErr != nil || n <= 0 {
		return def, nil
	}
	return n, nil
}
