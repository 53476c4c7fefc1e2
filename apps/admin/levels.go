package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/levels/editor"
)

const levelsPrompt = "levels> "

var errUnsaved = errors.New("unsaved changes: `save` them or `quit!` to discard them")

type lineReader interface {
	ReadLine() (string, error)
}

type bufLineReader struct {
	cli *commandLine
}

func (r bufLineReader) ReadLine() (string, error) {
	fmt.Fprint(r.cli.out, levelsPrompt)
	line, err := r.cli.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

// levelsShell is an interactive editor of the levels of a course.
type levelsShell struct {
	cli      *commandLine
	courseID int
	state    editor.State
	out      io.Writer
}

func (cli *commandLine) editLevels(ctx context.Context, courseID int) error {
	info, err := cli.levelsSvc.Get(ctx, courseID)
	if err != nil {
		return errors.Wrap(err, "getting levels")
	}

	var reader lineReader = bufLineReader{cli: cli}
	out := cli.out
	if isTerminalFunc() {
		oldState, err := term.MakeRaw(int(syscall.Stdin))
		if err != nil {
			return errors.Wrap(err, "setting terminal raw mode")
		}
		defer func() { _ = term.Restore(int(syscall.Stdin), oldState) }()

		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}, levelsPrompt)
		reader, out = t, t
	}

	sh := &levelsShell{cli: cli, courseID: courseID, state: editor.NewState(info), out: out}
	return sh.loop(ctx, reader)
}

func (sh *levelsShell) isDefaults() bool {
	return sh.courseID == levels.DefaultsCourseID
}

func (sh *levelsShell) loop(ctx context.Context, reader lineReader) error {
	sh.printLevels()
	for {
		line, err := reader.ReadLine()
		if err == io.EOF {
			if sh.state.PendingSave {
				return errUnsaved
			}
			return nil
		} else if err != nil {
			return err
		}

		quit, err := sh.exec(ctx, strings.Fields(line))
		if err != nil {
			fmt.Fprintf(sh.out, "error: %s\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (sh *levelsShell) dispatch(action editor.Action) {
	sh.state = editor.Reduce(sh.state, action)
}

func (sh *levelsShell) exec(ctx context.Context, fields []string) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		sh.printHelp()
	case "show", "ls":
		sh.printLevels()
	case "algo":
		preview, err := parseAlgo(args)
		if err != nil {
			return false, err
		}
		if _, err = sh.cli.levelsSvc.Preview(preview); err != nil {
			return false, sh.describe(err)
		}
		sh.dispatch(editor.BulkEdit{Algo: preview.Algo})
		sh.printLevels()
	case "count":
		n, err := intArgs(args, 1)
		if err != nil {
			return false, err
		}
		if n[0] < levels.MinLevels || n[0] > levels.MaxLevels {
			return false, fmt.Errorf("the number of levels must be between %d and %d", levels.MinLevels, levels.MaxLevels)
		}
		sh.dispatch(editor.NbLevelsChange{N: n[0]})
		sh.printLevels()
	case "points", "length":
		n, err := intArgs(args, 2)
		if err != nil {
			return false, err
		}
		before := sh.state
		if cmd == "points" {
			sh.dispatch(editor.LevelPointsChange{Level: n[0], Points: n[1]})
		} else {
			sh.dispatch(editor.LevelLengthChange{Level: n[0], Length: n[1]})
		}
		if sameThresholds(before, sh.state) {
			return false, errors.New("ignored: the first level starts at 0 and each level needs more points than the previous one")
		}
		sh.printLevels()
	case "name", "desc", "popup":
		if len(args) < 1 {
			return false, fmt.Errorf("usage: %s LEVEL [TEXT]", cmd)
		}
		lvl, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("invalid level %q", args[0])
		}
		text := strings.Join(args[1:], " ")
		switch cmd {
		case "name":
			sh.dispatch(editor.LevelNameChange{Level: lvl, Name: text})
		case "desc":
			sh.dispatch(editor.LevelDescChange{Level: lvl, Desc: text})
		default:
			sh.dispatch(editor.LevelPopupChange{Level: lvl, Message: text})
		}
	case "badge":
		if sh.isDefaults() {
			return false, errors.New("badges cannot be awarded by the default levels")
		}
		n, err := intArgs(args, 2)
		if err != nil {
			return false, err
		}
		sh.dispatch(editor.LevelBadgeChange{Level: n[0], BadgeAwardID: n[1]})
	case "options":
		n, err := intArgs(args, 1)
		if err != nil {
			return false, err
		}
		sh.printOptions(n[0])
	case "expand":
		if len(args) == 0 {
			sh.dispatch(editor.ToggleExpandAll{})
		} else {
			n, err := intArgs(args, 1)
			if err != nil {
				return false, err
			}
			sh.dispatch(editor.ToggleExpanded{Level: n[0]})
		}
		sh.printLevels()
	case "save":
		return false, sh.save(ctx)
	case "reset":
		return false, sh.reset(ctx)
	case "quit", "exit":
		if sh.state.PendingSave {
			return false, errUnsaved
		}
		return true, nil
	case "quit!":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, try `help`", cmd)
	}
	return false, nil
}

func (sh *levelsShell) save(ctx context.Context) error {
	info, err := sh.cli.levelsSvc.Set(ctx, sh.courseID, sh.state.Update())
	if err != nil {
		return sh.describe(err)
	}
	expanded := sh.state.Expanded
	sh.state = editor.NewState(info)
	sh.state.Expanded = expanded
	fmt.Fprintf(sh.out, "saved %d levels\n", len(info.Levels))
	return nil
}

func (sh *levelsShell) reset(ctx context.Context) error {
	if sh.isDefaults() {
		return errors.New("the site defaults cannot be reset")
	}
	info, err := sh.cli.levelsSvc.ResetToDefaults(ctx, sh.courseID)
	if err != nil {
		return err
	}
	sh.state = editor.NewState(info)
	fmt.Fprintln(sh.out, "the course now uses the default levels")
	sh.printLevels()
	return nil
}

// describe turns validation errors into a readable message.
func (sh *levelsShell) describe(err error) error {
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs := make([]string, 0, len(vErr))
		for _, fErr := range vErr {
			msgs = append(msgs, fErr.Namespace()+": "+fErr.Translate(sh.cli.translator))
		}
		return errors.New(strings.Join(msgs, "; "))
	case *core.ValidationError:
		return vErr
	}
	return err
}

func (sh *levelsShell) printHelp() {
	fmt.Fprintln(sh.out, "Commands:")
	fmt.Fprintln(sh.out, "  show                          list the levels")
	fmt.Fprintln(sh.out, "  algo METHOD BASE [COEF|INCR]  regenerate every threshold (linear BASE INCR, relative BASE COEF)")
	fmt.Fprintln(sh.out, "  count N                       set the number of levels")
	fmt.Fprintln(sh.out, "  points LEVEL XP               set the points required by a level")
	fmt.Fprintln(sh.out, "  length LEVEL XP               set the points needed to go through a level")
	fmt.Fprintln(sh.out, "  name|desc|popup LEVEL [TEXT]  set (or clear) the name, description or popup message of a level")
	fmt.Fprintln(sh.out, "  badge LEVEL ID                set the badge awarded by a level (0 clears it)")
	fmt.Fprintln(sh.out, "  options LEVEL                 show which options of a level are set")
	fmt.Fprintln(sh.out, "  expand [LEVEL]                show (or hide) the details of a level, or of every level")
	fmt.Fprintln(sh.out, "  save                          save the levels")
	fmt.Fprintln(sh.out, "  reset                         use the default levels again")
	fmt.Fprintln(sh.out, "  quit | quit!                  leave (quit! discards unsaved changes)")
}

func (sh *levelsShell) printLevels() {
	s := sh.state
	title := fmt.Sprintf("Course %d", sh.courseID)
	if sh.isDefaults() {
		title = "Site defaults"
	}
	algo := s.Algo
	fmt.Fprintf(sh.out, "%s - %d levels - %s (base %d, coef %g, incr %d)", title, s.NbLevels, algo.Method, algo.Base, algo.Coef, algo.Incr)
	if s.PendingSave {
		fmt.Fprint(sh.out, " - unsaved changes")
	}
	fmt.Fprintln(sh.out)

	w := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tXP\tLENGTH\tNAME\tOPTIONS")
	visible := s.VisibleLevels()
	for i, l := range visible {
		length := "-"
		if i+1 < len(visible) {
			length = strconv.Itoa(visible[i+1].XPRequired - l.XPRequired)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", l.Level.Level, l.XPRequired, length, l.Name, setOptions(l, sh.isDefaults()))
		if s.IsExpanded(l.Level.Level) {
			if l.Description != "" {
				fmt.Fprintf(w, "\t\t\tdescription: %s\t\n", l.Description)
			}
			if l.PopupMessage != "" {
				fmt.Fprintf(w, "\t\t\tpopup: %s\t\n", l.PopupMessage)
			}
			if l.BadgeAwardID != 0 {
				fmt.Fprintf(w, "\t\t\tbadge: %d\t\n", l.BadgeAwardID)
			}
		}
	}
	_ = w.Flush()
}

func (sh *levelsShell) printOptions(level int) {
	lvl, ok := sh.state.Level(level)
	if !ok {
		fmt.Fprintf(sh.out, "no level %d\n", level)
		return
	}
	for _, opt := range editor.OptionStates(lvl, sh.isDefaults()) {
		status := "not set"
		switch {
		case !opt.Available:
			status = "unavailable"
		case opt.Set:
			status = "set"
		}
		fmt.Fprintf(sh.out, "%s: %s\n", opt.ID, status)
	}
}

func setOptions(lvl editor.Level, defaults bool) string {
	var set []string
	for _, opt := range editor.OptionStates(lvl, defaults) {
		if opt.Set {
			set = append(set, opt.ID)
		}
	}
	sort.Strings(set)
	return strings.Join(set, ",")
}

func sameThresholds(a, b editor.State) bool {
	if len(a.Levels) != len(b.Levels) {
		return false
	}
	for i := range a.Levels {
		if a.Levels[i].XPRequired != b.Levels[i].XPRequired {
			return false
		}
	}
	return true
}

// parseAlgo parses `METHOD BASE [COEF|INCR]`.
func parseAlgo(args []string) (levels.Preview, error) {
	usage := errors.New("usage: algo linear BASE INCR | algo relative BASE COEF")
	if len(args) < 2 || len(args) > 3 {
		return levels.Preview{}, usage
	}

	algo := levels.DefaultAlgo()
	algo.Method = strings.ToLower(args[0])
	base, err := strconv.Atoi(args[1])
	if err != nil {
		return levels.Preview{}, usage
	}
	algo.Base = base

	if len(args) == 3 {
		switch algo.Method {
		case levels.MethodLinear:
			if algo.Incr, err = strconv.Atoi(args[2]); err != nil {
				return levels.Preview{}, usage
			}
		default:
			if algo.Coef, err = strconv.ParseFloat(args[2], 64); err != nil {
				return levels.Preview{}, usage
			}
		}
	}
	return levels.Preview{Algo: algo, NbLevels: levels.MinLevels}, nil
}

func intArgs(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers", n)
	}
	nums := make([]int, n)
	for i, arg := range args {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", arg)
		}
		nums[i] = num
	}
	return nums, nil
}
