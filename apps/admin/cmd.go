package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"golang.org/x/term"

	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
)

var (
	isTerminalFunc = func() bool { return term.IsTerminal(int(syscall.Stdin)) } // mockable

	errHelp      = errors.New("help provided")
	errCancelled = errors.New("cancelled")
)

type commandLine struct {
	levelsSvc  *levels.Service
	xpSvc      *xp.Service
	translator ut.Translator
	migrate    func(command string, args ...string) error

	in  *bufio.Reader
	out io.Writer
}

func newCommandLine(db *sql.DB, levelsSvc *levels.Service, xpSvc *xp.Service, translator ut.Translator) *commandLine {
	return &commandLine{
		levelsSvc:  levelsSvc,
		xpSvc:      xpSvc,
		translator: translator,
		migrate:    gooseMigrate(db),
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                       - run a goose command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  recalculate -course ID | -all                - refresh the stored levels")
	fmt.Fprintln(cli.out, "  reset -course ID [-group ID] [-yes]          - delete the XP of a course (or of a group in it)")
	fmt.Fprintln(cli.out, "  setxp -course ID -user ID -xp XP             - set the XP of a user")
	fmt.Fprintln(cli.out, "  levels -course ID                            - edit the levels of a course (0: site defaults)")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	recalculateCmd := cli.newFlagSet("recalculate")
	recalculateCourse := recalculateCmd.Int("course", 0, "The course to recalculate.")
	recalculateAll := recalculateCmd.Bool("all", false, "Recalculate every course.")

	resetCmd := cli.newFlagSet("reset")
	resetCourse := resetCmd.Int("course", 0, "The course to reset.")
	resetGroup := resetCmd.Int("group", 0, "Only reset the members of this group.")
	resetYes := resetCmd.Bool("yes", false, "Do not ask for confirmation.")

	setXPCmd := cli.newFlagSet("setxp")
	setXPCourse := setXPCmd.Int("course", 0, "The course.")
	setXPUser := setXPCmd.Int("user", 0, "The user.")
	setXPAmount := setXPCmd.Int("xp", -1, "The new XP of the user.")

	levelsCmd := cli.newFlagSet("levels")
	levelsCourse := levelsCmd.Int("course", -1, "The course whose levels to edit; 0 edits the site defaults.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2], args[3:]...)

	case "recalculate":
		if err := recalculateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *recalculateAll == (*recalculateCourse > 0) {
			recalculateCmd.Usage()
			return errHelp
		}
		return cli.recalculate(ctx, *recalculateCourse)

	case "reset":
		if err := resetCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetCourse <= 0 || *resetGroup < 0 {
			resetCmd.Usage()
			return errHelp
		}
		return cli.reset(ctx, *resetCourse, *resetGroup, *resetYes)

	case "setxp":
		if err := setXPCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *setXPCourse <= 0 || *setXPUser <= 0 || *setXPAmount < 0 {
			setXPCmd.Usage()
			return errHelp
		}
		return cli.setXP(ctx, *setXPCourse, *setXPUser, *setXPAmount)

	case "levels":
		if err := levelsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *levelsCourse < levels.DefaultsCourseID {
			levelsCmd.Usage()
			return errHelp
		}
		return cli.editLevels(ctx, *levelsCourse)

	default:
		cli.printUsage()
		return errHelp
	}
}

// confirm asks a yes/no question; it fails when nobody can answer it.
func (cli *commandLine) confirm(question string) error {
	if !isTerminalFunc() {
		return errors.New("confirmation required: run with -yes")
	}
	fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, err := cli.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errCancelled
	}
}
