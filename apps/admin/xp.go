package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func (cli *commandLine) recalculate(ctx context.Context, courseID int) error {
	if courseID == 0 {
		n, err := cli.xpSvc.RecalculateAll(ctx)
		if err != nil {
			return errors.Wrap(err, "recalculating all courses")
		}
		fmt.Fprintf(cli.out, "%d levels updated\n", n)
		return nil
	}

	store, err := cli.xpSvc.Store(ctx, courseID)
	if err != nil {
		return err
	}
	n, err := store.RecalculateLevels(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d levels updated in course %d\n", n, courseID)
	return nil
}

func (cli *commandLine) reset(ctx context.Context, courseID, groupID int, yes bool) error {
	if !yes {
		question := fmt.Sprintf("Delete the XP of every user of course %d?", courseID)
		if groupID > 0 {
			question = fmt.Sprintf("Delete the XP of the members of group %d in course %d?", groupID, courseID)
		}
		if err := cli.confirm(question); err != nil {
			return err
		}
	}

	store, err := cli.xpSvc.Store(ctx, courseID)
	if err != nil {
		return err
	}
	var n int
	if groupID > 0 {
		n, err = store.ResetByGroup(ctx, groupID)
	} else {
		n, err = store.Reset(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d states deleted\n", n)
	return nil
}

func (cli *commandLine) setXP(ctx context.Context, courseID, userID, amount int) error {
	store, err := cli.xpSvc.Store(ctx, courseID)
	if err != nil {
		return err
	}
	st, err := store.Set(ctx, userID, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %d XP, level %d\n", st.User.FullName(), st.XP, st.Level)
	return nil
}
