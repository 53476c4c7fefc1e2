package notifysvc

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/levelup/core/xp"
)

type multiNotifier []xp.Notifier

var _ xp.Notifier = multiNotifier(nil)

// NewMultiNotifier fans events out to every notifier; nil notifiers are skipped.
func NewMultiNotifier(notifiers ...xp.Notifier) xp.Notifier {
	var m multiNotifier
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

// NotifyLevelUp notifies every notifier, even when some of them fail.
func (m multiNotifier) NotifyLevelUp(ctx context.Context, evt xp.LevelUpEvent) error {
	var msgs []string
	for _, n := range m {
		if err := n.NotifyLevelUp(ctx, evt); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) > 0 {
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}
