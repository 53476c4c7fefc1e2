package xp

import "context"

// Notifier delivers level-up events to whoever reacts to them (badges, popups, mails).
type Notifier interface {
	NotifyLevelUp(ctx context.Context, evt LevelUpEvent) error
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(ctx context.Context, evt LevelUpEvent) error

func (f NotifierFunc) NotifyLevelUp(ctx context.Context, evt LevelUpEvent) error {
	return f(ctx, evt)
}
