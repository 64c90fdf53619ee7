package catalog

import (
	"log/slog"
)

// NotificationKind distinguishes success from failure notifications.
type NotificationKind string

// Notification kinds.
const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
)

// User-facing notification texts.
const (
	MsgItemAdded       = "Fruit added successfully!"
	MsgAddFailed       = "Failed to add fruit"
	MsgFavoriteAdded   = "Added to favorites"
	MsgFavoriteRemoved = "Removed from favorites"
	MsgFavoriteFailed  = "Failed to update favorite status"
)

// Notification is a transient message for the user. Err carries the cause of
// a failure and is nil for successes.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	Err     error            `json:"-"`
}

// OK reports whether the notification describes a success.
func (n Notification) OK() bool { return n.Kind == KindSuccess }

func success(msg string) Notification {
	return Notification{Kind: KindSuccess, Message: msg}
}

func failure(msg string, err error) Notification {
	return Notification{Kind: KindError, Message: msg, Err: err}
}

// Notifier receives every notification the controller produces.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs successes at info level and failures at warn level.
func (l LogNotifier) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if n.OK() {
		logger.Info(n.Message)
		return
	}
	logger.Warn(n.Message, "error", n.Err)
}
