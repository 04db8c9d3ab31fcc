package services

import "github.com/gen2brain/beeep"

// Notifier delivers desktop notifications.
type Notifier interface {
	Notify(title, message string) error
}

// DesktopNotifier sends notifications through the OS notification service.
type DesktopNotifier struct{}

// Notify implements Notifier.
func (DesktopNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string) error { return nil }
