package order

import "github.com/muurk/orderdesk/internal/logging"

// Variant classifies a notification
type Variant string

const (
	VariantInfo    Variant = "info"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
	VariantSuccess Variant = "success"
)

// Notification is a user-facing message raised by the wizard
type Notification struct {
	Variant Variant
	Title   string
	Message string
}

// Notifier receives notifications. It is called while the wizard lock is
// held, so it must not call back into the Wizard.
type Notifier func(Notification)

func (w *Wizard) notify(variant Variant, title, message string) {
	n := Notification{Variant: variant, Title: title, Message: message}
	logging.LogNotification(string(variant), title, message)
	w.last = &n
	if w.notifier != nil {
		w.notifier(n)
	}
}
