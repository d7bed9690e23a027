package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"chatfront/internal/services"
)

// Toasts is the notification centre the views render and report to.
type Toasts interface {
	Info(message string)
	Error(message string)
	Active() []services.Notification
	Updates() <-chan struct{}
}

type toastMsg struct{}

// waitForToast turns the next notification change into a redraw.
func waitForToast(t Toasts) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		<-t.Updates()
		return toastMsg{}
	}
}
