package tui

import "github.com/initializ/edgard/installer"

// statusMsg carries a fresh status from the control panel.
type statusMsg struct {
	status installer.Status
}

// fetchErrMsg reports a failed status poll.
type fetchErrMsg struct {
	err error
}

// pollMsg triggers the next status poll.
type pollMsg struct{}

// actionMsg reports the result of a start or pause request.
type actionMsg struct {
	notice string
	err    error
}
