package tui

import (
	"fmt"
	"strings"

	"github.com/initializ/edgard/installer"
)

// severityStyle picks the text style for a log severity.
func (s *StyleSet) severityStyle(sev installer.Severity) func(...string) string {
	switch sev {
	case installer.SeveritySuccess:
		return s.SuccessTxt.Render
	case installer.SeverityWarning:
		return s.WarningTxt.Render
	case installer.SeverityError:
		return s.ErrorTxt.Render
	default:
		return s.InfoTxt.Render
	}
}

// severityGlyph is the short marker shown in front of a log line.
func severityGlyph(sev installer.Severity) string {
	switch sev {
	case installer.SeveritySuccess:
		return "✓"
	case installer.SeverityWarning:
		return "!"
	case installer.SeverityError:
		return "✗"
	default:
		return "ℹ"
	}
}

// RenderLogLine renders one log entry as "hh:mm:ss ✓ message".
func RenderLogLine(styles *StyleSet, e installer.LogEntry) string {
	render := styles.severityStyle(e.Severity)
	line := render(severityGlyph(e.Severity)) + " " + render(e.Message)
	if e.Timestamp != "" {
		line = styles.DimTxt.Render(e.Timestamp) + " " + line
	}
	return line
}

// RenderSteps renders the step list, one badge per step.
func RenderSteps(styles *StyleSet, steps []installer.StepState) string {
	var b strings.Builder
	for i, st := range steps {
		var badge string
		switch st.Status {
		case installer.StepSuccess:
			badge = styles.StepBadgeComplete.Render(" ✓ ")
		case installer.StepRunning:
			badge = styles.StepBadgeActive.Render(fmt.Sprintf(" %d ", i+1))
		case installer.StepError:
			badge = styles.StepBadgeFailed.Render(" ✗ ")
		default:
			badge = styles.StepBadgePending.Render(fmt.Sprintf(" %d ", i+1))
		}
		name := styles.SecondaryTxt.Render(st.Name)
		if st.Status == installer.StepRunning {
			name = styles.PrimaryTxt.Bold(true).Render(st.Name)
		}
		fmt.Fprintf(&b, "  %s  %s\n", badge, name)
	}
	return b.String()
}

// RenderState renders the one-word run state.
func RenderState(styles *StyleSet, st installer.Status) string {
	switch {
	case st.Running && st.Paused:
		return styles.WarningTxt.Render("paused")
	case st.Running:
		return styles.InfoTxt.Render("running")
	default:
		return styles.DimTxt.Render("idle")
	}
}
