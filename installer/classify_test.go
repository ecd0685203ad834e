package installer

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantSev Severity
		wantMsg string
	}{
		{"error word", "[ERROR] disk full", SeverityError, "disk full"},
		{"error glyph", "[✗] Docker failed", SeverityError, "Docker failed"},
		{"warning word", "[WARNING] port 53 busy", SeverityWarning, "port 53 busy"},
		{"warning glyph", "[!] low memory", SeverityWarning, "low memory"},
		{"success word", "[SUCCESS] Docker installed", SeveritySuccess, "Docker installed"},
		{"success glyph", "[✓] Docker installed", SeveritySuccess, "Docker installed"},
		{"info word", "[INFO] checking", SeverityInfo, "checking"},
		{"info glyph", "[ℹ] checking", SeverityInfo, "checking"},
		{"step banner", "[STEP] Installing Docker", SeverityInfo, "Installing Docker"},
		{"no marker", "  plain output  ", SeverityInfo, "plain output"},
		{"empty", "", SeverityInfo, ""},
		{"error beats success", "[✓] done [ERROR] but not really", SeverityError, "[✓] done  but not really"},
		{"warning beats info", "[INFO] [!] careful", SeverityWarning, "[INFO]  careful"},
		{"only first occurrence removed", "[!] a [!] b", SeverityWarning, "a [!] b"},
		{"ansi colours", "\x1b[0;32m[✓]\x1b[0m Firewall configured", SeveritySuccess, "Firewall configured"},
		{"ansi without marker", "\x1b[1mbold\x1b[0m", SeverityInfo, "bold"},
		{"marker mid line", "12:00 [ERROR] boom", SeverityError, "12:00  boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev, msg := Classify(tt.line)
			if sev != tt.wantSev {
				t.Errorf("severity = %q, want %q", sev, tt.wantSev)
			}
			if msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}
