package gui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// LogLine is one formatted line from the logging sink
type LogLine struct {
	Level string
	Text  string
}

// parseLogLine extracts the level token from "[ts] LEVEL [component] msg"
func parseLogLine(line string) LogLine {
	text := strings.TrimRight(line, "\r\n")
	level := "INFO"
	if i := strings.Index(text, "] "); i >= 0 {
		rest := text[i+2:]
		if j := strings.IndexByte(rest, ' '); j > 0 {
			switch tok := rest[:j]; tok {
			case "DEBUG", "INFO", "WARN", "ERROR", "FATAL":
				level = tok
			}
		}
	}
	return LogLine{Level: level, Text: text}
}

// LogPanel shows the diagnostic log lines of the session
type LogPanel struct {
	lines   []LogLine
	linesMu sync.RWMutex
	maxLogs int

	logList         *widget.List
	filterSelect    *widget.Select
	autoScrollCheck *widget.Check
}

// NewLogPanel creates an empty log panel
func NewLogPanel() *LogPanel {
	return &LogPanel{
		lines:   make([]LogLine, 0, 1000),
		maxLogs: 1000,
	}
}

// Build constructs the log viewer UI
func (l *LogPanel) Build() fyne.CanvasObject {
	l.filterSelect = widget.NewSelect(
		[]string{"All", "DEBUG", "INFO", "WARN", "ERROR"},
		func(string) {
			if l.logList != nil {
				l.logList.Refresh()
			}
		},
	)
	l.filterSelect.PlaceHolder = "All"

	l.autoScrollCheck = widget.NewCheck("自动滚动", nil)
	l.autoScrollCheck.SetChecked(true)

	clearBtn := widget.NewButton("清空日志", l.Clear)

	controls := container.NewHBox(
		widget.NewLabel("级别:"),
		l.filterSelect,
		l.autoScrollCheck,
		clearBtn,
	)

	l.logList = widget.NewList(
		func() int {
			return len(l.filtered())
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("log line")
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			lines := l.filtered()
			if id < 0 || id >= len(lines) {
				return
			}
			label := item.(*widget.Label)
			switch lines[id].Level {
			case "DEBUG":
				label.Importance = widget.LowImportance
			case "WARN":
				label.Importance = widget.WarningImportance
			case "ERROR", "FATAL":
				label.Importance = widget.DangerImportance
			default:
				label.Importance = widget.MediumImportance
			}
			label.SetText(lines[id].Text)
		},
	)

	return container.NewBorder(controls, nil, nil, nil, l.logList)
}

// Append adds a line. Must run on the Fyne thread.
func (l *LogPanel) Append(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	l.linesMu.Lock()
	l.lines = append(l.lines, parseLogLine(line))
	if len(l.lines) > l.maxLogs {
		l.lines = l.lines[len(l.lines)-l.maxLogs:]
	}
	l.linesMu.Unlock()

	if l.logList != nil {
		l.logList.Refresh()
		if l.autoScrollCheck != nil && l.autoScrollCheck.Checked {
			l.logList.ScrollToBottom()
		}
	}
}

// Clear removes all lines
func (l *LogPanel) Clear() {
	l.linesMu.Lock()
	l.lines = make([]LogLine, 0, 1000)
	l.linesMu.Unlock()

	if l.logList != nil {
		l.logList.Refresh()
	}
}

// Lines returns a copy of every line, for export
func (l *LogPanel) Lines() []LogLine {
	l.linesMu.RLock()
	defer l.linesMu.RUnlock()
	out := make([]LogLine, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *LogPanel) filtered() []LogLine {
	l.linesMu.RLock()
	defer l.linesMu.RUnlock()

	selected := "All"
	if l.filterSelect != nil && l.filterSelect.Selected != "" {
		selected = l.filterSelect.Selected
	}
	if selected == "All" {
		return l.lines
	}

	var out []LogLine
	for _, line := range l.lines {
		if line.Level == selected {
			out = append(out, line)
		}
	}
	return out
}
