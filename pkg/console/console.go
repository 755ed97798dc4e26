package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	// Global writer for console output
	writer io.Writer = os.Stdout

	// Mutex for thread-safe console output
	mu sync.Mutex

	// Track if we're in a progress display mode
	inProgress bool

	// ANSI color codes
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"

	// ANSI cursor control
	clearLine = "\r\033[K"

	// Check if colors are supported
	colorsSupported = isTerminal()
)

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// SetWriter sets the output writer (useful for testing)
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	writer = w
	colorsSupported = false
	inProgress = false
}

// color returns the colored string if colors are supported
func color(text, colorCode string) string {
	if !colorsSupported {
		return text
	}
	return colorCode + text + colorReset
}

// Print outputs a message to the console
func Print(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if inProgress {
		fmt.Fprint(writer, clearLine)
	}

	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(writer, msg)
	inProgress = false
}

// Info outputs an info message with optional color
func Info(format string, args ...interface{}) {
	Print("["+color("INFO", colorBlue)+"] "+format, args...)
}

// Success outputs a success message in green
func Success(format string, args ...interface{}) {
	Print("["+color("OK", colorGreen)+"] "+format, args...)
}

// Warning outputs a warning message in yellow
func Warning(format string, args ...interface{}) {
	Print("["+color("WARN", colorYellow)+"] "+format, args...)
}

// Error outputs an error message in red
func Error(format string, args ...interface{}) {
	Print("["+color("ERROR", colorRed)+"] "+format, args...)
}

// Status outputs a status message in cyan
func Status(format string, args ...interface{}) {
	Print("["+color("*", colorCyan)+"] "+format, args...)
}

// Remedy outputs a suggested fix for a preceding error
func Remedy(format string, args ...interface{}) {
	Print("["+color("?", colorYellow)+"] "+format, args...)
}

// Progress outputs a progress update that overwrites the current line
func Progress(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if colorsSupported {
		fmt.Fprint(writer, clearLine+msg)
	} else {
		// For non-terminals, print with newline
		fmt.Fprintln(writer, msg)
	}
	inProgress = true
}

// ProgressDone terminates an in-place progress line
func ProgressDone() {
	mu.Lock()
	defer mu.Unlock()

	if inProgress && colorsSupported {
		fmt.Fprintln(writer)
	}
	inProgress = false
}

// ProgressBar generates a progress bar string
func ProgressBar(current, total int64, width int) string {
	if total == 0 {
		return strings.Repeat("─", width)
	}

	percent := float64(current) * 100.0 / float64(total)
	filled := int(float64(width) * float64(current) / float64(total))

	if filled > width {
		filled = width
	}

	bar := "["
	bar += strings.Repeat("=", filled)
	if filled < width {
		bar += ">"
		bar += strings.Repeat(" ", width-filled-1)
	}
	bar += "]"

	return fmt.Sprintf("%s %6.2f%%", bar, percent)
}

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatDuration formats a duration in seconds into human-readable format
func FormatDuration(seconds int) string {
	if seconds < 0 {
		return "calculating..."
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// DownloadProgress represents download progress information
type DownloadProgress struct {
	FileName      string
	BytesReceived int64
	TotalBytes    int64
}

// FormatDownloadProgress formats download progress for display
func FormatDownloadProgress(p DownloadProgress) string {
	bar := ProgressBar(p.BytesReceived, p.TotalBytes, 30)

	received := FormatBytes(p.BytesReceived)
	total := FormatBytes(p.TotalBytes)

	return fmt.Sprintf("%s | %s | %s/%s", bar, p.FileName, received, total)
}
