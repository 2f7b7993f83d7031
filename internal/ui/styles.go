package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess = lipgloss.Color("#00D26A") // green: connected, success
	ColorWarning = lipgloss.Color("#FFB800") // yellow: connecting, warning
	ColorError   = lipgloss.Color("#FF4444") // red: error, disconnected
	ColorAddress = lipgloss.Color("#00B4D8") // cyan: addresses, hashes
	ColorValue   = lipgloss.Color("#FFFFFF") // white bold: balances
	ColorMeta    = lipgloss.Color("#555555") // dim gray: metadata
	ColorBorder  = lipgloss.Color("#1E3A5F") // dark blue: UI chrome
	ColorAccent  = lipgloss.Color("#9B5DE5") // purple: titles, chain names
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleAccent  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)
)

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats dim metadata text.
func Meta(msg string) string { return StyleMeta.Render(msg) }

// TruncateAddr shortens an address to 0x1234…abcd form.
func TruncateAddr(a string) string {
	if len(a) <= 12 {
		return a
	}
	return a[:6] + "…" + a[len(a)-4:]
}

// KeyValueBlock renders a titled, bordered key/value panel.
func KeyValueBlock(title string, pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	body := StyleTitle.Render(title) + "\n"
	for _, p := range pairs {
		body += StyleMeta.Render(padRight(p[0], width)) + "  " + p[1] + "\n"
	}
	return StyleBorder.Render(body)
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}
