package log

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

const (
	textFormat    = `%{shortfile} %{level} %{message}`
	textFormatTTY = `%{color}%{time:15:04:05.000} %{shortfile} %{level}%{color:reset} %{message}`
)

// GetTextFormat returns the color format when attached to a terminal and the
// plain one when output is redirected.
func GetTextFormat() string {
	if terminal.IsTerminal(int(os.Stdin.Fd())) {
		return textFormatTTY
	}
	return textFormat
}
