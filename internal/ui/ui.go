// Package ui renders the human-facing diagnostics stream: menu prompts, key
// echo, colour changes and error indications.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sweeney/rgb-controller/internal/logic"
	"github.com/sweeney/rgb-controller/internal/sensor"
	"github.com/sweeney/rgb-controller/internal/session"
	"github.com/sweeney/rgb-controller/internal/thermo"
)

var (
	ColorTitle   = color.New(color.FgHiWhite, color.Bold)
	ColorKey     = color.New(color.FgHiCyan)
	ColorValue   = color.New(color.FgHiYellow)
	ColorMuted   = color.New(color.FgHiBlack)
	ColorSuccess = color.New(color.FgHiGreen, color.Bold)
	ColorError   = color.New(color.FgHiRed, color.Bold)
	ColorWarn    = color.New(color.FgHiYellow, color.Bold)
	ColorInfo    = color.New(color.FgHiCyan)
)

// swatches index basic terminal colours by lit channels (bit 0 red,
// bit 1 green, bit 2 blue).
var swatches = [8]*color.Color{
	color.New(color.FgHiBlack),
	color.New(color.FgRed),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
	color.New(color.FgWhite),
}

// SetNoColor disables colour output globally.
func SetNoColor(off bool) {
	color.NoColor = off
}

// Menus holds the prompts printed on mode entry.
var Menus = map[session.Mode][]string{
	session.ModeStaticColor: {
		"If you want to know the prompts, press A again",
		"Press 1. Red",
		"Press 2. Green",
		"Press 3. Blue",
		"Press 4. Yellow",
		"Press 5. Cyan",
		"Press 6. Magenta",
		"Press 7. White",
		"Press 8. Off",
		"Press 9. Flash",
		"Press 0. Brightness",
		"Press any mode key to leave",
	},
	session.ModeBrightness: {
		"Press 1. to Increase Brightness",
		"Press 2. to Decrease Brightness",
		"Press 3. to Exit Brightness Menu",
		"Mode keys (A, B, C or D) also leave the menu",
	},
	session.ModeFlash: {
		"Press any key to stop flashing",
	},
	session.ModeColorCycle: {
		"Press 1-9 to set the cycle speed",
	},
	session.ModeCustomColor: {
		"Type 0-255 for red, then press #",
		"Green and blue follow the same way",
		"Press * to cancel",
	},
	session.ModeRandomColor: {
		"Press # or D for another colour",
	},
}

// Console writes diagnostics to a stream.
type Console struct {
	out io.Writer
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Banner prints a title line.
func (c *Console) Banner(title string) {
	ColorTitle.Fprintln(c.out, title)
	ColorMuted.Fprintln(c.out, strings.Repeat("─", len(title)))
}

// Info prints a neutral line.
func (c *Console) Info(format string, args ...any) {
	ColorInfo.Fprintf(c.out, format+"\n", args...)
}

// Warn prints a warning line.
func (c *Console) Warn(format string, args ...any) {
	ColorWarn.Fprint(c.out, "warning: ")
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Fail prints an error line.
func (c *Console) Fail(err error) {
	ColorError.Fprint(c.out, "error: ")
	fmt.Fprintln(c.out, err)
}

// Menu prints the prompts for m, if it has any.
func (c *Console) Menu(m session.Mode) {
	for _, line := range Menus[m] {
		ColorMuted.Fprint(c.out, "  ")
		fmt.Fprintln(c.out, line)
	}
}

// Swatch returns a coloured block approximating rgb.
func Swatch(rgb logic.RGB) string {
	i := 0
	if rgb.R > 0 {
		i |= 1
	}
	if rgb.G > 0 {
		i |= 2
	}
	if rgb.B > 0 {
		i |= 4
	}
	return swatches[i].Sprint("●")
}

// Event renders one session event.
func (c *Console) Event(e session.Event) {
	switch e.Type {
	case session.EventKey:
		ColorMuted.Fprint(c.out, "Input: ")
		ColorKey.Fprintln(c.out, e.Key)
	case session.EventModeEnter:
		if e.Detail == "resume" {
			ColorTitle.Fprintf(c.out, "Back to %s\n", e.Mode)
			return
		}
		ColorTitle.Fprintf(c.out, "%s\n", e.Mode)
		c.Menu(e.Mode)
	case session.EventMenu:
		c.Menu(e.Mode)
	case session.EventColor:
		fmt.Fprintf(c.out, "%s %s", Swatch(e.Color), ColorValue.Sprint(e.Color))
		if e.Detail != "" {
			ColorMuted.Fprintf(c.out, " (%s)", e.Detail)
		}
		fmt.Fprintln(c.out)
	case session.EventInvalidKey:
		ColorError.Fprintf(c.out, "Invalid key %s in %s\n", e.Key, e.Mode)
	case session.EventReset:
		ColorWarn.Fprintf(c.out, "Reset from %s\n", e.Mode)
	case session.EventCancel:
		ColorWarn.Fprintf(c.out, "%s cancelled\n", e.Mode)
	case session.EventChannel, session.EventSpeed:
		ColorInfo.Fprintln(c.out, e.Detail)
	case session.EventAlertOn:
		ColorError.Fprintln(c.out, "ALERT")
	case session.EventAlertOff:
		ColorSuccess.Fprintln(c.out, "Alert cleared")
	default:
		fmt.Fprintf(c.out, "%s %s\n", e.Type, e.Detail)
	}
}

// Reading prints a sensor reading with its band.
func (c *Console) Reading(r sensor.Reading, band thermo.Band) {
	ColorKey.Fprint(c.out, "Humidity: ")
	ColorValue.Fprintf(c.out, "%.1f%%", r.Humidity)
	ColorKey.Fprint(c.out, " | Temperature: ")
	ColorValue.Fprintf(c.out, "%.1f°C, %.1f°F", r.TempC, r.TempF)
	ColorKey.Fprint(c.out, " | Heat index: ")
	ColorValue.Fprintf(c.out, "%.1f°C, %.1f°F", r.HeatIndexC(), r.HeatIndexF())
	ColorMuted.Fprintf(c.out, " [%s]\n", band)
}
