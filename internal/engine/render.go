package engine

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var tones = map[tone]*color.Color{
	toneGood: color.New(color.FgGreen),
	toneWarn: color.New(color.FgYellow),
	toneBad:  color.New(color.FgRed),
}

// RenderText writes the console report. Colors follow color.NoColor, which
// fatih/color turns on when stdout is not a terminal.
func RenderText(w io.Writer, r *Report) error {
	for _, l := range r.entries() {
		text := l.text
		if c, ok := tones[l.tone]; ok {
			text = c.Sprint(text)
		}
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
