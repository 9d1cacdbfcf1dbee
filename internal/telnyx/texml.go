package telnyx

import (
	"fmt"
	"strings"
)

// UnlockTeXML builds the TeXML document that answers a call box call and
// plays the DTMF unlock tone. The call box needs the tone held for about
// two seconds, which <Play digits> cannot do, so a pre-recorded audio file
// of the held tone is played instead, repeated with short pauses, then the
// call hangs up.
func UnlockTeXML(audioURL string, iterations int, pauseSeconds float64) string {
	if iterations < 1 {
		iterations = 1
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<Response>\n")
	for i := 0; i < iterations; i++ {
		fmt.Fprintf(&b, "    <Play>%s</Play>\n", audioURL)
		if i < iterations-1 {
			fmt.Fprintf(&b, "    <Pause length=\"%g\"/>\n", pauseSeconds)
		}
	}
	b.WriteString("    <Hangup/>\n")
	b.WriteString("</Response>")
	return b.String()
}
