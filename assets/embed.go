package assets

import (
	"bufio"
	"bytes"
	_ "embed"
	"strings"
)

// GuidelinesText contains the raw guideline list shown on the instructions screen.
//
//go:embed guidelines.txt
var GuidelinesText []byte

// Guidelines returns the embedded guidelines, one entry per non-comment line.
func Guidelines() []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(GuidelinesText))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
