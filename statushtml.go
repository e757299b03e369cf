package tweenguide

import (
	"html/template"
	"strings"
)

// StatusViewHTML converts a rendered watcher status view (the ANSI-styled
// output of WatcherModel.View) into HTML for embedding in flipbook reports.
func StatusViewHTML(view string) template.HTML {
	trimmed := strings.TrimSpace(view)
	if trimmed == "" {
		return template.HTML(`<div style="color: #666;">No status output at this point</div>`)
	}
	return template.HTML(ansiToHTML(trimmed))
}

// ansiToHTML converts ANSI escape sequences to HTML spans using a state machine.
func ansiToHTML(ansiText string) string {
	var result strings.Builder
	i := 0

	for i < len(ansiText) {
		char := ansiText[i]

		// Skip carriage returns
		if char == '\r' {
			i++
			continue
		}

		// Convert newlines to HTML
		if char == '\n' {
			result.WriteString("<br>")
			i++
			continue
		}

		// Check for ANSI escape sequence
		if char == '\x1b' && i+1 < len(ansiText) && ansiText[i+1] == '[' {
			i += 2 // Skip \x1b[

			var seqBuilder strings.Builder
			for i < len(ansiText) {
				c := ansiText[i]
				if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
					// Found the terminator
					seqBuilder.WriteByte(c)
					i++
					break
				}
				seqBuilder.WriteByte(c)
				i++
			}

			if html := sequenceToHTML(seqBuilder.String()); html != "" {
				result.WriteString(html)
			}
			// Skip unknown sequences (cursor movements, clears, etc.)

		} else {
			switch char {
			case '&':
				result.WriteString("&amp;")
			case '<':
				result.WriteString("&lt;")
			case '>':
				result.WriteString("&gt;")
			default:
				result.WriteByte(char)
			}
			i++
		}
	}

	return result.String()
}

// sequenceToHTML maps the sequences the status view palette emits to spans.
func sequenceToHTML(sequence string) string {
	switch sequence {
	case "0m":
		return "</span>"
	case "1;38;5;212m", "38;5;212;1m":
		return `<span style="color: #ff87d7; font-weight: bold;">`
	case "38;5;243m":
		return `<span style="color: #767676;">`
	case "38;5;42m":
		return `<span style="color: #00d787;">`
	case "38;5;203m":
		return `<span style="color: #ff5f5f;">`
	default:
		// Skip unknown sequences (cursor movements, clears, etc.)
		return ""
	}
}
