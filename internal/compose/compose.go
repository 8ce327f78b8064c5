// Package compose merges raw HTML and optional CSS into a single
// self-contained document ready for the render engine. Input markup is
// passed through verbatim; the engine is responsible for handling
// malformed or hostile content.
package compose

import "strings"

// Compose returns the composed document for the given HTML fragment and
// optional CSS. The result always begins with a doctype or contains a root
// <html> element, so feeding an already composed document back in does not
// wrap it a second time.
func Compose(html, css string) string {
	doc := html
	if css != "" {
		doc = injectCSS(html, css)
	}

	trimmed := strings.TrimSpace(doc)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "<!doctype") && !strings.Contains(lower, "<html") {
		doc = wrapDocument("", doc)
	}
	return doc
}

// injectCSS places a <style> block as close to the document head as the
// markup allows: directly after an existing <head>, inside a generated head
// after <html>, or by wrapping the whole fragment.
func injectCSS(html, css string) string {
	styleBlock := "<style>" + sanitizeCSS(css) + "</style>"
	lower := strings.ToLower(html)

	if pos := tagEnd(html, lower, "<head"); pos != -1 {
		return html[:pos] + styleBlock + html[pos:]
	}
	if pos := tagEnd(html, lower, "<html"); pos != -1 {
		return html[:pos] + "<head>" + styleBlock + "</head>" + html[pos:]
	}
	return wrapDocument(styleBlock, html)
}

// tagEnd returns the index just past the closing '>' of the first opening
// tag with the given name, or -1. The byte after the name must terminate
// it, so "<head" does not match "<header".
func tagEnd(html, lower, prefix string) int {
	for from := 0; from < len(lower); {
		idx := strings.Index(lower[from:], prefix)
		if idx == -1 {
			return -1
		}
		idx += from
		rest := lower[idx+len(prefix):]
		if rest == "" {
			return -1
		}
		switch rest[0] {
		case '>', ' ', '\t', '\n', '\r', '/':
			close := strings.IndexByte(html[idx:], '>')
			if close == -1 {
				return -1
			}
			return idx + close + 1
		}
		from = idx + len(prefix)
	}
	return -1
}

// sanitizeCSS escapes sequences that could close the <style> block early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

func wrapDocument(head, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n  <meta charset=\"UTF-8\">\n")
	if head != "" {
		b.WriteString("  " + head + "\n")
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>")
	return b.String()
}
