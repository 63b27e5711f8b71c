package pipeline

import "strings"

// headClose marks where the page stylesheet goes.
const headClose = "</head>"

// withStyle places css in a <style> block just before the closing head
// tag of doc. Documents without a head get the block prepended.
func withStyle(doc, css string) string {
	if css == "" {
		return doc
	}
	block := "<style>" + escapeStyleText(css) + "</style>\n"
	if i := strings.Index(doc, headClose); i >= 0 {
		return doc[:i] + block + doc[i:]
	}
	return block + doc
}

// escapeStyleText keeps a user stylesheet from closing its <style>
// element. "<\/" is equivalent to "</" inside CSS strings.
func escapeStyleText(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
