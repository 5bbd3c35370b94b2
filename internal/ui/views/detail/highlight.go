package detail

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/tidwall/pretty"
)

// sniffLexer guesses the chroma lexer for a stored request body. Bodies
// carry no content type, so the first byte decides.
func sniffLexer(body string) string {
	trimmed := strings.TrimSpace(body)
	switch {
	case trimmed == "":
		return "text"
	case (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid([]byte(trimmed)):
		return "json"
	case trimmed[0] == '<':
		if strings.HasPrefix(strings.ToLower(trimmed), "<!doctype html") || strings.HasPrefix(strings.ToLower(trimmed), "<html") {
			return "html"
		}
		return "xml"
	}
	return "text"
}

// renderBody pretty-prints JSON bodies and highlights the result.
func renderBody(body string) string {
	lexerName := sniffLexer(body)
	src := body
	if lexerName == "json" {
		src = strings.TrimRight(string(pretty.Pretty([]byte(body))), "\n")
	}
	if lexerName == "text" {
		return src
	}
	return highlight(src, lexerName)
}

func highlight(source, lexerName string) string {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}
