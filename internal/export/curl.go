// Package export renders tracked endpoints in formats other tools accept.
package export

import (
	"net/url"
	"strings"

	"github.com/sadopc/apitrack/internal/tracker"
)

// AsCurl converts an endpoint definition to a curl command string. Headers
// and params are emitted in key order so the output is stable.
func AsCurl(p tracker.Payload) string {
	parts := []string{"curl"}

	if p.Method != "" && p.Method != tracker.MethodGET {
		parts = append(parts, "-X", string(p.Method))
	}

	for _, k := range tracker.SortedKeys(p.Headers) {
		parts = append(parts, "-H", quote(k+": "+p.Headers[k]))
	}

	if p.Body != "" {
		parts = append(parts, "-d", quote(p.Body))
	}

	parts = append(parts, quote(FullURL(p)))
	return strings.Join(parts, " ")
}

// FullURL appends the encoded params to the endpoint.
func FullURL(p tracker.Payload) string {
	u := p.Endpoint
	if len(p.Params) == 0 {
		return u
	}
	params := url.Values{}
	for _, k := range tracker.SortedKeys(p.Params) {
		params.Set(k, p.Params[k])
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + params.Encode()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
