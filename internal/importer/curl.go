package importer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sadopc/apitrack/internal/tracker"
)

// ParseCurl converts one curl command into an endpoint definition. Query
// parameters in the URL become Params.
func ParseCurl(input string) (tracker.Payload, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return tracker.Payload{}, fmt.Errorf("empty input")
	}

	input = strings.ReplaceAll(input, "\\\r\n", " ")
	input = strings.ReplaceAll(input, "\\\n", " ")

	args := tokenize(input)
	if len(args) > 0 && strings.ToLower(args[0]) == "curl" {
		args = args[1:]
	}

	p := tracker.Payload{
		Method:  tracker.MethodGET,
		Headers: map[string]string{},
		Params:  map[string]string{},
	}
	var rawURL, method string
	hasBody := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-X", "--request":
			if i+1 < len(args) {
				i++
				method = args[i]
			}
		case "-H", "--header":
			if i+1 < len(args) {
				i++
				if k, v := parseHeader(args[i]); k != "" {
					p.Headers[k] = v
				}
			}
		case "-d", "--data", "--data-raw", "--data-binary", "--json":
			if i+1 < len(args) {
				i++
				p.Body = args[i]
				hasBody = true
				if arg == "--json" {
					p.Headers["Content-Type"] = "application/json"
				}
			}
		case "-A", "--user-agent":
			if i+1 < len(args) {
				i++
				p.Headers["User-Agent"] = args[i]
			}
		case "-o", "--output", "-u", "--user", "-e", "--referer":
			i++
		default:
			if !strings.HasPrefix(arg, "-") && rawURL == "" {
				rawURL = arg
			}
		}
	}

	if rawURL == "" {
		return tracker.Payload{}, fmt.Errorf("no URL found in curl command")
	}
	switch {
	case method != "":
		m, err := tracker.ParseMethod(method)
		if err != nil {
			return tracker.Payload{}, err
		}
		p.Method = m
	case hasBody:
		p.Method = tracker.MethodPOST
	}

	if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
		for k, vs := range u.Query() {
			if len(vs) > 0 {
				p.Params[k] = vs[len(vs)-1]
			}
		}
		u.RawQuery = ""
		rawURL = u.String()
	}
	if rawURL == "" {
		return tracker.Payload{}, fmt.Errorf("no URL found in curl command")
	}
	p.Endpoint = rawURL
	return p, nil
}

// splitCurlCommands splits text holding several curl commands. Each command
// starts on a line beginning with "curl".
func splitCurlCommands(s string) []string {
	var (
		cmds []string
		cur  strings.Builder
	)
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "curl") && cur.Len() > 0 && !strings.HasSuffix(strings.TrimRight(cur.String(), "\n\r "), "\\") {
			cmds = append(cmds, cur.String())
			cur.Reset()
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	if strings.TrimSpace(cur.String()) != "" {
		cmds = append(cmds, cur.String())
	}
	return cmds
}

// tokenize splits a shell command into tokens, handling quotes and escapes.
func tokenize(input string) []string {
	var (
		tokens   []string
		current  strings.Builder
		inSingle bool
		inDouble bool
		escaped  bool
		started  bool
	)
	for _, r := range input {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case r == '\\' && !inSingle:
			escaped = true
			started = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			started = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			started = true
		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && !inSingle && !inDouble:
			if started {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func parseHeader(s string) (string, string) {
	k, v, ok := strings.Cut(s, ":")
	if !ok {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(k), strings.TrimSpace(v)
}
