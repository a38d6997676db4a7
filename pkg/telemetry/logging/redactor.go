package logging

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// mask replaces a recognized secret value.
const mask = "***"

// sensitiveParams are query parameter names whose values are masked in
// URLs. Solana RPC endpoints carry the access credential in the URL
// itself (https://mainnet.helius-rpc.com/?api-key=...), so any logged
// endpoint is a leak until masked.
var sensitiveParams = map[string]struct{}{
	"api-key":      {},
	"api_key":      {},
	"apikey":       {},
	"key":          {},
	"token":        {},
	"access-token": {},
	"access_token": {},
	"auth":         {},
	"secret":       {},
}

// Redactor masks credential material in logged values.
type Redactor struct {
	pattern *regexp.Regexp
}

// NewRedactor creates a Redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		pattern: regexp.MustCompile(`(?i)\b(api[-_]?key|access[-_]?token|token|auth|secret|key)=([^&\s"']+)`),
	}
}

// RedactURL masks sensitive query parameter values and any userinfo
// password in a URL. Strings that do not parse as URLs fall back to the
// name=value pattern match.
func (r *Redactor) RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return r.RedactString(raw)
	}

	changed := false
	if u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), mask)
			changed = true
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		for name := range q {
			if isSensitiveParam(name) {
				q.Set(name, mask)
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	if !changed {
		return raw
	}
	return u.String()
}

// RedactString masks name=value credential pairs anywhere in a string.
// Error chains often embed full request URLs, so this catches credentials
// that never pass through RedactURL.
func (r *Redactor) RedactString(s string) string {
	if !strings.Contains(s, "=") {
		return s
	}
	return r.pattern.ReplaceAllString(s, "$1="+mask)
}

func isSensitiveParam(name string) bool {
	_, ok := sensitiveParams[strings.ToLower(name)]
	return ok
}

// replaceAttr is installed as the handler's ReplaceAttr hook. Attributes
// named url or endpoint get full URL masking; every other string value
// gets the pattern fallback.
func (r *Redactor) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}

	v := a.Value.String()
	switch a.Key {
	case "url", "endpoint":
		a.Value = slog.StringValue(r.RedactURL(v))
	default:
		if strings.Contains(v, "=") {
			a.Value = slog.StringValue(r.RedactString(v))
		}
	}
	return a
}
