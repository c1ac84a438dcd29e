package middleware

import (
	"net/url"
	"strings"
)

var sensitiveParams = map[string]struct{}{
	"secret":    {},
	"init_data": {},
	"api_key":   {},
}

func redactQuery(raw string) string {
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, _, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		if _, ok := sensitiveParams[strings.ToLower(name)]; ok {
			parts[i] = key + "=REDACTED"
		}
	}
	return strings.Join(parts, "&")
}
