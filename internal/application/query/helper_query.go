// internal/application/query/helper_query.go
package query

import "strings"

// maskID shortens identities for logs.
func maskID(s string) string {
	t := strings.TrimSpace(s)
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
