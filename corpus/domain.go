package corpus

import (
	"net/url"
	"strings"
)

// Domain extracts the host[:port] component of a link, lowercased for
// stable comparison during deduplication. It returns "" when the link is
// empty, fails to parse, or carries no host (bare paths, fragments).
func Domain(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Host)
}
