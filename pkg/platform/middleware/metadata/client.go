package metadata

import (
	"strings"

	"github.com/mssola/useragent"
)

// maxUserAgentLength bounds the header handed to the parser.
const maxUserAgentLength = 512

// ClientLabel turns a User-Agent header into "Browser on OS", or
// "Browser on Platform" for mobile agents.
func ClientLabel(userAgent string) string {
	if len(userAgent) > maxUserAgentLength {
		userAgent = userAgent[:maxUserAgentLength]
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if ua.Bot() {
		if browser == "" {
			return "bot"
		}
		return "bot: " + browser
	}

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(orUnknown(browser, "browser") + " on " + platform)
		}
	}
	return strings.TrimSpace(orUnknown(browser, "browser") + " on " + orUnknown(ua.OS(), "OS"))
}

func orUnknown(v, what string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown " + what
	}
	return v
}
