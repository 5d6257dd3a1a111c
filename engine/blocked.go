package engine

import (
	"net/http"
	"strings"
)

// BlockedPhrases are anti-bot markers matched against the lower-cased body.
// Entries must not match ordinary product pages, which often carry bare
// words like "robot" or "captcha" in script JSON, or an embedded captcha
// widget in a newsletter or review form. Only challenge-page markers belong
// here.
var BlockedPhrases = []string{
	"enter the characters you see below",
	"type the characters you see in this image",
	"/errors/validatecaptcha",
	"captcha-delivery.com",
	"cf-challenge",
	"cf_chl_opt",
	"attention required! | cloudflare",
	"checking your browser before accessing",
	"are you a robot",
	"are you a human",
	"i am not a robot",
	"verify you are human",
	"verify you are a human",
	"robot check",
	"bot verification",
	"unusual traffic from your computer",
	"automated access to amazon data",
	"access to this page has been denied",
	"<title>access denied</title>",
	"pardon our interruption",
	"request blocked",
	"px-captcha",
}

// IsLikelyBlocked reports whether a response looks like an anti-automation
// wall rather than content. 403 and 429 always count.
func IsLikelyBlocked(status int, body string) bool {
	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		return true
	}
	lower := strings.ToLower(body)
	for _, p := range BlockedPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
