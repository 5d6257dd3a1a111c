package engine_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/pricelens/engine"
)

func TestIsLikelyBlocked(t *testing.T) {
	t.Parallel()

	product := "<html><body><h1>Phone</h1>" + strings.Repeat("<p>spec</p>", 50) + "</body></html>"
	withWidget := `<html><head><title>Prestige Electric Kettle 1.5L</title></head><body>
<h1>Prestige Electric Kettle 1.5L</h1><p>Price ₹1,299</p>` + strings.Repeat("<p>spec</p>", 50) + `
<form id="newsletter"><input name="email"><div class="g-recaptcha" data-sitekey="x"></div></form>
<form id="review"><textarea></textarea><div class="h-captcha" data-sitekey="y"></div></form>
</body></html>`

	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"forbidden status", http.StatusForbidden, product, true},
		{"too many requests", http.StatusTooManyRequests, product, true},
		{"ordinary product page", http.StatusOK, product, false},
		{"robot flag in script json", http.StatusOK, `<script>{"isRobot":false}</script>` + product, false},
		{"amazon captcha", http.StatusOK, "<p>Enter the characters you see below</p>", true},
		{"cloudflare challenge", http.StatusOK, "<title>Attention Required! | Cloudflare</title>", true},
		{"captcha widgets in page forms", http.StatusOK, withWidget, false},
		{"datadome challenge", http.StatusOK, `<script src="https://ct.captcha-delivery.com/c.js"></script>`, true},
		{"mixed case marker", http.StatusOK, "<h1>ARE YOU A ROBOT?</h1>", true},
		{"not found is not blocked", http.StatusNotFound, "<h1>Not Found</h1>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, engine.IsLikelyBlocked(tt.status, tt.body))
		})
	}
}
