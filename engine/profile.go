package engine

// Profile is one client identity: a header set plus whether the TLS
// handshake should look like Chrome. Profiles are plain data consumed by
// the Runner.
type Profile struct {
	Name      string
	Headers   map[string]string
	ChromeTLS bool
}

const (
	chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
	iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
)

var builtinProfiles = []Profile{
	{
		Name: "crawler",
		Headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
	},
	{
		Name: "desktop",
		Headers: map[string]string{
			"User-Agent":                chromeUA,
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-IN,en-GB;q=0.9,en-US;q=0.8,en;q=0.7",
			"Cache-Control":             "no-cache",
			"Pragma":                    "no-cache",
			"Sec-Ch-Ua":                 `"Chromium";v="125", "Google Chrome";v="125", "Not.A/Brand";v="24"`,
			"Sec-Ch-Ua-Mobile":          "?0",
			"Sec-Ch-Ua-Platform":        `"Windows"`,
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
			"Upgrade-Insecure-Requests": "1",
		},
		ChromeTLS: true,
	},
	{
		Name: "mobile",
		Headers: map[string]string{
			"User-Agent":      iphoneUA,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-IN,en;q=0.9",
		},
	},
	{
		Name: "minimal",
		Headers: map[string]string{
			"User-Agent": "curl/8.5.0",
			"Accept":     "*/*",
		},
	},
}

// DefaultProfiles returns the built-in profiles in their default order.
func DefaultProfiles() []Profile {
	out := make([]Profile, len(builtinProfiles))
	copy(out, builtinProfiles)
	return out
}

// ProfilesByName returns the built-in profiles named in names, in that
// order. Unknown names are skipped; an empty result falls back to
// DefaultProfiles.
func ProfilesByName(names []string) []Profile {
	var out []Profile
	for _, n := range names {
		for _, p := range builtinProfiles {
			if p.Name == n {
				out = append(out, p)
				break
			}
		}
	}
	if len(out) == 0 {
		return DefaultProfiles()
	}
	return out
}
