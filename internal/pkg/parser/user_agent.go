package parser

import "strings"

// Client is the operating system and browser named by a User-Agent header.
type Client struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

type rule struct {
	name    string
	needles []string
}

// Order matters: mobile agents also claim desktop platforms, and Edge and
// Opera also claim Chrome.
var (
	osRules = []rule{
		{"Android", []string{"android"}},
		{"iOS", []string{"iphone", "ipad", "ipod"}},
		{"Windows", []string{"windows"}},
		{"macOS", []string{"mac os", "macintosh"}},
		{"ChromeOS", []string{"cros"}},
		{"Linux", []string{"linux"}},
	}
	browserRules = []rule{
		{"Edge", []string{"edg/", "edge/"}},
		{"Opera", []string{"opr/", "opera"}},
		{"Firefox", []string{"firefox", "fxios"}},
		{"Chrome", []string{"chrome", "crios"}},
		{"Safari", []string{"safari"}},
		{"curl", []string{"curl/"}},
		{"consolectl", []string{"consolectl/"}},
	}
)

func match(ua string, rules []rule) string {
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(ua, n) {
				return r.name
			}
		}
	}
	return "Unknown"
}

func ParseUserAgent(ua string) Client {
	lower := strings.ToLower(ua)
	return Client{OS: match(lower, osRules), Browser: match(lower, browserRules)}
}
