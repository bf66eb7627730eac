package fetch

import (
	"net/url"
	"strings"
	"unicode"
)

// Platform is a job board (applicant tracking system) a posting is hosted on.
type Platform string

// Known platforms
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

type platformRules struct {
	hosts   []string
	content []string
	noise   []string
	// tenantInPath is set when the company slug is the first path segment
	// rather than the first host label.
	tenantInPath bool
}

var platforms = map[Platform]platformRules{
	PlatformGreenhouse: {
		hosts:        []string{"greenhouse.io"},
		content:      []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:        []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
		tenantInPath: true,
	},
	PlatformLever: {
		hosts:        []string{"lever.co"},
		content:      []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:        []string{".apply-section", ".lever-application-form", ".posting-apply"},
		tenantInPath: true,
	},
	PlatformWorkday: {
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
}

var genericContent = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// Application forms, EEO statements and share widgets appear on most boards.
var commonNoise = []string{
	"#application-form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".eeo-section",
	".voluntary-disclosure",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board from a posting URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for platform, rules := range platforms {
		for _, h := range rules.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns the selectors that locate the posting body.
func PlatformContentSelectors(platform Platform) []string {
	if rules, ok := platforms[platform]; ok {
		return rules.content
	}
	return genericContent
}

// PlatformNoiseSelectors returns the selectors removed before extraction.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string(nil), commonNoise...)
	if rules, ok := platforms[platform]; ok {
		noise = append(noise, rules.noise...)
	}
	return noise
}

// CompanyFromURL guesses a display name for the hiring company: the board's
// tenant slug on hosted platforms, otherwise the registrable domain label.
func CompanyFromURL(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	labels := strings.Split(host, ".")

	var slug string
	switch platform := DetectPlatform(urlStr); {
	case platforms[platform].tenantInPath:
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		slug = segments[0]
	case platform == PlatformWorkday:
		slug = labels[0]
	case len(labels) >= 2:
		slug = labels[len(labels)-2]
	default:
		slug = host
	}
	return displayName(slug)
}

func displayName(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
