package instagram

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"
)

// dataEndpointMarkers identify network responses worth intercepting
// during a feed crawl.
var dataEndpointMarkers = []string{
	"graphql/query",
	"api/v1/feed",
}

// ReelsURL constructs the reels tab URL for a user
func ReelsURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/reels/", BaseURL, username)
}

// ReelURL constructs the canonical URL for a single reel
func ReelURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/reel/%s/", BaseURL, shortcode)
}

// PostInfoURL constructs the JSON data URL for a single post
func PostInfoURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return BaseURL + postInfoPath(shortcode)
}

func postInfoPath(shortcode string) string {
	return fmt.Sprintf("/p/%s/?__a=1&__d=dis", shortcode)
}

// SyntheticThumbnailURL constructs the media redirect URL used as a
// thumbnail when no direct image URL is known.
func SyntheticThumbnailURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s/media/?size=l", BaseURL, shortcode)
}

// ShortcodeFromURL extracts the post shortcode from a reel or post URL.
// It accepts /reel/, /reels/ and /p/ paths on any instagram.com host.
func ShortcodeFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	host := strings.ToLower(parsed.Hostname())
	if host != "instagram.com" && !strings.HasSuffix(host, ".instagram.com") {
		return "", fmt.Errorf("not an instagram url: %s", rawURL)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 {
		return "", fmt.Errorf("no shortcode in url: %s", rawURL)
	}

	switch segments[0] {
	case "reel", "reels", "p", "tv":
	default:
		return "", fmt.Errorf("not a post url: %s", rawURL)
	}

	// Last non-empty segment is the shortcode.
	for i := len(segments) - 1; i >= 1; i-- {
		if segments[i] != "" {
			return segments[i], nil
		}
	}
	return "", fmt.Errorf("no shortcode in url: %s", rawURL)
}

// IsDataEndpoint reports whether a response URL carries timeline data
// worth buffering during a crawl.
func IsDataEndpoint(responseURL string) bool {
	for _, marker := range dataEndpointMarkers {
		if strings.Contains(responseURL, marker) {
			return true
		}
	}
	return false
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername removes any invalid characters from a username
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}

	// Remove @ symbol if present at the beginning
	if username[0] == '@' {
		username = username[1:]
	}

	// Remove any trailing slashes or spaces
	for len(username) > 0 && (username[len(username)-1] == '/' || username[len(username)-1] == ' ') {
		username = username[:len(username)-1]
	}

	return username
}
