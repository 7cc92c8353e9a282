// Package embedlink generates best-effort HTML embed snippets for
// recognized third-party video URLs. Recognition is host and path
// pattern matching only; unrecognized URLs return no snippet rather
// than an error.
package embedlink

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
)

var (
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)
	vimeoIDPattern   = regexp.MustCompile(`^[0-9]+$`)
)

// Snippet returns an iframe embed snippet for a recognized video URL.
// The second return is false when the URL is not recognized.
func Snippet(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if id := youtubeID(u); id != "" {
			return iframe("https://www.youtube-nocookie.com/embed/" + id), true
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); youtubeIDPattern.MatchString(id) {
			return iframe("https://www.youtube-nocookie.com/embed/" + id), true
		}
	case "vimeo.com", "player.vimeo.com":
		if id := vimeoID(u); id != "" {
			return iframe("https://player.vimeo.com/video/" + id), true
		}
	}
	return "", false
}

func youtubeID(u *url.URL) string {
	if strings.HasPrefix(u.Path, "/watch") {
		if id := u.Query().Get("v"); youtubeIDPattern.MatchString(id) {
			return id
		}
		return ""
	}
	for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
		if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
			id := strings.SplitN(rest, "/", 2)[0]
			if youtubeIDPattern.MatchString(id) {
				return id
			}
		}
	}
	return ""
}

func vimeoID(u *url.URL) string {
	// last numeric path segment: vimeo.com/12345, vimeo.com/channels/x/12345
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if vimeoIDPattern.MatchString(segs[i]) {
			return segs[i]
		}
	}
	return ""
}

func iframe(src string) string {
	return fmt.Sprintf(
		`<iframe src="%s" frameborder="0" allow="autoplay; fullscreen; picture-in-picture" allowfullscreen></iframe>`,
		html.EscapeString(src))
}
