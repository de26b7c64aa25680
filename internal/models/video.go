package models

import (
	"net/url"
	"strings"
)

// ExtractVideoID pulls the video identifier out of the common YouTube URL
// shapes (watch?v=, youtu.be/, shorts/, embed/). Returns "" when no
// identifier can be found.
func ExtractVideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")

	switch host {
	case "youtu.be":
		return firstSegment(u.Path)
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return firstSegment(strings.TrimPrefix(u.Path, prefix))
			}
		}
	}
	return ""
}

// firstSegment returns the first path segment without slashes.
func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
