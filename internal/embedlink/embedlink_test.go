package embedlink

import (
	"strings"
	"testing"
)

func TestSnippet(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantSrc string
		ok      bool
	}{
		{
			name:    "youtube watch",
			url:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantSrc: "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
			ok:      true,
		},
		{
			name:    "youtu.be short link",
			url:     "https://youtu.be/dQw4w9WgXcQ",
			wantSrc: "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
			ok:      true,
		},
		{
			name:    "youtube shorts",
			url:     "https://www.youtube.com/shorts/abc123XYZ_-",
			wantSrc: "https://www.youtube-nocookie.com/embed/abc123XYZ_-",
			ok:      true,
		},
		{
			name:    "youtube watch with extra params",
			url:     "https://m.youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
			wantSrc: "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
			ok:      true,
		},
		{
			name:    "vimeo plain",
			url:     "https://vimeo.com/123456789",
			wantSrc: "https://player.vimeo.com/video/123456789",
			ok:      true,
		},
		{
			name:    "vimeo channel path",
			url:     "https://vimeo.com/channels/staffpicks/123456789",
			wantSrc: "https://player.vimeo.com/video/123456789",
			ok:      true,
		},
		{name: "unknown host", url: "https://example.com/watch?v=abc123def45", ok: false},
		{name: "youtube without id", url: "https://www.youtube.com/watch", ok: false},
		{name: "vimeo without id", url: "https://vimeo.com/about", ok: false},
		{name: "not a url", url: "://broken", ok: false},
		{name: "non http scheme", url: "ftp://youtube.com/watch?v=abc123def45", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Snippet(tc.url)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v (snippet %q)", ok, tc.ok, got)
			}
			if !tc.ok {
				return
			}
			if !strings.Contains(got, `src="`+tc.wantSrc+`"`) {
				t.Fatalf("snippet %q does not embed %q", got, tc.wantSrc)
			}
			if !strings.HasPrefix(got, "<iframe ") || !strings.HasSuffix(got, "</iframe>") {
				t.Fatalf("snippet is not an iframe: %q", got)
			}
		})
	}
}
