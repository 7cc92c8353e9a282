package mediatypes

import "testing"

func TestKindForExt(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want Kind
	}{
		{name: "JPEG image", ext: ".jpg", want: KindImage},
		{name: "PNG image", ext: ".png", want: KindImage},
		{name: "WebP image", ext: ".webp", want: KindImage},
		{name: "AVIF image", ext: ".avif", want: KindImage},
		{name: "MP4 video", ext: ".mp4", want: KindVideo},
		{name: "MKV video", ext: ".mkv", want: KindVideo},
		{name: "WebM video", ext: ".webm", want: KindVideo},
		{name: "Unknown extension", ext: ".xyz", want: KindOther},
		{name: "Text file", ext: ".txt", want: KindOther},
		{name: "Empty extension", ext: "", want: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindForExt(tt.ext); got != tt.want {
				t.Errorf("KindForExt(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestMimeForExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".jpg", "image/jpeg"},
		{".jpeg", "image/jpeg"},
		{".png", "image/png"},
		{".mp4", "video/mp4"},
		{".mkv", "video/x-matroska"},
		{".unknown", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := MimeForExt(tt.ext); got != tt.want {
			t.Errorf("MimeForExt(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestIsMedia(t *testing.T) {
	if !IsMedia(".jpg") {
		t.Error("IsMedia(.jpg) = false, want true")
	}
	if !IsMedia(".mp4") {
		t.Error("IsMedia(.mp4) = false, want true")
	}
	if IsMedia(".txt") {
		t.Error("IsMedia(.txt) = true, want false")
	}
}
