package mediatypes

import "time"

// Kind represents the kind of a media item.
type Kind string

const (
	// KindImage represents an image file.
	KindImage Kind = "image"
	// KindVideo represents a video file.
	KindVideo Kind = "video"
	// KindOther represents an unknown or unsupported file type.
	KindOther Kind = "other"
)

// Item describes one entry in the media collection. Items are immutable
// per refresh cycle; identity is Path, not struct equality. Two refreshes
// may produce different Item values for the same path (e.g. after a
// rename), so callers key caches by Path.
type Item struct {
	// Path is the logical path and unique key of the item.
	Path string `json:"path"`
	// Name is the display name (base filename).
	Name string `json:"name"`
	// URL is the resolved, loadable content URL.
	URL string `json:"url"`
	// ModTime is the last-modified timestamp.
	ModTime time.Time `json:"modTime"`
	// CreateTime is the creation timestamp, where the filesystem knows it.
	CreateTime time.Time `json:"createTime"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// Kind is the media kind (image or video).
	Kind Kind `json:"kind"`
}

// SortField specifies which field to sort the collection by.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByName sorts items by display name.
	SortByName SortField = "name"
	// SortByDate sorts items by modification time.
	SortByDate SortField = "date"
	// SortByCreated sorts items by creation time.
	SortByCreated SortField = "created"
	// SortBySize sorts items by file size.
	SortBySize SortField = "size"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
	".ico":  true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
	".avif": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
}

// KindForExt returns the Kind for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns KindOther if the extension is not recognized.
func KindForExt(ext string) Kind {
	if ImageExtensions[ext] {
		return KindImage
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	return KindOther
}

// MimeForExt returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func MimeForExt(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsMedia returns true if the extension represents a supported media file.
func IsMedia(ext string) bool {
	return KindForExt(ext) != KindOther
}
