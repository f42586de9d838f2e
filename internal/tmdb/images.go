package tmdb

import "strings"

// Image sizes used by the listing surfaces.
const (
	SizePoster   = "w500"
	SizeOriginal = "original"
	SizeProfile  = "w185"
	SizeLogo     = "w92"
)

// ImageURL joins an image base URL, a size and a TMDB file path. An empty path yields "".
func ImageURL(base, size, path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + "/" + size + path
}
