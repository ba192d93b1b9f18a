package services

import "fmt"

// ImageBaseURL is the TMDB image CDN prefix.
const ImageBaseURL = "https://image.tmdb.org/t/p"

// ImageClass groups the sizes the CDN serves for one kind of artwork.
type ImageClass string

const (
	Poster   ImageClass = "poster"
	Backdrop ImageClass = "backdrop"
	Profile  ImageClass = "profile"
)

// ImageSizes maps each class to its size names ordered small to original.
var ImageSizes = map[ImageClass]map[string]string{
	Poster: {
		"small":    "w185",
		"medium":   "w342",
		"large":    "w500",
		"original": "original",
	},
	Backdrop: {
		"small":    "w300",
		"medium":   "w780",
		"large":    "w1280",
		"original": "original",
	},
	Profile: {
		"small":    "w45",
		"medium":   "w185",
		"large":    "h632",
		"original": "original",
	},
}

// ImageSize resolves a named size ("small", "medium", "large", "original") for a class.
// Unknown names resolve to the medium size.
func ImageSize(class ImageClass, name string) string {
	sizes, ok := ImageSizes[class]
	if !ok {
		sizes = ImageSizes[Poster]
	}
	if s, ok := sizes[name]; ok {
		return s
	}
	return sizes["medium"]
}

// ImageURL builds the CDN URL for path at size. An empty path yields an empty string.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "original"
	}
	return fmt.Sprintf("%s/%s%s", ImageBaseURL, size, path)
}
