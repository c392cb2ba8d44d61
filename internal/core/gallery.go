package core

import (
	"sort"
	"strings"
)

// TagAll selects every gallery image.
const TagAll = "all"

// GalleryImage is a captioned picture with free-form tags.
type GalleryImage struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	ImageURL string   `json:"imageUrl"`
	Tags     []string `json:"tags"`
}

func (g GalleryImage) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(g.ImageURL) == "" {
		return ErrEmptyImageURL
	}
	return nil
}

// HasTag reports whether the image carries tag, ignoring case.
func (g GalleryImage) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// FilterByTag keeps the images carrying tag. Blank or "all" keeps everything.
func FilterByTag(list []GalleryImage, tag string) []GalleryImage {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, TagAll) {
		return append([]GalleryImage(nil), list...)
	}
	out := make([]GalleryImage, 0, len(list))
	for _, g := range list {
		if g.HasTag(tag) {
			out = append(out, g)
		}
	}
	return out
}

// GalleryTags returns the distinct lower-cased tags, sorted.
func GalleryTags(list []GalleryImage) []string {
	seen := map[string]struct{}{}
	for _, g := range list {
		for _, t := range g.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
