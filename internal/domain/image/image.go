package image

import (
	"fmt"
	"net/url"
	"time"
)

// PropertyImage is a photo attached to a property listing.
type PropertyImage struct {
	id         int64
	propertyID int64
	url        string
	createdAt  time.Time
}

// NewPropertyImage creates a new image. The id must come from the sequence allocator.
func NewPropertyImage(id, propertyID int64, rawURL string) (*PropertyImage, error) {
	if id <= 0 {
		return nil, fmt.Errorf("image ID must be allocated")
	}
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return &PropertyImage{
		id:         id,
		propertyID: propertyID,
		url:        rawURL,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a PropertyImage from persistence.
func Reconstruct(id, propertyID int64, rawURL string, createdAt time.Time) *PropertyImage {
	return &PropertyImage{id: id, propertyID: propertyID, url: rawURL, createdAt: createdAt}
}

// Getters.
func (i *PropertyImage) ID() int64            { return i.id }
func (i *PropertyImage) PropertyID() int64    { return i.propertyID }
func (i *PropertyImage) URL() string          { return i.url }
func (i *PropertyImage) CreatedAt() time.Time { return i.createdAt }

// ValidateURL requires an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid image URL: %q", rawURL)
	}
	return nil
}

// Diff compares the current images with the wanted URL list. It returns the images
// to delete and the URLs to insert, in the order they were requested. Duplicate
// wanted URLs are collapsed.
func Diff(current []*PropertyImage, wanted []string) (remove []*PropertyImage, add []string) {
	want := make(map[string]struct{}, len(wanted))
	for _, u := range wanted {
		want[u] = struct{}{}
	}
	have := make(map[string]struct{}, len(current))
	for _, img := range current {
		have[img.url] = struct{}{}
		if _, ok := want[img.url]; !ok {
			remove = append(remove, img)
		}
	}
	for _, u := range wanted {
		if _, ok := have[u]; ok {
			continue
		}
		have[u] = struct{}{}
		add = append(add, u)
	}
	return remove, add
}
