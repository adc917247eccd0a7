package places

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned for a category outside the closed set.
var ErrUnknownCategory = errors.New("unknown place category")

// Category is the kind of pet-friendly place being searched for.
type Category string

const (
	CategoryPetShop    Category = "pet"
	CategoryVeterinary Category = "veterinary"
	CategoryDogPark    Category = "dog_park"
)

// GenericLabel is shown for records that match none of the categories.
const GenericLabel = "Local Pet-Friendly"

type categoryInfo struct {
	key   string
	value string
	label string
}

// Order matters: it is both the selector order and the tag precedence
// used when labelling a record.
var categories = []struct {
	category Category
	info     categoryInfo
}{
	{CategoryPetShop, categoryInfo{key: "shop", value: "pet", label: "Pet Shop"}},
	{CategoryVeterinary, categoryInfo{key: "amenity", value: "veterinary", label: "Veterinário"}},
	{CategoryDogPark, categoryInfo{key: "leisure", value: "dog_park", label: "Parque para Cães"}},
}

// Categories lists every category in display order.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.category)
	}
	return out
}

// ParseCategory maps a selector value onto the enum.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.TrimSpace(raw))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return c, nil
}

func (c Category) lookup() (categoryInfo, bool) {
	for _, entry := range categories {
		if entry.category == c {
			return entry.info, true
		}
	}
	return categoryInfo{}, false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := c.lookup()
	return ok
}

// Label is the human-readable name of the category.
func (c Category) Label() string {
	info, ok := c.lookup()
	if !ok {
		return GenericLabel
	}
	return info.label
}

// Tag returns the OSM tag key and value selecting this category.
func (c Category) Tag() (key, value string, err error) {
	info, ok := c.lookup()
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	return info.key, info.value, nil
}

// Filter returns the Overpass QL tag filter, e.g. ["amenity"="veterinary"].
func (c Category) Filter() (string, error) {
	key, value, err := c.Tag()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%q=%q]", key, value), nil
}

// Matches reports whether the tags carry this category's tag.
func (c Category) Matches(tags map[string]string) bool {
	key, value, err := c.Tag()
	if err != nil || tags == nil {
		return false
	}
	return tags[key] == value
}

// KindLabel labels a record by its tags: pet shop first, then veterinary,
// then dog park, else the generic label.
func KindLabel(tags map[string]string) string {
	for _, entry := range categories {
		if entry.category.Matches(tags) {
			return entry.info.label
		}
	}
	return GenericLabel
}
