package overpass

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PetMap-Recife/server/internal/domain/places"
)

// QueryTimeoutSeconds is the server-side [timeout:] setting sent with every query.
const QueryTimeoutSeconds = 25

// geometryKinds are queried in this order; ways and relations come back with
// a computed center because the query ends in "out center".
var geometryKinds = []string{"node", "way", "relation"}

// BuildQuery renders the Overpass QL query for params. The category filter is
// emitted once per geometry kind. Params are validated first, so an unknown
// category is rejected with places.ErrUnknownCategory instead of producing a
// filter-less query.
func BuildQuery(params places.SearchParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	filter, err := params.Category.Filter()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	around := fmt.Sprintf("(around:%s,%s,%s)",
		formatFloat(params.RadiusMeters),
		formatFloat(params.Lat),
		formatFloat(params.Lon))

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", QueryTimeoutSeconds)
	for _, kind := range geometryKinds {
		b.WriteString("  ")
		b.WriteString(kind)
		b.WriteString(filter)
		b.WriteString(around)
		b.WriteString(";\n")
	}
	b.WriteString(");\nout center;\n")
	return b.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
