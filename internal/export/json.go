package export

import (
	"encoding/json"

	"routeopt/internal/model"
)

// JSON is the full indented serialization of the route.
func JSON(r model.RouteSolution) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
