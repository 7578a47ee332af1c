package export

import (
	"fmt"
	"strconv"
	"strings"

	"routeopt/internal/model"
)

const csvHeader = "Order,Location,Address,Arrival Time,Departure Time,Duration,Distance From Previous"

// CSV writes the header and one row per stop. Fields are joined as-is:
// embedded commas are not quoted, matching what downstream sheets expect.
func CSV(r model.RouteSolution) string {
	lines := make([]string, 0, len(r.Stops)+1)
	lines = append(lines, csvHeader)
	for _, s := range r.Stops {
		lines = append(lines, strings.Join([]string{
			strconv.Itoa(s.Order),
			s.Location.Name,
			s.Location.Address,
			s.ArrivalTime,
			s.DepartureTime,
			strconv.Itoa(s.Location.EstimatedDuration),
			fmt.Sprintf("%.2f", s.DistanceFromPrevious),
		}, ","))
	}
	return strings.Join(lines, "\n")
}
