package export

import (
	"encoding/xml"
	"fmt"

	"routeopt/internal/model"
)

type gpxDoc struct {
	XMLName   xml.Name      `xml:"gpx"`
	Version   string        `xml:"version,attr"`
	Creator   string        `xml:"creator,attr"`
	Namespace string        `xml:"xmlns,attr"`
	Waypoints []gpxWaypoint `xml:"wpt"`
}

type gpxWaypoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Name string  `xml:"name"`
	Desc string  `xml:"desc"`
}

// GPX renders a GPX 1.1 document with one waypoint per stop.
func GPX(r model.RouteSolution) ([]byte, error) {
	doc := gpxDoc{
		Version:   "1.1",
		Creator:   "routeopt",
		Namespace: "http://www.topografix.com/GPX/1/1",
		Waypoints: make([]gpxWaypoint, len(r.Stops)),
	}
	for i, s := range r.Stops {
		doc.Waypoints[i] = gpxWaypoint{
			Lat:  s.Location.Coordinates.Lat,
			Lon:  s.Location.Coordinates.Lng,
			Name: s.Location.Name,
			Desc: fmt.Sprintf("Stop %d: %s - %s", s.Order, s.ArrivalTime, s.DepartureTime),
		}
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
