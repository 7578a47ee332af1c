// Package export renders a solved route as JSON, CSV or GPX.
package export

import (
	"errors"
	"fmt"
	"strings"

	"routeopt/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatGPX  Format = "gpx"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts a case-insensitive format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatGPX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the media type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatGPX:
		return "application/gpx+xml"
	default:
		return "application/json"
	}
}

// Render produces the document for one route.
func Render(f Format, r model.RouteSolution) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return JSON(r)
	case FormatCSV:
		return []byte(CSV(r)), nil
	case FormatGPX:
		return GPX(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
