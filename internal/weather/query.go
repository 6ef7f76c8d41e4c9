package weather

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// CurrentPath is the current-conditions endpoint, relative to the API base URL.
const CurrentPath = "/v2.0/current"

// QueryOptions are the location parameters of a current-conditions request.
// Coordinates are sent only when both are set. Coordinates and a postcode
// may be sent together; the server decides which wins.
type QueryOptions struct {
	Lat      *float64
	Lon      *float64
	Postcode string
}

// Coordinates is a convenience constructor for a lat/lon query.
func Coordinates(lat, lon float64) QueryOptions {
	return QueryOptions{Lat: &lat, Lon: &lon}
}

// Postcode is a convenience constructor for a postal_code query.
func Postcode(code string) QueryOptions {
	return QueryOptions{Postcode: code}
}

// BuildQueryParams encodes opts and the API key in a fixed order: lat, lon,
// postal_code, key. url.Values is not used because it sorts keys.
func BuildQueryParams(opts QueryOptions, apiKey string) string {
	var parts []string
	add := func(k, v string) {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}

	if opts.Lat != nil && opts.Lon != nil {
		add("lat", formatFloat(*opts.Lat))
		add("lon", formatFloat(*opts.Lon))
	}
	if opts.Postcode != "" {
		add("postal_code", opts.Postcode)
	}
	add("key", apiKey)

	return strings.Join(parts, "&")
}

// CurrentURL resolves CurrentPath against base and attaches the query.
func CurrentURL(base string, opts QueryOptions, apiKey string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing weather base URL: %w", err)
	}
	u = u.JoinPath(CurrentPath)
	u.RawQuery = BuildQueryParams(opts, apiKey)
	return u.String(), nil
}

// formatFloat prints the shortest representation that round-trips, so 1
// encodes as "1" and -33.8523 as "-33.8523".
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
