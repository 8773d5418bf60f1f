package showdown

import (
	"net/url"
	"strconv"
)

const (
	// SearchEndpoint is the listing path relative to the base URL
	SearchEndpoint = "search.json"

	// ReplaySuffix is appended to a battle id to form its replay path
	ReplaySuffix = ".json"
)

// SearchURL builds the listing URL for a format. Page 1 carries no page
// parameter.
func SearchURL(baseURL, format string, page int) string {
	u := baseURL + SearchEndpoint + "?format=" + url.QueryEscape(format)
	if page > 1 {
		u += "&page=" + strconv.Itoa(page)
	}
	return u
}

// ReplayURL builds the replay document URL for a battle id
func ReplayURL(baseURL, battleID string) string {
	return baseURL + url.PathEscape(battleID) + ReplaySuffix
}
