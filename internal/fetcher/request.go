package fetcher

import (
	"net/url"
	"strings"

	"photo_feed/internal/model"
)

// Tag modes understood by the feed.
const (
	TagModeAll = "ALL"
	TagModeAny = "ANY"
)

// BuildURL returns the feed URL for req. Query parameters are always written
// in the same order: tags, lang, tagmode, format, nojsoncallback.
//
// An empty base endpoint yields an empty URL, which the fetcher reports as
// model.StatusNotInitialized. A base endpoint that does not parse is returned
// with the query appended verbatim so the failure surfaces at fetch time.
func BuildURL(req model.FetchRequest) string {
	if req.BaseURL == "" {
		return ""
	}

	mode := TagModeAny
	if req.MatchAll {
		mode = TagModeAll
	}

	params := [][2]string{
		{"tags", req.Tags},
		{"lang", req.Lang},
		{"tagmode", mode},
		{"format", "json"},
		{"nojsoncallback", "1"},
	}

	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(p[0]))
		b.WriteByte('=')
		b.WriteString(escape(p[1]))
	}
	query := b.String()

	u, err := url.Parse(req.BaseURL)
	if err != nil {
		return req.BaseURL + "?" + query
	}
	if u.RawQuery != "" {
		u.RawQuery += "&" + query
	} else {
		u.RawQuery = query
	}
	return u.String()
}

// escape percent-encodes s, writing spaces as %20 rather than '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
