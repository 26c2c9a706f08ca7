package domain

import (
	"encoding/base64"
	"strconv"
)

// Page sizes for leave request, employee and audit listings.
const (
	DefaultMaxResults = 100
	MaxMaxResults     = 1000
)

// PageRequest is the max_results / page_token pair accepted by list
// endpoints. The token is an opaque row offset.
type PageRequest struct {
	MaxResults int
	PageToken  string
}

// Offset is the number of rows to skip. Tokens this package did not issue
// read as the first page.
func (p PageRequest) Offset() int {
	if p.PageToken == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Limit is MaxResults clamped to [1, MaxMaxResults], DefaultMaxResults when unset.
func (p PageRequest) Limit() int {
	switch {
	case p.MaxResults <= 0:
		return DefaultMaxResults
	case p.MaxResults > MaxMaxResults:
		return MaxMaxResults
	default:
		return p.MaxResults
	}
}

// EncodePageToken issues the token for offset. The first page has no token.
// Tokens are URL-safe so they can be echoed back in a query string as-is.
func EncodePageToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// NextPageToken returns the token for the page after [offset, offset+limit),
// or "" once total rows have been served.
func NextPageToken(offset, limit int, total int64) string {
	next := offset + limit
	if int64(next) >= total {
		return ""
	}
	return EncodePageToken(next)
}
