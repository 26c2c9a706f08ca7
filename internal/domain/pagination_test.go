package domain

import (
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Limit(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want int
	}{
		{"unset uses default", 0, DefaultMaxResults},
		{"negative uses default", -5, DefaultMaxResults},
		{"one audit row", 1, 1},
		{"a team's requests", 25, 25},
		{"capped", MaxMaxResults + 1, MaxMaxResults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageRequest{MaxResults: tt.max}.Limit())
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"first page", "", 0},
		{"issued token", EncodePageToken(40), 40},
		{"not base64", "%%%", 0},
		{"not a number", base64.RawURLEncoding.EncodeToString([]byte("forty")), 0},
		{"negative offset", base64.RawURLEncoding.EncodeToString([]byte("-10")), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageRequest{PageToken: tt.token}.Offset())
		})
	}
}

func TestEncodePageToken_QuerySafe(t *testing.T) {
	assert.Equal(t, "", EncodePageToken(0))
	for _, offset := range []int{1, 62, 999, 123456} {
		tok := EncodePageToken(offset)
		assert.Equal(t, tok, url.QueryEscape(tok), "offset %d", offset)
	}
}

func TestNextPageToken(t *testing.T) {
	assert.Equal(t, "", NextPageToken(0, 10, 10), "exactly one page of requests")
	assert.Equal(t, EncodePageToken(10), NextPageToken(0, 10, 11))
	assert.Equal(t, "", NextPageToken(10, 10, 15), "last partial page")
}
