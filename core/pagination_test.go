package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Clean(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{name: "defaults", in: PageRequest{}, want: PageRequest{Page: 1, PerPage: DefaultPerPage}},
		{name: "negative", in: PageRequest{Page: -3, PerPage: -1}, want: PageRequest{Page: 1, PerPage: DefaultPerPage}},
		{name: "per page capped", in: PageRequest{Page: 2, PerPage: 500}, want: PageRequest{Page: 2, PerPage: MaxPerPage}},
		{name: "huge page", in: PageRequest{Page: 700000000000000000, PerPage: 15}, want: PageRequest{Page: MaxPage, PerPage: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := tt.in
			pr.Clean()
			assert.Equal(t, tt.want, pr)
			assert.GreaterOrEqual(t, pr.Offset(), 0)
		})
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		pr         PageRequest
		start, end int
	}{
		{name: "all", n: 7, pr: All, start: 0, end: 7},
		{name: "first page", n: 7, pr: PageRequest{Page: 1, PerPage: 5}, start: 0, end: 5},
		{name: "last page", n: 7, pr: PageRequest{Page: 2, PerPage: 5}, start: 5, end: 7},
		{name: "past the end", n: 7, pr: PageRequest{Page: 9, PerPage: 5}, start: 7, end: 7},
		{name: "overflowed offset", n: 7, pr: PageRequest{Page: 700000000000000000, PerPage: 15}, start: 7, end: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Paginate(tt.n, tt.pr)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
