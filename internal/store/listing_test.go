package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveQueryNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ArchiveQuery
		want ArchiveQuery
	}{
		{name: "zero value", in: ArchiveQuery{}, want: ArchiveQuery{Page: 1, Limit: DefaultArchiveLimit}},
		{name: "negative page", in: ArchiveQuery{Page: -3, Limit: 4}, want: ArchiveQuery{Page: 1, Limit: 4}},
		{name: "limit capped", in: ArchiveQuery{Page: 2, Limit: 5000}, want: ArchiveQuery{Page: 2, Limit: MaxArchiveLimit}},
		{name: "all category", in: ArchiveQuery{Page: 1, Limit: 6, Category: "all"}, want: ArchiveQuery{Page: 1, Limit: 6}},
		{name: "trims filters", in: ArchiveQuery{Page: 1, Limit: 6, Category: " Web ", Search: "  logo "}, want: ArchiveQuery{Page: 1, Limit: 6, Category: "Web", Search: "logo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%logo%", likePattern("logo"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%snake\_case%`, likePattern("snake_case"))
	assert.Equal(t, `%back\\slash%`, likePattern(`back\slash`))
}
