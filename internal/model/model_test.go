package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferencesMovie(t *testing.T) {
	cases := []struct {
		url, ref string
		want     bool
	}{
		{"http://www.imdb.com/title/tt0113277/", "tt0113277", true},
		{"http://www.imdb.com/title/tt0113277", "tt0113277", true},
		{"http://www.imdb.com/title/tt12345678/", "tt1234567", false},
		{"http://www.imdb.com/title/xtt1234567/", "tt1234567", false},
		{"https://www.themoviedb.org/movie/5", "themoviedb.org/movie/5", true},
		{"https://www.themoviedb.org/movie/55", "themoviedb.org/movie/5", false},
		{"https://www.themoviedb.org/movie/5-heat", "themoviedb.org/movie/5", true},
		{"tt12345678 then tt1234567", "tt1234567", true},
		{"", "tt1234567", false},
		{"http://www.imdb.com/title/tt0113277/", "", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ReferencesMovie(tc.url, tc.ref), "%s in %s", tc.ref, tc.url)
	}
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Short: Bao", Viewing{MovieTitle: "Bao", MovieGenre: GenreShort}.DisplayTitle())
	assert.Equal(t, "Heat", Viewing{MovieTitle: "Heat", MovieGenre: "Crime"}.DisplayTitle())
}
