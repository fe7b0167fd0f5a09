package model

import "strings"

// Viewing is one recorded instance of watching a movie.
type Viewing struct {
	ID           int64  `json:"id,omitempty"`
	MovieTitle   string `json:"movieTitle"`
	ViewingDate  Date   `json:"viewingDate"`
	MovieURL     string `json:"movieURL"`
	ViewFormat   string `json:"viewFormat"`
	ViewLocation string `json:"viewLocation"`
	MovieGenre   string `json:"movieGenre"`
	MovieReview  string `json:"movieReview"`
	FirstViewing bool   `json:"firstViewing"`
}

// GenreShort marks short films; feeds and lists prefix their titles.
const GenreShort = "Short"

// DisplayTitle is the title as shown in lists and feeds.
func (v Viewing) DisplayTitle() string {
	if v.MovieGenre == GenreShort {
		return "Short: " + v.MovieTitle
	}
	return v.MovieTitle
}

// PriorViewing is an earlier viewing of the same movie, returned alongside
// provider details so the entry form can be prefilled.
type PriorViewing struct {
	FirstViewing bool   `json:"firstViewing"`
	MovieTitle   string `json:"movieTitle"`
	MovieGenre   string `json:"movieGenre"`
	ViewingDate  Date   `json:"viewingDate"`
	ViewFormat   string `json:"viewFormat"`
	ViewLocation string `json:"viewLocation"`
	MovieReview  string `json:"movieReview"`
	MovieURL     string `json:"-"`
}

// ReferencesMovie reports whether movieURL contains ref as a whole token, so
// tt1234567 does not match tt12345678 and movie/5 does not match movie/55.
func ReferencesMovie(movieURL, ref string) bool {
	if ref == "" {
		return false
	}
	for i := 0; ; {
		j := strings.Index(movieURL[i:], ref)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(ref)
		if (start == 0 || !isWordByte(movieURL[start-1])) && (end == len(movieURL) || !isWordByte(movieURL[end])) {
			return true
		}
		i = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
