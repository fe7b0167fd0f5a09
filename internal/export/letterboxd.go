package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"

	"movielog-server/internal/model"
)

// LetterboxdHeader is the import column order Letterboxd expects.
var LetterboxdHeader = []string{"Title", "imdbID", "WatchedDate", "Rewatch", "Review"}

var imdbIDPattern = regexp.MustCompile(`tt\d{7,8}`)

// IMDbID extracts the first IMDb title id from a movie URL, or "".
func IMDbID(movieURL string) string {
	return imdbIDPattern.FindString(movieURL)
}

// LetterboxdRow renders one viewing in header order.
func LetterboxdRow(v model.Viewing) []string {
	rewatch := "True"
	if v.FirstViewing {
		rewatch = "False"
	}
	return []string{v.MovieTitle, IMDbID(v.MovieURL), v.ViewingDate.String(), rewatch, v.MovieReview}
}

// WriteLetterboxd writes a header row followed by one row per viewing.
func WriteLetterboxd(w io.Writer, viewings []model.Viewing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LetterboxdHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, v := range viewings {
		if err := cw.Write(LetterboxdRow(v)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
