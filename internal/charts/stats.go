package charts

import "movielog-server/internal/model"

const (
	FirstViewingName  = "First Viewing"
	RepeatViewingName = "Repeat Viewing"
)

// FirstViewingSplit returns the first and repeat viewing counts, in that order.
func FirstViewingSplit(records []model.Viewing) []CategoryBucket {
	first := 0
	for _, r := range records {
		if r.FirstViewing {
			first++
		}
	}
	return []CategoryBucket{
		{Name: FirstViewingName, Count: first},
		{Name: RepeatViewingName, Count: len(records) - first},
	}
}

type TextStats struct {
	Total    int `json:"total"`
	Features int `json:"features"`
	Shorts   int `json:"shorts"`
}

func ComputeTextStats(records []model.Viewing) TextStats {
	shorts := 0
	for _, r := range records {
		if r.MovieGenre == model.GenreShort {
			shorts++
		}
	}
	return TextStats{Total: len(records), Features: len(records) - shorts, Shorts: shorts}
}

// ListRow is one line of the viewing list. Rewatch rows render in italics.
type ListRow struct {
	Title   string     `json:"title"`
	URL     string     `json:"url"`
	Review  string     `json:"review"`
	Date    model.Date `json:"date"`
	Rewatch bool       `json:"rewatch"`
}

func ListRows(records []model.Viewing) []ListRow {
	out := make([]ListRow, 0, len(records))
	for _, r := range records {
		out = append(out, ListRow{
			Title:   r.DisplayTitle(),
			URL:     r.MovieURL,
			Review:  r.MovieReview,
			Date:    r.ViewingDate,
			Rewatch: !r.FirstViewing,
		})
	}
	return out
}

// Dedupe drops records repeating an earlier (title, date, location).
func Dedupe(records []model.Viewing) []model.Viewing {
	type key struct {
		title, date, location string
	}
	seen := make(map[key]struct{}, len(records))
	out := make([]model.Viewing, 0, len(records))
	for _, r := range records {
		k := key{r.MovieTitle, r.ViewingDate.String(), r.ViewLocation}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
