package export

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movielog-server/internal/model"
)

func TestIMDbID(t *testing.T) {
	assert.Equal(t, "tt0113277", IMDbID("http://www.imdb.com/title/tt0113277/"))
	assert.Equal(t, "tt10872600", IMDbID("https://imdb.com/title/tt10872600"))
	assert.Empty(t, IMDbID("https://letterboxd.com/film/heat-1995/"))
	assert.Empty(t, IMDbID(""))
}

func TestWriteLetterboxdSingleRecord(t *testing.T) {
	v := model.Viewing{
		MovieTitle:   "Heat, Director's Cut",
		ViewingDate:  model.NewDate(2024, 1, 15),
		MovieURL:     "http://www.imdb.com/title/tt0113277/",
		MovieReview:  `Loved the "bank" scene.`,
		FirstViewing: false,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteLetterboxd(&buf, []model.Viewing{v}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Title", "imdbID", "WatchedDate", "Rewatch", "Review"}, rows[0])
	assert.Equal(t, []string{"Heat, Director's Cut", "tt0113277", "2024-01-15", "True", `Loved the "bank" scene.`}, rows[1])
}

func TestLetterboxdRewatchFlag(t *testing.T) {
	row := LetterboxdRow(model.Viewing{MovieTitle: "Alien", FirstViewing: true})
	assert.Equal(t, "False", row[3])
	assert.Empty(t, row[1])
}

type rssDoc struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			GUID        string `xml:"guid"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestRSS(t *testing.T) {
	out, err := RSS(FeedInfo{Title: "Movies", Description: "What I watched", BaseURL: "https://movies.example.com/"},
		[]model.Viewing{
			{MovieTitle: "Luxo Jr.", MovieGenre: model.GenreShort, MovieURL: "http://www.imdb.com/title/tt0091455/", ViewingDate: model.NewDate(2024, 2, 2)},
			{MovieTitle: "Heat", MovieGenre: "Crime", MovieURL: "http://www.imdb.com/title/tt0113277/", MovieReview: "Great.", ViewingDate: model.NewDate(2024, 2, 3)},
		}, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var doc rssDoc
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Movies", doc.Channel.Title)
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "Short: Luxo Jr.", doc.Channel.Items[0].Title)
	assert.Equal(t, "No review available", doc.Channel.Items[0].Description)
	assert.Equal(t, "http://www.imdb.com/title/tt0091455/", doc.Channel.Items[0].Link)
	assert.Equal(t, "http://www.imdb.com/title/tt0113277/", doc.Channel.Items[1].GUID)
	assert.Equal(t, "Great.", doc.Channel.Items[1].Description)
}
