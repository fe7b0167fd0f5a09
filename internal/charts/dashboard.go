package charts

import (
	"sort"

	"movielog-server/internal/model"
)

// DefaultOtherThreshold folds categories seen three times or fewer.
const DefaultOtherThreshold = 3

type Options struct {
	Threshold int
	Theatre   *MergeTable
	Format    *MergeTable
}

// DefaultOptions uses the built-in merge tables.
func DefaultOptions() Options {
	return Options{
		Threshold: DefaultOtherThreshold,
		Theatre:   MustMergeTable(DefaultTheatreRules()),
		Format:    MustMergeTable(DefaultFormatRules()),
	}
}

// Dashboard is the complete chart state for one filtered set of viewings.
// It is rebuilt from scratch on every load.
type Dashboard struct {
	Filter       FilterView       `json:"filter"`
	Stats        TextStats        `json:"stats"`
	Theatre      []CategoryBucket `json:"theatre"`
	Format       []CategoryBucket `json:"format"`
	Genre        []CategoryBucket `json:"genre"`
	FirstViewing []CategoryBucket `json:"firstViewing"`
	Months       [12]int          `json:"months"`
	MonthLabels  [12]string       `json:"monthLabels"`
	List         []ListRow        `json:"list"`
}

type FilterView struct {
	StartDate model.Date `json:"startDate"`
	EndDate   model.Date `json:"endDate"`
	Title     string     `json:"title,omitempty"`
}

// Build sorts records by viewing date, applies f and computes every chart.
func Build(records []model.Viewing, f Filter, opts Options) Dashboard {
	sorted := make([]model.Viewing, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ViewingDate.Before(sorted[j].ViewingDate)
	})
	rows := FilterRecords(sorted, f)

	return Dashboard{
		Filter:       FilterView{StartDate: f.Start, EndDate: f.End, Title: f.Title},
		Stats:        ComputeTextStats(rows),
		Theatre:      Bucket(rows, FieldLocation, opts.Threshold, opts.Theatre),
		Format:       Bucket(rows, FieldFormat, opts.Threshold, opts.Format),
		Genre:        Bucket(rows, FieldGenre, opts.Threshold, nil),
		FirstViewing: FirstViewingSplit(rows),
		Months:       BucketByMonth(rows),
		MonthLabels:  MonthLabels(),
		List:         ListRows(rows),
	}
}
