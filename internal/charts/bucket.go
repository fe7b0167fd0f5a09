package charts

import (
	"strings"
	"time"

	"movielog-server/internal/model"
)

// OtherName labels the bucket holding folded low-count categories.
const OtherName = "Other"

// Field selects the categorical attribute of a viewing to group by.
type Field int

const (
	FieldLocation Field = iota
	FieldFormat
	FieldGenre
)

func (f Field) value(v model.Viewing) string {
	switch f {
	case FieldLocation:
		return v.ViewLocation
	case FieldFormat:
		return v.ViewFormat
	case FieldGenre:
		return v.MovieGenre
	}
	return ""
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryBucket is one chart slice. Only the Other bucket has Absorbed
// entries, and their counts sum to its Count.
type CategoryBucket struct {
	Name     string          `json:"name"`
	Count    int             `json:"count"`
	Absorbed []CategoryCount `json:"absorbed,omitempty"`
}

// Bucket counts records per category of field after merge normalization
// (merge may be nil). Categories with count <= threshold, and a category
// literally named Other, fold into a single trailing Other bucket. Output
// follows first-seen order.
func Bucket(records []model.Viewing, field Field, threshold int, merge *MergeTable) []CategoryBucket {
	var order []string
	totals := make(map[string]int)
	for _, r := range records {
		name := merge.Canonical(field.value(r))
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name]++
	}

	out := make([]CategoryBucket, 0, len(order)+1)
	other := CategoryBucket{Name: OtherName}
	for _, name := range order {
		n := totals[name]
		if n <= threshold || name == OtherName {
			other.Count += n
			other.Absorbed = append(other.Absorbed, CategoryCount{Name: name, Count: n})
			continue
		}
		out = append(out, CategoryBucket{Name: name, Count: n})
	}
	if other.Count > 0 {
		out = append(out, other)
	}
	return out
}

// BucketByMonth counts records per calendar month, January first. All 12
// slots are always present.
func BucketByMonth(records []model.Viewing) [12]int {
	var months [12]int
	for _, r := range records {
		months[r.ViewingDate.Month()-1]++
	}
	return months
}

// MonthLabels returns short month names aligned with BucketByMonth.
func MonthLabels() [12]string {
	var out [12]string
	for i := range out {
		out[i] = time.Month(i + 1).String()[:3]
	}
	return out
}

// Filter selects viewings for the dashboard. Zero fields impose nothing.
type Filter struct {
	Start model.Date
	End   model.Date
	Title string
}

// FilterRecords keeps records within [Start, End] whose title contains
// Title, ignoring case. Relative order is preserved.
func FilterRecords(records []model.Viewing, f Filter) []model.Viewing {
	needle := fold(strings.TrimSpace(f.Title))
	out := make([]model.Viewing, 0, len(records))
	for _, r := range records {
		if !r.ViewingDate.Between(f.Start, f.End) {
			continue
		}
		if needle != "" && !strings.Contains(fold(r.MovieTitle), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}
