package repos

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"movielog-server/internal/model"
)

func dateVal(d model.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func dateFrom(d pgtype.Date) model.Date {
	if !d.Valid {
		return model.Date{}
	}
	return model.DateOf(d.Time)
}

// likeEscape escapes LIKE metacharacters so ref matches literally.
func likeEscape(ref string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(ref)
}
