package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"movielog-server/internal/metrics"
	"movielog-server/internal/model"
)

type ViewingsRepo struct {
	db DB
}

const viewingColumns = `id, movie_title, viewing_date, movie_url, view_format, view_location, movie_genre, movie_review, first_viewing`

func scanViewing(row pgx.Row) (model.Viewing, error) {
	var (
		v model.Viewing
		d pgtype.Date
	)
	if err := row.Scan(&v.ID, &v.MovieTitle, &d, &v.MovieURL, &v.ViewFormat, &v.ViewLocation, &v.MovieGenre, &v.MovieReview, &v.FirstViewing); err != nil {
		return model.Viewing{}, err
	}
	v.ViewingDate = dateFrom(d)
	return v, nil
}

// ListBetween returns viewings whose date lies in [start, end], oldest first.
func (r *ViewingsRepo) ListBetween(ctx context.Context, start, end model.Date) (out []model.Viewing, err error) {
	defer func(t time.Time) { metrics.RecordDBQuery("list", t, err) }(time.Now())
	rows, err := r.db.Query(ctx, `
		SELECT `+viewingColumns+`
		FROM viewings
		WHERE viewing_date >= $1 AND viewing_date <= $2
		ORDER BY viewing_date ASC, id ASC`, dateVal(start), dateVal(end))
	if err != nil {
		return nil, fmt.Errorf("list viewings: %w", err)
	}
	defer rows.Close()
	out = make([]model.Viewing, 0, 64)
	for rows.Next() {
		v, err := scanViewing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan viewing: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindByReference returns earlier viewings whose movie URL references ref
// (typically an IMDb id) as a whole token, most recent first.
func (r *ViewingsRepo) FindByReference(ctx context.Context, ref string) (out []model.PriorViewing, err error) {
	if ref == "" {
		return nil, nil
	}
	defer func(t time.Time) { metrics.RecordDBQuery("find_reference", t, err) }(time.Now())
	rows, err := r.db.Query(ctx, `
		SELECT movie_title, movie_genre, viewing_date, view_format, view_location, movie_review, movie_url
		FROM viewings
		WHERE movie_url LIKE '%' || $1 || '%'
		ORDER BY viewing_date DESC, id DESC`, likeEscape(ref))
	if err != nil {
		return nil, fmt.Errorf("find prior viewings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			p model.PriorViewing
			d pgtype.Date
		)
		if err := rows.Scan(&p.MovieTitle, &p.MovieGenre, &d, &p.ViewFormat, &p.ViewLocation, &p.MovieReview, &p.MovieURL); err != nil {
			return nil, fmt.Errorf("scan prior viewing: %w", err)
		}
		if !model.ReferencesMovie(p.MovieURL, ref) {
			continue
		}
		p.ViewingDate = dateFrom(d)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ViewingsRepo) Get(ctx context.Context, id int64) (model.Viewing, error) {
	start := time.Now()
	v, err := scanViewing(r.db.QueryRow(ctx, `SELECT `+viewingColumns+` FROM viewings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordDBQuery("get", start, nil)
		return model.Viewing{}, ErrNotFound
	}
	metrics.RecordDBQuery("get", start, err)
	if err != nil {
		return model.Viewing{}, fmt.Errorf("get viewing %d: %w", id, err)
	}
	return v, nil
}

// Insert stores a new viewing and returns its id.
func (r *ViewingsRepo) Insert(ctx context.Context, v model.Viewing) (int64, error) {
	start := time.Now()
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO viewings (movie_title, viewing_date, movie_url, view_format, view_location, movie_genre, movie_review, first_viewing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		v.MovieTitle, dateVal(v.ViewingDate), v.MovieURL, v.ViewFormat, v.ViewLocation, v.MovieGenre, v.MovieReview, v.FirstViewing,
	).Scan(&id)
	metrics.RecordDBQuery("insert", start, err)
	if err != nil {
		return 0, fmt.Errorf("insert viewing: %w", err)
	}
	return id, nil
}

// Update overwrites an existing viewing. The movie URL is kept when the
// update leaves it empty. Returns ErrNotFound when id does not exist.
func (r *ViewingsRepo) Update(ctx context.Context, id int64, v model.Viewing) error {
	start := time.Now()
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM viewings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check viewing %d: %w", id, err)
	}
	if !exists {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE viewings SET
			movie_title = $2,
			viewing_date = $3,
			movie_url = COALESCE(NULLIF($4, ''), movie_url),
			view_format = $5,
			view_location = $6,
			movie_genre = $7,
			movie_review = $8,
			first_viewing = $9,
			updated_at = now()
		WHERE id = $1`,
		id, v.MovieTitle, dateVal(v.ViewingDate), v.MovieURL, v.ViewFormat, v.ViewLocation, v.MovieGenre, v.MovieReview, v.FirstViewing,
	)
	metrics.RecordDBQuery("update", start, err)
	if err != nil {
		return fmt.Errorf("update viewing %d: %w", id, err)
	}
	// Deleted between the check and the update; last write wins otherwise.
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
