package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"movielog-server/internal/deps"
	"movielog-server/internal/model"
	"movielog-server/internal/repos"
	"movielog-server/internal/validation"
	pkghttpx "movielog-server/pkg/httpx"
	pkgrequestctx "movielog-server/pkg/requestctx"
)

// ListViewings handles GET /api/?startDate&endDate (or ?year).
func ListViewings(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := dateRange(r, d.Clock())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid date range", err))
			return
		}
		body, err := cached(d, r, "viewings", rangeKey(cacheViewingsPref, start, end), func() (string, error) {
			rows, err := d.Store.ListBetween(r.Context(), start, end)
			if err != nil {
				return "", err
			}
			if rows == nil {
				rows = []model.Viewing{}
			}
			b, err := json.Marshal(rows)
			return string(b), err
		})
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to list viewings", err))
			return
		}
		writeRaw(w, http.StatusOK, "application/json", body)
	}
}

func entryID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// GetEntry handles GET /api/entry/{id}. It is public.
func GetEntry(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := entryID(r)
		if err != nil || id <= 0 {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("entry not found", err))
			return
		}
		v, err := d.Store.Get(r.Context(), id)
		if errors.Is(err, repos.ErrNotFound) {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("entry not found", err))
			return
		}
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load entry", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, v)
	}
}

// flexBool accepts true/false, 1/0 and their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.ToLower(strings.TrimSpace(string(data))), `"`)
	switch s {
	case "true", "1", "on", "yes":
		*b = true
	case "false", "0", "off", "no", "", "null":
		*b = false
	default:
		return errors.New("firstViewing must be a boolean")
	}
	return nil
}

type newEntryPayload struct {
	MovieTitle   string   `json:"movieTitle" validate:"required,max=500"`
	ViewingDate  string   `json:"viewingDate" validate:"required"`
	MovieURL     string   `json:"movieURL" validate:"max=2000"`
	ViewFormat   string   `json:"viewFormat" validate:"max=200"`
	ViewLocation string   `json:"viewLocation" validate:"max=200"`
	MovieGenre   string   `json:"movieGenre" validate:"max=200"`
	MovieReview  string   `json:"movieReview" validate:"max=20000"`
	FirstViewing flexBool `json:"firstViewing"`
}

// updatePayload converts to newEntryPayload; an edit must keep format and location.
type updatePayload struct {
	MovieTitle   string   `json:"movieTitle" validate:"required,max=500"`
	ViewingDate  string   `json:"viewingDate" validate:"required"`
	MovieURL     string   `json:"movieURL" validate:"max=2000"`
	ViewFormat   string   `json:"viewFormat" validate:"required,max=200"`
	ViewLocation string   `json:"viewLocation" validate:"required,max=200"`
	MovieGenre   string   `json:"movieGenre" validate:"max=200"`
	MovieReview  string   `json:"movieReview" validate:"max=20000"`
	FirstViewing flexBool `json:"firstViewing"`
}

// parseEntryDate accepts the form's MM/dd/yyyy and also yyyy-MM-dd.
func parseEntryDate(s string) (model.Date, error) {
	d, err := model.ParseFormDate(s)
	if err == nil {
		return d, nil
	}
	if iso, isoErr := model.ParseISODate(s); isoErr == nil {
		return iso, nil
	}
	return model.Date{}, err
}

func (p newEntryPayload) viewing() (model.Viewing, error) {
	date, err := parseEntryDate(p.ViewingDate)
	if err != nil {
		return model.Viewing{}, err
	}
	return model.Viewing{
		MovieTitle:   strings.TrimSpace(p.MovieTitle),
		ViewingDate:  date,
		MovieURL:     strings.TrimSpace(p.MovieURL),
		ViewFormat:   strings.TrimSpace(p.ViewFormat),
		ViewLocation: strings.TrimSpace(p.ViewLocation),
		MovieGenre:   strings.TrimSpace(p.MovieGenre),
		MovieReview:  p.MovieReview,
		FirstViewing: bool(p.FirstViewing),
	}, nil
}

func badEntry(w http.ResponseWriter, r *http.Request, msg string, err error) {
	he := pkghttpx.BadRequest(msg, err)
	var verr *validation.Error
	if errors.As(err, &verr) {
		he = pkghttpx.BadRequest(verr.Error(), err).WithDetails(verr.Details())
	}
	pkghttpx.WriteLegacyError(w, r, he)
}

// NewEntry handles POST /api/newEntry.
func NewEntry(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _, err := decodeEnvelope(r)
		if err != nil {
			badEntry(w, r, "Param Error", err)
			return
		}
		var p newEntryPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			badEntry(w, r, "Param Error", err)
			return
		}
		if err := validation.Struct(p); err != nil {
			badEntry(w, r, "Param Error", err)
			return
		}
		v, err := p.viewing()
		if err != nil {
			badEntry(w, r, "Invalid viewingDate, expected MM/dd/yyyy", err)
			return
		}
		id, err := d.Store.Insert(r.Context(), v)
		if err != nil {
			pkghttpx.WriteLegacyError(w, r, pkghttpx.Internal("Param Error", err))
			return
		}
		invalidateViewings(d, r)
		log.Info().
			Int64("id", id).
			Str("principal", pkgrequestctx.Principal(r.Context())).
			Str("correlation_id", pkgrequestctx.CorrelationID(r.Context())).
			Msg("viewing recorded")
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]string{"OK": "Success"})
	}
}

// UpdateEntry handles PUT /api/entry/{id}. Validation runs before the
// existence check, so a bad payload is 400 even for unknown ids.
func UpdateEntry(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := entryID(r)
		if err != nil || id <= 0 {
			pkghttpx.WriteLegacyError(w, r, pkghttpx.NotFound("Entry not found", err))
			return
		}
		raw, _, err := decodeEnvelope(r)
		if err != nil {
			badEntry(w, r, "Param Error", err)
			return
		}
		var p updatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			badEntry(w, r, "Param Error", err)
			return
		}
		if err := validation.Struct(p); err != nil {
			badEntry(w, r, "Missing required fields", err)
			return
		}
		v, err := newEntryPayload(p).viewing()
		if err != nil {
			badEntry(w, r, "Invalid viewingDate, expected MM/dd/yyyy", err)
			return
		}
		err = d.Store.Update(r.Context(), id, v)
		if errors.Is(err, repos.ErrNotFound) {
			pkghttpx.WriteLegacyError(w, r, pkghttpx.NotFound("Entry not found", err))
			return
		}
		if err != nil {
			pkghttpx.WriteLegacyError(w, r, pkghttpx.Internal("Update failed", err))
			return
		}
		invalidateViewings(d, r)
		log.Info().
			Int64("id", id).
			Str("principal", pkgrequestctx.Principal(r.Context())).
			Str("correlation_id", pkgrequestctx.CorrelationID(r.Context())).
			Msg("viewing updated")
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]string{"OK": "Updated"})
	}
}
