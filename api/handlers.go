/*
handlers.go - HTTP handler context and shared JSON plumbing

PURPOSE:
  Holds the Handler struct every endpoint hangs off, plus the helpers
  that keep the wire contract uniform: the {error, detail} envelope,
  query parsing and the clamped list limits.

ERROR ENVELOPE:
  400  {error:"invalid_input", detail}   validation failure, no write done
  404  {error:"not_found", detail}       lookup on an absent id
  405  {error:"Method not allowed"}
  409  {error:"duplicate name"}          member name collision
  500  {error:"Server error", detail}    anything else, detail carries the
                                         underlying message

SEE ALSO:
  - server.go: router wiring
  - members.go / bungs.go / regular.go / logs.go / reports.go / draw.go
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alleyclub/club-server/league"
	"github.com/alleyclub/club-server/store/sqlite"
)

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// ErrorResponse is the uniform JSON error envelope.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeInvalid(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_input", Detail: detail})
}

func writeNotFound(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Detail: detail})
}

func writeServerError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Server error", Detail: err.Error()})
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// queryID parses a numeric query parameter. ok is false for anything
// that is not a finite integer.
func queryID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(key)), 10, 64)
	return id, err == nil
}

// clampLimit applies the shared list-limit policy: default 200, floor
// 1, ceiling 500.
func clampLimit(raw string) int {
	limit := 200
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}
	return limit
}

// optionalTime normalizes an optional timestamp filter. Empty input is
// a nil bound.
func optionalTime(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := league.NormalizeEventTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// currentSeason is the default season filter: the current year in the
// club timezone.
func currentSeason() int {
	return time.Now().In(league.KST).Year()
}

// strOrEmpty renders an optional text column with a "" fallback, for
// responses that never carry null.
func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
