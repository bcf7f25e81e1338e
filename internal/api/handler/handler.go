package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"remotework.service/internal/caldav"
	"remotework.service/internal/core"
	"remotework.service/internal/core/model"
)

const dateLayout = "2006-01-02"

type RemoteWorkHandler struct {
	Service *core.RemoteWorkService
	Overlap *core.OverlapChecker
	CalDAV  caldav.Config
}

type CreateRequest struct {
	User    *model.User          `json:"user"`
	Type    model.RemoteWorkType `json:"type"`
	Date    string               `json:"date"`
	EndDate string               `json:"endDate,omitempty"`
	HalfDay bool                 `json:"halfDay"`
	Comment string               `json:"comment"`
}

type CreateResponse struct {
	Entries  []*model.RemoteWork    `json:"entries"`
	Warnings []model.OverlapWarning `json:"warnings"`
}

type DecisionRequest struct {
	IDs      []int64     `json:"ids"`
	Approver *model.User `json:"approver,omitempty"`
}

type SyncRequest struct {
	User *model.User `json:"user"`
	Year int         `json:"year"`
}

// Create creates one entry per working day of the requested range. The
// response carries overlap warnings, which are advisory: the entries are
// created regardless, the caller decides what to show the user.
func (h *RemoteWorkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.User == nil || req.User.ID == 0 {
		http.Error(w, "User is required", http.StatusBadRequest)
		return
	}
	if req.Type != model.TypeHomeoffice && req.Type != model.TypeBusinessTrip {
		http.Error(w, "Unknown remote work type", http.StatusBadRequest)
		return
	}
	if len(req.Comment) > 250 {
		http.Error(w, "Comment must not exceed 250 characters", http.StatusBadRequest)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			http.Error(w, "Invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		endDate = &end
	}

	prototype := &model.RemoteWork{
		User:    req.User,
		Type:    req.Type,
		Date:    date,
		HalfDay: req.HalfDay,
		Comment: req.Comment,
	}

	warnings := h.Overlap.CheckOverlaps(r.Context(), prototype, endDate)

	entries, err := h.Service.CreateEntries(r.Context(), req.User, prototype, endDate)
	if err != nil {
		if errors.Is(err, core.ErrNoWorkingDays) {
			http.Error(w, "No working days found in the selected date range", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Service error creating remote work entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateResponse{Entries: entries, Warnings: warnings})
}

// CheckOverlaps runs the overlap detection without creating anything.
func (h *RemoteWorkHandler) CheckOverlaps(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			http.Error(w, "Invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		endDate = &end
	}

	candidate := &model.RemoteWork{User: req.User, Type: req.Type, Date: date}
	warnings := h.Overlap.CheckOverlaps(r.Context(), candidate, endDate)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"warnings": warnings})
}

// ListByYear returns all entries of one user and year.
func (h *RemoteWorkHandler) ListByYear(w http.ResponseWriter, r *http.Request) {
	userID, year, ok := pathUserAndYear(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.FindByUserAndYear(r.Context(), userID, year)
	if err != nil {
		http.Error(w, "Service error loading remote work entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// Statistics returns the per-year day totals of one user.
func (h *RemoteWorkHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, year, ok := pathUserAndYear(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.Statistic(r.Context(), userID, year)
	if err != nil {
		http.Error(w, "Service error calculating statistics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ExportCalendar streams the approved entries of one user and year as a
// single iCalendar document.
func (h *RemoteWorkHandler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	userID, year, ok := pathUserAndYear(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.FindApprovedByUserAndYear(r.Context(), userID, year)
	if err != nil {
		http.Error(w, "Service error loading remote work entries", http.StatusInternalServerError)
		return
	}

	displayName := r.URL.Query().Get("displayName")
	if displayName == "" && len(entries) > 0 && entries[0].User != nil {
		displayName = entries[0].User.DisplayName
	}

	ics := caldav.SerializeCalendar(entries, displayName, h.CalDAV.Domain())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=remote-work.ics")
	w.Write([]byte(ics))
}

// Approve approves the given entries and syncs them to the calendar.
func (h *RemoteWorkHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Approver == nil || req.Approver.ID == 0 {
		http.Error(w, "Approver is required", http.StatusBadRequest)
		return
	}

	entries, ok := h.loadEntries(w, r, req.IDs)
	if !ok {
		return
	}

	if err := h.Service.Approve(r.Context(), entries, req.Approver); err != nil {
		http.Error(w, "Service error approving entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// Reject rejects the given entries, removing previously approved ones
// from the calendar first.
func (h *RemoteWorkHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entries, ok := h.loadEntries(w, r, req.IDs)
	if !ok {
		return
	}

	if err := h.Service.Reject(r.Context(), entries); err != nil {
		http.Error(w, "Service error rejecting entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// Delete removes the given entries from the calendar and then locally.
func (h *RemoteWorkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entries, ok := h.loadEntries(w, r, req.IDs)
	if !ok {
		return
	}

	if err := h.Service.BatchDelete(r.Context(), entries); err != nil {
		http.Error(w, "Service error deleting entries", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestSync enqueues a background calendar resync for one user and year.
func (h *RemoteWorkHandler) RequestSync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.User == nil || req.User.ID == 0 {
		http.Error(w, "User is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.RequestResync(r.Context(), req.User, req.Year); err != nil {
		http.Error(w, "Service error requesting calendar sync", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"message": "Calendar sync scheduled."})
}

func (h *RemoteWorkHandler) loadEntries(w http.ResponseWriter, r *http.Request, ids []int64) ([]*model.RemoteWork, bool) {
	if len(ids) == 0 {
		http.Error(w, "At least one entry id is required", http.StatusBadRequest)
		return nil, false
	}

	entries := make([]*model.RemoteWork, 0, len(ids))
	for _, id := range ids {
		entry, err := h.Service.Get(r.Context(), id)
		if err != nil {
			http.Error(w, "Remote work entry not found", http.StatusNotFound)
			return nil, false
		}
		entries = append(entries, entry)
	}

	return entries, true
}

func pathUserAndYear(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	vars := mux.Vars(r)

	userID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return 0, 0, false
	}

	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return 0, 0, false
	}

	return userID, year, true
}
