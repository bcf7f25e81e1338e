package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"remotework.service/internal/api/handler"
	"remotework.service/internal/caldav"
	"remotework.service/internal/core"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(service *core.RemoteWorkService, overlap *core.OverlapChecker, calDAVCfg caldav.Config) *mux.Router {

	remoteWorkHandler := &handler.RemoteWorkHandler{
		Service: service,
		Overlap: overlap,
		CalDAV:  calDAVCfg,
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/remote-work", remoteWorkHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/remote-work", remoteWorkHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/remote-work/check-overlaps", remoteWorkHandler.CheckOverlaps).Methods(http.MethodPost)
	api.HandleFunc("/remote-work/approve", remoteWorkHandler.Approve).Methods(http.MethodPost)
	api.HandleFunc("/remote-work/reject", remoteWorkHandler.Reject).Methods(http.MethodPost)
	api.HandleFunc("/remote-work/sync", remoteWorkHandler.RequestSync).Methods(http.MethodPost)
	api.HandleFunc("/remote-work/{userId}/{year}", remoteWorkHandler.ListByYear).Methods(http.MethodGet)
	api.HandleFunc("/remote-work/{userId}/{year}/statistics", remoteWorkHandler.Statistics).Methods(http.MethodGet)
	api.HandleFunc("/remote-work/{userId}/{year}/calendar.ics", remoteWorkHandler.ExportCalendar).Methods(http.MethodGet)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
