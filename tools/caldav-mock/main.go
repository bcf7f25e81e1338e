package main

import (
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
)

// In-memory calendar store mapping resource path to ICS payload. Enough
// to exercise the sync client locally without a real CalDAV server.
type calendarStore struct {
	mu     sync.Mutex
	events map[string]string
}

func (s *calendarStore) put(path, body string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.events[path]
	s.events[path] = body
	return existed
}

func (s *calendarStore) delete(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.events[path]
	delete(s.events, path)
	return existed
}

func eventHandler(store *calendarStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="caldav-mock"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !strings.HasSuffix(r.URL.Path, ".ics") {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			existed := store.put(r.URL.Path, string(body))
			log.Printf("PUT %s (%d bytes)", r.URL.Path, len(body))
			if existed {
				w.WriteHeader(http.StatusNoContent)
			} else {
				w.WriteHeader(http.StatusCreated)
			}
		case http.MethodDelete:
			existed := store.delete(r.URL.Path)
			log.Printf("DELETE %s", r.URL.Path)
			if existed {
				w.WriteHeader(http.StatusNoContent)
			} else {
				http.Error(w, "Not found", http.StatusNotFound)
			}
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func main() {
	store := &calendarStore{events: make(map[string]string)}
	http.HandleFunc("/", eventHandler(store))
	log.Println("CalDAV mock server starting on port 8081...")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
