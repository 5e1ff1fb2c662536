package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// Object payloads shaped like the public collection API responses
const (
	ObjectQuail = `{
	"objectID": 45734,
	"isHighlight": false,
	"accessionNumber": "36.100.45",
	"primaryImage": "https://images.metmuseum.org/CRDImages/as/original/DP251139.jpg",
	"additionalImages": ["https://images.metmuseum.org/CRDImages/as/original/DP251138.jpg"],
	"constituents": [{"constituentID": 11986, "role": "Artist", "name": "Kiyohara Yukinobu", "gender": "Female"}],
	"department": "Asian Art",
	"title": "Quail and Millet",
	"measurements": [{"elementName": "Overall", "elementDescription": null, "elementMeasurements": {"Height": 46.4, "Width": 40.6}}],
	"tags": [{"term": "Birds", "AAT_URL": "http://vocab.getty.edu/page/aat/300266506"}, {"term": "Millet", "AAT_URL": null}],
	"objectBeginDate": 1650,
	"isPublicDomain": true
}`

	ObjectVase = `{
	"objectID": 1,
	"isHighlight": false,
	"title": "One-dollar Liberty Head Coin",
	"constituents": null,
	"measurements": [{"elementName": "Overall", "elementMeasurements": {"Diameter": 1.1}}],
	"tags": [],
	"objectBeginDate": 1853,
	"isPublicDomain": false
}`

	ObjectPortrait = `{
	"objectID": 436535,
	"isHighlight": true,
	"title": "Wheat Field with Cypresses",
	"constituents": [
		{"constituentID": 161877, "role": "Artist", "name": "Vincent van Gogh"},
		{"constituentID": 9999, "role": "Former owner", "name": "Unknown"}
	],
	"measurements": [{"elementName": "Overall", "elementMeasurements": {"Height": 73.2, "Width": 93.4}}],
	"tags": [{"term": "Landscapes"}],
	"objectBeginDate": 1889,
	"isPublicDomain": true,
	"creditLine": "Purchase, The Annenberg Foundation Gift, 1993"
}`
)

// SampleObjects returns the fixture payloads in listing order
func SampleObjects() []Object {
	return []Object{
		{ID: 45734, Body: ObjectQuail},
		{ID: 1, Body: ObjectVase},
		{ID: 436535, Body: ObjectPortrait},
	}
}

// Object is one fixture object payload
type Object struct {
	ID   int
	Body string
}

// CollectionServer is a fake collection API for tests
type CollectionServer struct {
	*httptest.Server

	mu       sync.Mutex
	ids      []int
	bodies   map[int]string
	failures map[int][]int
	requests map[int]int
}

// NewCollectionServer starts a fake API serving objects. It is closed when
// the test ends.
func NewCollectionServer(t *testing.T, objects ...Object) *CollectionServer {
	t.Helper()

	s := &CollectionServer{
		bodies:   make(map[int]string),
		failures: make(map[int][]int),
		requests: make(map[int]int),
	}
	for _, o := range objects {
		s.AddObject(o.ID, o.Body)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /public/collection/v1/objects", s.handleList)
	mux.HandleFunc("GET /public/collection/v1/objects/{id}", s.handleObject)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// AddObject appends an object to the listing
func (s *CollectionServer) AddObject(id int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	s.bodies[id] = body
}

// AddListedOnly lists an id without serving its object, so fetching it
// answers 404
func (s *CollectionServer) AddListedOnly(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
}

// FailNext makes the next requests for id answer with the given statuses
// in order before the object is served
func (s *CollectionServer) FailNext(id int, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = append(s.failures[id], statuses...)
}

// Requests returns how many times the object id was requested
func (s *CollectionServer) Requests(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

func (s *CollectionServer) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	ids := append([]int(nil), s.ids...)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total":     len(ids),
		"objectIDs": ids,
	})
}

func (s *CollectionServer) handleObject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"message":"Not a valid object"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests[id]++
	var status int
	if pending := s.failures[id]; len(pending) > 0 {
		status, s.failures[id] = pending[0], pending[1:]
	}
	body, ok := s.bodies[id]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case status != 0:
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"message":"injected status %d"}`, status)
	case !ok:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"ObjectID not found"}`))
	default:
		w.Write([]byte(body))
	}
}
