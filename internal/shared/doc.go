// Package shared holds helpers used across museumreport packages.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and a fake collection API server with fixture objects:
//
//	func TestRun(t *testing.T) {
//	    srv := testutil.NewCollectionServer(t, testutil.SampleObjects()...)
//	    srv.FailNext(45734, http.StatusServiceUnavailable)
//	    client := museum.NewClient(museum.Config{BaseURL: srv.URL}, logger)
//	    ...
//	}
package shared
