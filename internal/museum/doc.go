// Package museum is a client for the Met Museum collection API.
//
// It lists object ids and fetches object records, mapping transport failures
// onto the fetch error kinds of internal/errors: connection and timeout
// failures are retryable, a 404 is a not_found error and other statuses are
// http_status errors (retryable for 5xx and 429). Records keep the field order
// of the response body.
package museum
