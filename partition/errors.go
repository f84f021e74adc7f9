package partition

import "fmt"

// RequestBuildError reports a failure to construct the partition
// request (unreadable file handle, multipart encoding). It is logged
// where it occurs and propagated unchanged.
type RequestBuildError struct {
	FileName string
	Err      error
}

func (e *RequestBuildError) Error() string {
	return fmt.Sprintf("partition: build request for %s: %v", e.FileName, e.Err)
}

func (e *RequestBuildError) Unwrap() error { return e.Err }

// ServiceError reports a failed call to the partition service: either a
// non-200 response (StatusCode set, Body holds the first bytes of the
// response) or a transport failure (StatusCode 0, Err set). The adapter
// never retries; callers decide whether to retry or surface it.
type ServiceError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("partition: service call failed: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("partition: unexpected status %d from partition service: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("partition: unexpected status %d from partition service", e.StatusCode)
}

func (e *ServiceError) Unwrap() error { return e.Err }
