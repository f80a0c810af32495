package webhook

// Status is the outcome of processing one dequeued job
type Status string

const (
	Delivered Status = "delivered" // endpoint answered 2xx
	Retrying  Status = "retrying"  // rescheduled with a backoff delay
	Failed    Status = "failed"    // retries exhausted or subscription disabled
	Dropped   Status = "dropped"   // subscription gone or inactive, nothing sent
)

func (s Status) String() string {
	return string(s)
}

