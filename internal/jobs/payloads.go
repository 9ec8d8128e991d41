package jobs

// EmailPayload is everything a mail job needs. The worker never reads the
// store, so the address and display name travel with the job.
type EmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}
