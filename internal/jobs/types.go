package jobs

type JobType string

const (
	JobSendWelcomeEmail      JobType = "send_welcome_email"
	JobSendCancellationEmail JobType = "send_cancellation_email"
)

// IsValid reports whether t is a known job type.
func (t JobType) IsValid() bool {
	switch t {
	case JobSendWelcomeEmail, JobSendCancellationEmail:
		return true
	default:
		return false
	}
}
