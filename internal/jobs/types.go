package jobs

type JobType string

const (
	JobOrderConfirmation JobType = "order.confirmation"
	JobWelcomeEmail      JobType = "user.welcome"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobOrderConfirmation, JobWelcomeEmail:
		return true
	default:
		return false
	}
}
