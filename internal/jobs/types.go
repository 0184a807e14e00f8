package jobs

type JobType string

const (
	JobProjectCreated    JobType = "project_created"
	JobTaskStatusChanged JobType = "task_status_changed"
)

// check that the job type is a known constant
func (t JobType) IsValid() bool {
	switch t {
	case JobProjectCreated, JobTaskStatusChanged:
		return true
	default:
		return false
	}
}
