package jobs

import "fmt"

// ValidatePayload rejects payloads whose required ids are missing before
// they reach the queue.
func ValidatePayload(t JobType, payload any) error {
	switch t {
	case JobProjectCreated:
		p, ok := payload.(ProjectCreatedPayload)

		if !ok {
			return ErrPayloadTypeMismatch
		}

		if p.ProjectID < 1 || p.OwnerID < 1 {
			return fmt.Errorf("%w: project and owner ids are required", ErrInvalidJobPayload)
		}

	case JobTaskStatusChanged:
		p, ok := payload.(TaskStatusChangedPayload)

		if !ok {
			return ErrPayloadTypeMismatch
		}

		if p.TaskID < 1 || p.ProjectID < 1 || p.OwnerID < 1 {
			return fmt.Errorf("%w: task, project and owner ids are required", ErrInvalidJobPayload)
		}

	default:
		return ErrInvalidJobType
	}

	return nil
}
