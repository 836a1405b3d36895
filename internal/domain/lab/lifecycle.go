package lab

// Status is the lifecycle state of a lab order.
type Status string

const (
	StatusPending          Status = "pending"
	StatusSamplesCollected Status = "samples_collected"
	StatusProcessing       Status = "processing"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusPending: true, StatusSamplesCollected: true, StatusProcessing: true,
	StatusCompleted: true, StatusCancelled: true,
}

// statusTransitions defines the legal lifecycle graph. Completion from
// pending or samples_collected is additionally gated on the order having no
// recorded results (see LabOrder.Transition); once a result exists the order
// is in processing anyway.
var statusTransitions = map[Status][]Status{
	StatusPending:          {StatusSamplesCollected, StatusProcessing, StatusCompleted, StatusCancelled},
	StatusSamplesCollected: {StatusProcessing, StatusCompleted, StatusCancelled},
	StatusProcessing:       {StatusCompleted, StatusCancelled},
	StatusCompleted:        {},
	StatusCancelled:        {},
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	return validStatuses[s]
}

// CanTransition checks the lifecycle table. Any attempt out of a terminal
// state fails with ErrOrderAlreadyFinalized, including no-op re-entry.
func CanTransition(from, to Status) error {
	if from.Terminal() {
		return ErrOrderAlreadyFinalized
	}
	for _, s := range statusTransitions[from] {
		if s == to {
			return nil
		}
	}
	return ErrIllegalTransition
}
