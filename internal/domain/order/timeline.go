package order

// Stage is a milestone on the order progress timeline.
type Stage string

const (
	StagePlaced     Stage = "Placed"
	StageProcessing Stage = "Processing"
	StageShipped    Stage = "Shipped"
	StageDelivered  Stage = "Delivered"
)

// Stages lists timeline stages in display order.
var Stages = []Stage{StagePlaced, StageProcessing, StageShipped, StageDelivered}

// StageState pairs a stage with whether the order has reached it.
type StageState struct {
	Stage   Stage
	Reached bool
}

// Timeline is the progress view of an order.
type Timeline []StageState

// Reached reports whether stage is marked reached in t.
func (t Timeline) Reached(stage Stage) bool {
	for _, s := range t {
		if s.Stage == stage {
			return s.Reached
		}
	}
	return false
}

// reachedBy maps each stage to the statuses that count as having passed it.
var reachedBy = map[Stage][]Status{
	StageProcessing: {StatusProcessing, StatusShipped, StatusDelivered},
	StageShipped:    {StatusShipped, StatusDelivered},
	StageDelivered:  {StatusDelivered},
}

// DeriveTimeline marks each stage reached by status membership. Placed is
// always reached. Cancelled is not on the timeline, so a cancelled order
// shows only Placed regardless of how far it got before cancellation.
func DeriveTimeline(status Status) Timeline {
	t := make(Timeline, 0, len(Stages))
	for _, stage := range Stages {
		reached := stage == StagePlaced
		for _, st := range reachedBy[stage] {
			if st == status {
				reached = true
				break
			}
		}
		t = append(t, StageState{Stage: stage, Reached: reached})
	}
	return t
}
