package scheduler

import "fmt"

// ModelBuildError reports counts or settings that admit no valid model
type ModelBuildError struct {
	Reason string
}

func (e *ModelBuildError) Error() string {
	return fmt.Sprintf("cannot build model: %s", e.Reason)
}
