package model

// ValidationError marks input the engine refuses to evaluate, such as an
// interval whose start is not before its end. The engine never clamps;
// the caller must correct and retry.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
