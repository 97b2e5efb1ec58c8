package domain

import "fmt"

// InvalidGridError は外部から受け取った盤面が4x4の非負整数でないことを表す
// Row / Col は該当しない場合 -1
type InvalidGridError struct {
	Reason string
	Row    int
	Col    int
	Err    error
}

func (e *InvalidGridError) Error() string {
	switch {
	case e.Row >= 0 && e.Col >= 0:
		return fmt.Sprintf("invalid grid at (%d,%d): %s", e.Row, e.Col, e.Reason)
	case e.Row >= 0:
		return fmt.Sprintf("invalid grid at row %d: %s", e.Row, e.Reason)
	default:
		return "invalid grid: " + e.Reason
	}
}

func (e *InvalidGridError) Unwrap() error {
	return e.Err
}
