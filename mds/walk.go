package mds

// WalkFunc is called for each variable during traversal.
// coord reports whether v is a coordinate variable.
// Return nil to continue walking, or an error to stop.
type WalkFunc func(v *Variable, coord bool) error

// Walk calls fn for every coordinate variable, then every data variable,
// each in name order. Returning ErrStopWalk from fn stops the walk without
// an error.
//
// Example:
//
//	mds.Walk(ds, func(v *mds.Variable, coord bool) error {
//	    fmt.Println(v.Name(), v.Dims(), v.Shape())
//	    return nil
//	})
func Walk(d *Dataset, fn WalkFunc) error {
	if d.closed {
		return ErrClosed
	}
	for _, group := range []struct {
		vars  map[string]*Variable
		coord bool
	}{{d.coords, true}, {d.vars, false}} {
		for _, name := range sortedKeys(group.vars) {
			if err := fn(group.vars[name], group.coord); err != nil {
				if IsStopWalk(err) {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// ErrStopWalk can be returned from WalkFunc to stop walking without an error.
var ErrStopWalk = &walkStopError{}

type walkStopError struct{}

func (e *walkStopError) Error() string { return "walk stopped" }

// IsStopWalk returns true if the error is ErrStopWalk.
func IsStopWalk(err error) bool {
	_, ok := err.(*walkStopError)
	return ok
}
