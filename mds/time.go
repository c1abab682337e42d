package mds

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-mds/internal/dtype"
	"github.com/robert-malhotra/go-mds/internal/raw"
)

// Coordinate names of the time axis.
const (
	IterCoord = "iter"
	TimeCoord = "time"
)

var refDateLayouts = []string{
	"2006-1-2 15:4:5",
	"2006-1-2T15:4:5",
	"2006-1-2 15:4",
	"2006-1-2",
	time.RFC3339,
}

// ParseReferenceDate parses a model reference date such as
// "1990-1-1 0:0:0". Unpadded fields are accepted. The result is UTC.
func ParseReferenceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range refDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse reference date %q", ErrInvalidOption, s)
}

// buildTime adds the iter coordinate and the time coordinate. With a
// reference date the time values are seconds since the Unix epoch, with
// only a time step they are elapsed seconds, and otherwise the iterations.
func (a *assembler) buildTime() error {
	if len(a.iters) == 0 {
		return nil
	}
	n := len(a.iters)
	if err := a.ds.addDim(TimeDim, n); err != nil {
		return err
	}
	a.ds.iters = append([]int64(nil), a.iters...)

	if err := a.ds.addVar(&Variable{
		name: IterCoord,
		kind: TimeVar,
		dims: []string{TimeDim},
		attrs: attrs{
			AttrStandardName: "timestep",
			AttrLongName:     "model timestep number",
		},
		slabs: []*raw.Array{raw.FromInt64s(a.iters)},
	}, true); err != nil {
		return err
	}

	at := attrs{
		AttrStandardName: "time",
		AttrLongName:     "Time",
		AttrAxis:         "T",
	}
	var (
		slab *raw.Array
		err  error
	)
	step := a.opt.deltaT
	switch {
	case a.opt.refDate != nil:
		ref := a.opt.refDate.UTC()
		a.ds.times = make([]time.Time, n)
		secs := make([]float64, n)
		for i, iter := range a.iters {
			t, err := timeAt(ref, iter, step)
			if err != nil {
				return err
			}
			a.ds.times[i] = t
			secs[i] = float64(t.Unix()) + float64(t.Nanosecond())/1e9
		}
		at[AttrUnits] = "seconds since 1970-01-01 00:00:00"
		at[AttrCalendar] = "gregorian"
		if slab, err = raw.FromFloat64s(dtype.Float64, []int{n}, secs); err != nil {
			return err
		}
		a.log.Debug("time axis", zap.Time("ref", ref), zap.Duration("step", step))
	case step > 0:
		a.ds.elapsed = make([]time.Duration, n)
		secs := make([]float64, n)
		for i, iter := range a.iters {
			sec, nsec, err := stepOffset(iter, step)
			if err != nil {
				return err
			}
			if sec > (math.MaxInt64-nsec)/int64(time.Second) {
				return fmt.Errorf("%w: iteration %d at step %v exceeds the elapsed time range; give a reference date",
					ErrInvalidOption, iter, step)
			}
			a.ds.elapsed[i] = time.Duration(sec)*time.Second + time.Duration(nsec)
			secs[i] = float64(sec) + float64(nsec)/1e9
		}
		at[AttrUnits] = "seconds"
		if slab, err = raw.FromFloat64s(dtype.Float64, []int{n}, secs); err != nil {
			return err
		}
	default:
		at[AttrUnits] = "iterations"
		slab = raw.FromInt64s(a.iters)
	}

	return a.ds.addVar(&Variable{
		name:  TimeCoord,
		kind:  TimeVar,
		dims:  []string{TimeDim},
		attrs: at,
		slabs: []*raw.Array{slab},
	}, true)
}

// stepOffset returns iter×step as whole seconds plus nanoseconds in
// [0, 1e9).
func stepOffset(iter int64, step time.Duration) (sec, nsec int64, err error) {
	s, ns := int64(step/time.Second), int64(step%time.Second)
	if iter < 0 || (s > 0 && iter > math.MaxInt64/s) || (ns > 0 && iter > math.MaxInt64/ns) {
		return 0, 0, fmt.Errorf("%w: iteration %d at step %v overflows the time axis", ErrInvalidOption, iter, step)
	}
	sec, nsec = iter*s, iter*ns
	carry := nsec / int64(time.Second)
	if sec > math.MaxInt64-carry {
		return 0, 0, fmt.Errorf("%w: iteration %d at step %v overflows the time axis", ErrInvalidOption, iter, step)
	}
	return sec + carry, nsec % int64(time.Second), nil
}

// timeAt returns ref + iter×step.
func timeAt(ref time.Time, iter int64, step time.Duration) (time.Time, error) {
	sec, nsec, err := stepOffset(iter, step)
	if err != nil {
		return time.Time{}, err
	}
	base := ref.Unix()
	if base > 0 && sec > math.MaxInt64-base {
		return time.Time{}, fmt.Errorf("%w: iteration %d at step %v overflows the time axis", ErrInvalidOption, iter, step)
	}
	return time.Unix(base+sec, int64(ref.Nanosecond())+nsec).UTC(), nil
}
