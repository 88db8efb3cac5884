package commands

import (
	"github.com/spf13/pflag"

	"github.com/rville-tennis/mixer/pkg/core/search"
)

// rangeValue is a pflag.Value holding a min,max player count range
type rangeValue struct {
	r *search.Range
}

var _ pflag.Value = (*rangeValue)(nil)

func newRangeValue(r *search.Range) *rangeValue {
	return &rangeValue{r: r}
}

func (v *rangeValue) String() string {
	if v.r == nil || *v.r == (search.Range{}) {
		return ""
	}
	return v.r.String()
}

func (v *rangeValue) Set(s string) error {
	r, err := search.ParseRange(s)
	if err != nil {
		return err
	}
	*v.r = r
	return nil
}

func (v *rangeValue) Type() string {
	return "min,max"
}
