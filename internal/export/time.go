package export

import (
	"time"

	"github.com/pkg/errors"
)

func timeParse(s string) (time.Time, error) {
	tm, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "bad date %q", s)
	}
	return time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC), nil
}
