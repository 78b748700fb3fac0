package mlhb

import (
	"fmt"

	"github.com/gosuri/uiprogress"
	log "github.com/sirupsen/logrus"
)

// EvaluateYearSerial runs one year in the calling goroutine with a progress
// bar over days; the per-day row fan-out still applies.
func (ev *Evaluator) EvaluateYearSerial(year int) error {
	sr, fx, w, err := ev.openYear(year)
	if err != nil {
		return err
	}
	nd := sr.NumDays()

	uiprogress.Start()
	timestep := make(chan string)
	bar := uiprogress.AddBar(nd).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return <-timestep
	})

	nextState := func() (*DayState, error) {
		sf, err := sr.Next()
		if err != nil {
			return nil, err
		}
		return ev.buildDayState(sf), nil
	}

	var diag yearDiag
	var prev, cur, next *DayState
	if cur, err = nextState(); err != nil {
		return fmt.Errorf("year %d day 0: %w", year, err)
	}
	for d := 0; d < nd; d++ {
		timestep <- fmt.Sprintf("%d day %d/%d", year, d+1, nd)

		if d+1 < nd {
			if next, err = nextState(); err != nil {
				return fmt.Errorf("year %d day %d: %w", year, d+1, err)
			}
		} else {
			next = nil
		}

		fd, err := fx.Day(year, d)
		if err != nil {
			log.WithFields(log.Fields{"year": year, "day": d}).Warnf("flux record unavailable: %v", err)
			fd = nil
		}

		bud := ev.budget(prev, cur, next, fd, &diag)
		if err := w.writeDay(cur, bud); err != nil {
			return fmt.Errorf("year %d day %d: %w", year, d, err)
		}

		prev, cur = cur, next
		bar.Incr()
	}
	close(timestep)
	uiprogress.Stop()

	if diag.nShallow > 0 || diag.nWeWild > 0 {
		log.WithFields(log.Fields{"year": year, "shallow": diag.nShallow, "wespikes": diag.nWeWild}).
			Warn("numerical guards tripped")
	}
	log.WithFields(log.Fields{
		"year":     year,
		"cells":    diag.n,
		"closbad":  diag.nBad,
		"maxclos":  fmt.Sprintf("%.3e", diag.maxAbs),
		"shallow":  diag.nShallow,
		"wespikes": diag.nWeWild,
	}).Info("year complete")
	return nil
}
