package services

import (
	"time"

	"github.com/vsinha/cockpit/pkg/domain/entities"
)

const (
	timeRangePaddingDays = 2
	emptyRangeDays       = 30
)

// Flatten walks the tree pre-order: a bar precedes its children, children keep list order
func Flatten(root *entities.GanttBar) []*entities.GanttBar {
	if root == nil {
		return nil
	}

	var bars []*entities.GanttBar
	stack := []*entities.GanttBar{root}
	for len(stack) > 0 {
		bar := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		bars = append(bars, bar)

		for i := len(bar.Children) - 1; i >= 0; i-- {
			stack = append(stack, bar.Children[i])
		}
	}
	return bars
}

// TimeRange returns the span covering all bars, padded by two days on each side.
// Without bars it spans the next thirty days from now.
func TimeRange(bars []*entities.GanttBar, now time.Time) entities.DateRange {
	if len(bars) == 0 {
		today := entities.DateOf(now)
		return entities.DateRange{Start: today, End: today.AddDays(emptyRangeDays)}
	}

	start, end := bars[0].StartDate, bars[0].EndDate
	for _, bar := range bars[1:] {
		if bar.StartDate.Before(start) {
			start = bar.StartDate
		}
		if bar.EndDate.After(end) {
			end = bar.EndDate
		}
	}

	return entities.DateRange{
		Start: start.AddDays(-timeRangePaddingDays),
		End:   end.AddDays(timeRangePaddingDays),
	}
}

// FilterShortages keeps the bars flagged with a material shortage
func FilterShortages(bars []*entities.GanttBar) []*entities.GanttBar {
	var short []*entities.GanttBar
	for _, bar := range bars {
		if bar.HasShortage {
			short = append(short, bar)
		}
	}
	return short
}
