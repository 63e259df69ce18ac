package fleet

import (
	"sort"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/rickar/cal/v2"
)

// maxDepartureSearchDays bounds how far ahead Departures looks for service
const maxDepartureSearchDays = 7

// ServiceDay names which schedule list a departure comes from
type ServiceDay string

const (
	WeekdayService ServiceDay = "weekday"
	WeekendService ServiceDay = "weekend"
)

// Departure is a scheduled departure from a route's origin
type Departure struct {
	RouteId    string     `json:"routeId"`
	Time       time.Time  `json:"time"`
	ServiceDay ServiceDay `json:"serviceDay"`
}

// HolidayCalendar decides which days run the weekend schedule besides Saturdays and Sundays
type HolidayCalendar struct {
	calendar *cal.BusinessCalendar
}

// NewNationalHolidayCalendar builds a HolidayCalendar observing the fixed date national holidays
func NewNationalHolidayCalendar() *HolidayCalendar {
	calendar := cal.NewBusinessCalendar()
	calendar.AddHoliday(
		&cal.Holiday{Name: "Republic Day", Type: cal.ObservancePublic, Month: time.January, Day: 26,
			Func: cal.CalcDayOfMonth},
		&cal.Holiday{Name: "Independence Day", Type: cal.ObservancePublic, Month: time.August, Day: 15,
			Func: cal.CalcDayOfMonth},
		&cal.Holiday{Name: "Gandhi Jayanti", Type: cal.ObservancePublic, Month: time.October, Day: 2,
			Func: cal.CalcDayOfMonth},
	)
	return &HolidayCalendar{calendar: calendar}
}

// IsHoliday returns true if at falls on an observed holiday
func (h *HolidayCalendar) IsHoliday(at time.Time) bool {
	if h == nil {
		return false
	}
	_, observed, _ := h.calendar.IsHoliday(at)
	return observed
}

// serviceDay returns the schedule that runs on the date of at
func (h *HolidayCalendar) serviceDay(at time.Time) ServiceDay {
	switch at.Weekday() {
	case time.Saturday, time.Sunday:
		return WeekendService
	}
	if h.IsHoliday(at) {
		return WeekendService
	}
	return WeekdayService
}

// Departures returns up to limit departures of route at or after at, in at's time zone.
// Inactive routes have no departures. Unparsable schedule entries are skipped.
func (h *HolidayCalendar) Departures(route bus.Route, at time.Time, limit int) []Departure {
	results := make([]Departure, 0)
	if !route.IsActive || limit < 1 {
		return results
	}
	midnight := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	for day := 0; day < maxDepartureSearchDays && len(results) < limit; day++ {
		serviceDate := midnight.AddDate(0, 0, day)
		serviceDay := h.serviceDay(serviceDate)
		times := route.Schedule.Weekday
		if serviceDay == WeekendService {
			times = route.Schedule.Weekend
		}
		for _, departureTime := range scheduleTimes(serviceDate, times) {
			if departureTime.Before(at) {
				continue
			}
			results = append(results, Departure{
				RouteId:    route.RouteId,
				Time:       departureTime,
				ServiceDay: serviceDay,
			})
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

// scheduleTimes converts "HH:MM" entries to sorted times on serviceDate
func scheduleTimes(serviceDate time.Time, entries []string) []time.Time {
	results := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		clock, err := time.Parse("15:04", entry)
		if err != nil {
			continue
		}
		results = append(results, time.Date(serviceDate.Year(), serviceDate.Month(), serviceDate.Day(),
			clock.Hour(), clock.Minute(), 0, 0, serviceDate.Location()))
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Before(results[j])
	})
	return results
}
