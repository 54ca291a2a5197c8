package sheet

import "errors"

var (
	// ErrSheetNotFound is returned when the template lacks the monthly sheet
	ErrSheetNotFound = errors.New("sheet not found in template")
	// ErrCalendarNotDrawn is returned when rows are written before DrawCalendar
	ErrCalendarNotDrawn = errors.New("calendar header not drawn")
)
