package models

// Weekday names in dataset order, Monday first.
var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeekdayName converts an integer day of week (0=Monday .. 6=Sunday) to its
// name, or "NA" when out of range.
func WeekdayName(day int) string {
	if day < 0 || day > 6 {
		return "NA"
	}
	return weekdayNames[day]
}

// WeekdayIndex is the inverse of WeekdayName; unknown names map to -1.
func WeekdayIndex(name string) int {
	for i, n := range weekdayNames {
		if n == name {
			return i
		}
	}
	return -1
}
