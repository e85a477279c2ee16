package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Stay represents one recorded visit event: when the visit happened, what
// kind of venue it was, and where the venue sits administratively.
//
// Processed dataset files store stays as positional arrays
// [hour, weekday, category, venue_id, admin, subdistrict, poi, street];
// short historical stays carry only the first four elements.
type Stay struct {
	Hour     int    `json:"hour"`
	Weekday  string `json:"weekday"`
	Category string `json:"category"`
	VenueID  string `json:"venueId"`

	// Administrative address, present on long-form stays only
	Admin       string `json:"admin,omitempty"`
	Subdistrict string `json:"subdistrict,omitempty"`
	POI         string `json:"poi,omitempty"`
	Street      string `json:"street,omitempty"`
}

// UnmarshalJSON decodes the positional array form. Venue ids appear both as
// integers and as 24-char hex strings across datasets; both normalize to a
// string id.
func (s *Stay) UnmarshalJSON(data []byte) error {
	var arr []interface{}
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("stay must be a JSON array: %w", err)
	}
	if len(arr) < 4 {
		return fmt.Errorf("stay array has %d elements, want at least 4", len(arr))
	}

	hour, err := coerceInt(arr[0])
	if err != nil {
		return fmt.Errorf("stay hour: %w", err)
	}
	s.Hour = hour
	s.Weekday = coerceString(arr[1])
	s.Category = coerceString(arr[2])
	s.VenueID = coerceString(arr[3])

	if len(arr) >= 8 {
		s.Admin = coerceString(arr[4])
		s.Subdistrict = coerceString(arr[5])
		s.POI = coerceString(arr[6])
		s.Street = coerceString(arr[7])
	}
	return nil
}

// MarshalJSON emits the positional array form so round-tripped datasets stay
// compatible with the on-disk format.
func (s Stay) MarshalJSON() ([]byte, error) {
	if !s.HasAddress() {
		return json.Marshal([]interface{}{s.Hour, s.Weekday, s.Category, s.VenueID})
	}
	return json.Marshal([]interface{}{
		s.Hour, s.Weekday, s.Category, s.VenueID,
		s.Admin, s.Subdistrict, s.POI, s.Street,
	})
}

// HasAddress reports whether the stay carries the long-form address fields.
func (s Stay) HasAddress() bool {
	return s.Admin != "" || s.Subdistrict != "" || s.POI != "" || s.Street != ""
}

// Address returns the stay's administrative address fields.
func (s Stay) Address() Address {
	return Address{Admin: s.Admin, Subdistrict: s.Subdistrict, POI: s.POI, Street: s.Street}
}

func coerceInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as integer", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func coerceString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// Integer-valued ids arrive from JSON as float64
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
