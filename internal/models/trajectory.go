package models

import (
	"encoding/json"
	"fmt"
)

// Position is a [longitude, latitude] pair, matching the dataset's
// on-disk array order.
type Position struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("position must be a JSON array: %w", err)
	}
	if len(arr) != 2 {
		return fmt.Errorf("position array has %d elements, want 2", len(arr))
	}
	p.Lon = arr[0]
	p.Lat = arr[1]
	return nil
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{p.Lon, p.Lat})
}

// Address is a four-level administrative address, stored on disk as
// [admin, subdistrict, poi, street].
type Address struct {
	Admin       string `json:"admin"`
	Subdistrict string `json:"subdistrict"`
	POI         string `json:"poi"`
	Street      string `json:"street"`
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var arr []interface{}
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("address must be a JSON array: %w", err)
	}
	if len(arr) < 4 {
		return fmt.Errorf("address array has %d elements, want 4", len(arr))
	}
	a.Admin = coerceString(arr[0])
	a.Subdistrict = coerceString(arr[1])
	a.POI = coerceString(arr[2])
	a.Street = coerceString(arr[3])
	return nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{a.Admin, a.Subdistrict, a.POI, a.Street})
}

// TargetStay is the held-out next stay: its time slot is known to the
// predictor, the venue is what the predictor must produce.
type TargetStay struct {
	Hour    int    `json:"hour"`
	Weekday string `json:"weekday"`
}

func (t *TargetStay) UnmarshalJSON(data []byte) error {
	var arr []interface{}
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("target stay must be a JSON array: %w", err)
	}
	if len(arr) < 2 {
		return fmt.Errorf("target stay array has %d elements, want at least 2", len(arr))
	}
	hour, err := coerceInt(arr[0])
	if err != nil {
		return fmt.Errorf("target stay hour: %w", err)
	}
	t.Hour = hour
	t.Weekday = coerceString(arr[1])
	return nil
}

func (t TargetStay) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{t.Hour, t.Weekday, "<next_place_id>", "<next_place_address>"})
}

// Trajectory is one user's ordered stay sequence, split into a long-term
// historical segment and a short-term context segment, with parallel
// positions and addresses and a held-out target.
type Trajectory struct {
	ContextStays []Stay     `json:"context_stays"`
	ContextPos   []Position `json:"context_pos"`
	ContextAddr  []Address  `json:"context_addr"`

	HistoricalStays []Stay     `json:"historical_stays"`
	HistoricalPos   []Position `json:"historical_pos"`
	HistoricalAddr  []Address  `json:"historical_addr"`

	// HistoricalStaysLong is the user's full long-form history; the
	// mobility graph and the personal memory derive from it.
	HistoricalStaysLong []Stay `json:"historical_stays_long"`

	TargetStay TargetStay `json:"target_stay"`
}

// ContextVenueIDs returns the venue ids of the context segment in order.
func (t *Trajectory) ContextVenueIDs() []string {
	ids := make([]string, 0, len(t.ContextStays))
	for _, s := range t.ContextStays {
		ids = append(ids, s.VenueID)
	}
	return ids
}

// LastContextVenueID returns the most recent context venue id, or "" when
// the context segment is empty.
func (t *Trajectory) LastContextVenueID() string {
	if len(t.ContextStays) == 0 {
		return ""
	}
	return t.ContextStays[len(t.ContextStays)-1].VenueID
}

// GroundTruth is the held-out answer for one trajectory.
type GroundTruth struct {
	VenueID string   `json:"ground_stay"`
	Pos     Position `json:"ground_pos"`
	Address string   `json:"ground_addr"`
}

func (g *GroundTruth) UnmarshalJSON(data []byte) error {
	var raw struct {
		GroundStay interface{} `json:"ground_stay"`
		GroundPos  Position    `json:"ground_pos"`
		GroundAddr string      `json:"ground_addr"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.VenueID = coerceString(raw.GroundStay)
	g.Pos = raw.GroundPos
	g.Address = raw.GroundAddr
	return nil
}
