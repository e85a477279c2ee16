// Package dataset loads per-city processed trajectory datasets.
//
// Ingestion from raw check-in files happens upstream; this package only
// reads the generated artifacts: <city>_test.json with trajectories and
// <city>_ground.json with held-out ground truth.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nextloc/nextloc-go/internal/models"
)

// Dataset holds one city's generated trajectories and ground truth.
//
// User and trajectory iteration order follows file order: "first
// trajectory" is a meaningful selection for graph construction and memory
// seeding, and Go maps would randomize it.
type Dataset struct {
	City string

	test   map[string]map[string]*models.Trajectory
	ground map[string]map[string]*models.GroundTruth

	users []string
	trajs map[string][]string
}

// Load reads <dir>/<city>_test.json and <dir>/<city>_ground.json.
func Load(dir, city string) (*Dataset, error) {
	d := &Dataset{
		City:   city,
		test:   make(map[string]map[string]*models.Trajectory),
		ground: make(map[string]map[string]*models.GroundTruth),
		trajs:  make(map[string][]string),
	}

	testPath := filepath.Join(dir, city+"_test.json")
	if err := eachNestedMember(testPath, func(user, traj string, raw json.RawMessage) error {
		var t models.Trajectory
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("trajectory %s/%s: %w", user, traj, err)
		}
		if _, ok := d.test[user]; !ok {
			d.test[user] = make(map[string]*models.Trajectory)
			d.users = append(d.users, user)
		}
		if _, ok := d.test[user][traj]; !ok {
			d.trajs[user] = append(d.trajs[user], traj)
		}
		d.test[user][traj] = &t
		return nil
	}); err != nil {
		return nil, err
	}

	groundPath := filepath.Join(dir, city+"_ground.json")
	if err := eachNestedMember(groundPath, func(user, traj string, raw json.RawMessage) error {
		var g models.GroundTruth
		if err := json.Unmarshal(raw, &g); err != nil {
			return fmt.Errorf("ground truth %s/%s: %w", user, traj, err)
		}
		if _, ok := d.ground[user]; !ok {
			d.ground[user] = make(map[string]*models.GroundTruth)
		}
		d.ground[user][traj] = &g
		return nil
	}); err != nil {
		return nil, err
	}

	return d, nil
}

// GetGeneratedDatasets returns the raw test and ground-truth maps.
func (d *Dataset) GetGeneratedDatasets() (map[string]map[string]*models.Trajectory, map[string]map[string]*models.GroundTruth) {
	return d.test, d.ground
}

// Users returns user ids in file order.
func (d *Dataset) Users() []string {
	return d.users
}

// Trajectories returns a user's trajectory ids in file order.
func (d *Dataset) Trajectories(user string) []string {
	return d.trajs[user]
}

// Trajectory looks up one trajectory.
func (d *Dataset) Trajectory(user, traj string) (*models.Trajectory, bool) {
	t, ok := d.test[user][traj]
	return t, ok
}

// GroundTruth looks up one trajectory's held-out answer.
func (d *Dataset) GroundTruth(user, traj string) (*models.GroundTruth, bool) {
	g, ok := d.ground[user][traj]
	return g, ok
}

// FirstTrajectory returns a user's first trajectory in file order.
func (d *Dataset) FirstTrajectory(user string) (string, *models.Trajectory, bool) {
	ids := d.trajs[user]
	if len(ids) == 0 {
		return "", nil, false
	}
	return ids[0], d.test[user][ids[0]], true
}

// ListCities scans a storage directory for generated test files and returns
// the city names they cover.
func ListCities(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}
	var cities []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, "_test.json") {
			continue
		}
		cities = append(cities, strings.TrimSuffix(name, "_test.json"))
	}
	return cities, nil
}

// eachNestedMember streams a two-level JSON object {outer: {inner: value}}
// and visits members in file order.
func eachNestedMember(path string, visit func(outer, inner string, raw json.RawMessage) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for dec.More() {
		outer, err := readKey(dec)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := expectDelim(dec, '{'); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for dec.More() {
			inner, err := readKey(dec)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := visit(outer, inner, raw); err != nil {
				return err
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
