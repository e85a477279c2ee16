package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trajJSON = `{
	"context_stays": [[9, "Monday", "Cafe", "ctx1"], [18, "Monday", "Gym / Fitness Center", "ctx2"]],
	"context_pos": [[121.47, 31.23], [121.48, 31.24]],
	"context_addr": [["Huangpu", "Old Town", "Corner Cafe", "Main St"], ["Huangpu", "Old Town", "City Gym", "Second St"]],
	"historical_stays": [[8, "Sunday", "Park", "his1"]],
	"historical_pos": [[121.46, 31.22]],
	"historical_addr": [["Huangpu", "Riverside", "Bund Park", "River Rd"]],
	"historical_stays_long": [[8, "Sunday", "Park", "his1", "Huangpu", "Riverside", "Bund Park", "River Rd"]],
	"target_stay": [20, "Monday", "<next_place_id>", "<next_place_address>"]
}`

func writeFixture(t *testing.T, dir, city string) {
	t.Helper()

	testData := `{
		"userB": {"t2": ` + trajJSON + `, "t1": ` + trajJSON + `},
		"userA": {"t9": ` + trajJSON + `}
	}`
	groundData := `{
		"userB": {
			"t2": {"ground_stay": "g2", "ground_pos": [121.5, 31.3], "ground_addr": "Somewhere"},
			"t1": {"ground_stay": "g1", "ground_pos": [121.5, 31.3], "ground_addr": "Somewhere"}
		},
		"userA": {"t9": {"ground_stay": "g9", "ground_pos": [121.5, 31.3], "ground_addr": "Somewhere"}}
	}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, city+"_test.json"), []byte(testData), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, city+"_ground.json"), []byte(groundData), 0o644))
}

func TestLoadPreservesFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Shanghai")

	ds, err := Load(dir, "Shanghai")
	require.NoError(t, err)

	// Insertion order of the file, not lexical order.
	assert.Equal(t, []string{"userB", "userA"}, ds.Users())
	assert.Equal(t, []string{"t2", "t1"}, ds.Trajectories("userB"))

	trajID, traj, ok := ds.FirstTrajectory("userB")
	require.True(t, ok)
	assert.Equal(t, "t2", trajID)
	assert.Equal(t, "ctx1", traj.ContextStays[0].VenueID)
}

func TestLoadParsesStaysAndGroundTruth(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Shanghai")

	ds, err := Load(dir, "Shanghai")
	require.NoError(t, err)

	traj, ok := ds.Trajectory("userA", "t9")
	require.True(t, ok)
	require.Len(t, traj.ContextStays, 2)
	assert.Equal(t, 9, traj.ContextStays[0].Hour)
	assert.Equal(t, "Cafe", traj.ContextStays[0].Category)
	assert.Equal(t, 31.23, traj.ContextPos[0].Lat)
	assert.Equal(t, "Old Town", traj.ContextAddr[0].Subdistrict)
	assert.Equal(t, 20, traj.TargetStay.Hour)
	assert.Equal(t, "Riverside", traj.HistoricalStaysLong[0].Subdistrict)

	truth, ok := ds.GroundTruth("userA", "t9")
	require.True(t, ok)
	assert.Equal(t, "g9", truth.VenueID)
	assert.Equal(t, 31.3, truth.Pos.Lat)
}

func TestLoadUnknownCity(t *testing.T) {
	_, err := Load(t.TempDir(), "Atlantis")
	assert.Error(t, err)
}

func TestTrajectoryLookupMisses(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Shanghai")

	ds, err := Load(dir, "Shanghai")
	require.NoError(t, err)

	_, ok := ds.Trajectory("userA", "missing")
	assert.False(t, ok)
	_, ok = ds.Trajectory("nobody", "t9")
	assert.False(t, ok)
	_, _, ok = ds.FirstTrajectory("nobody")
	assert.False(t, ok)
}

func TestListCities(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Shanghai")
	writeFixture(t, dir, "Beijing")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	cities, err := ListCities(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Shanghai", "Beijing"}, cities)
}
