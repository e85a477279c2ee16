package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nextloc/nextloc-go/internal/dataset"
	"github.com/nextloc/nextloc-go/internal/models"
	"github.com/nextloc/nextloc-go/internal/predictor"
	"github.com/nextloc/nextloc-go/internal/spatial"
	"github.com/nextloc/nextloc-go/internal/stats"
	"github.com/nextloc/nextloc-go/pkg/response"
)

// TrajectoryHandler serves the browse side of the demo: available cities,
// trajectory previews and full trajectory detail.
type TrajectoryHandler struct {
	pred    *predictor.Predictor
	dataDir string
}

// NewTrajectoryHandler creates a new trajectory handler
func NewTrajectoryHandler(pred *predictor.Predictor, dataDir string) *TrajectoryHandler {
	return &TrajectoryHandler{pred: pred, dataDir: dataDir}
}

// ListDatasets handles GET /api/v1/datasets
func (h *TrajectoryHandler) ListDatasets(c *gin.Context) {
	cities, err := dataset.ListCities(h.dataDir)
	if err != nil {
		response.InternalError(c, "Failed to list datasets")
		return
	}

	type datasetInfo struct {
		Name      string `json:"name"`
		Available bool   `json:"available"`
	}
	infos := make([]datasetInfo, 0, len(cities))
	for _, city := range cities {
		infos = append(infos, datasetInfo{Name: city, Available: true})
	}
	response.Success(c, gin.H{"datasets": infos})
}

type trajectoryPreview struct {
	UserID  string         `json:"user_id"`
	TrajID  string         `json:"traj_id"`
	Length  int            `json:"length"`
	Preview map[string]any `json:"preview"`
}

// ListTrajectories handles GET /api/v1/trajectories/:city with pagination
// and context-length filters.
func (h *TrajectoryHandler) ListTrajectories(c *gin.Context) {
	ds, err := h.pred.Dataset(c.Param("city"))
	if err != nil {
		response.NotFound(c, "Unknown city")
		return
	}

	limit := queryInt(c, "limit", 10)
	offset := queryInt(c, "offset", 0)
	minLength := queryInt(c, "min_length", 0)
	maxLength := queryInt(c, "max_length", 0)

	var previews []trajectoryPreview
	for _, userID := range ds.Users() {
		for _, trajID := range ds.Trajectories(userID) {
			traj, ok := ds.Trajectory(userID, trajID)
			if !ok {
				continue
			}
			length := len(traj.ContextStays)
			if minLength > 0 && length < minLength {
				continue
			}
			if maxLength > 0 && length > maxLength {
				continue
			}
			previews = append(previews, trajectoryPreview{
				UserID:  userID,
				TrajID:  trajID,
				Length:  length,
				Preview: preview(traj),
			})
		}
	}

	total := len(previews)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	response.Success(c, gin.H{
		"city":         c.Param("city"),
		"count":        end - offset,
		"total":        total,
		"trajectories": previews[offset:end],
	})
}

// ListUsers handles GET /api/v1/trajectories/:city/users with trajectory
// length statistics per user.
func (h *TrajectoryHandler) ListUsers(c *gin.Context) {
	ds, err := h.pred.Dataset(c.Param("city"))
	if err != nil {
		response.NotFound(c, "Unknown city")
		return
	}

	search := strings.ToLower(c.Query("search"))

	type userInfo struct {
		UserID          string  `json:"user_id"`
		TrajectoryCount int     `json:"trajectory_count"`
		AvgLength       float64 `json:"avg_length"`
		VenueEntropy    float64 `json:"venue_entropy"`
	}
	var users []userInfo
	for _, userID := range ds.Users() {
		if search != "" && !strings.Contains(strings.ToLower(userID), search) {
			continue
		}
		trajIDs := ds.Trajectories(userID)
		if len(trajIDs) == 0 {
			continue
		}
		total := 0
		for _, trajID := range trajIDs {
			if traj, ok := ds.Trajectory(userID, trajID); ok {
				total += len(traj.ContextStays)
			}
		}
		entropy := 0.0
		if _, first, ok := ds.FirstTrajectory(userID); ok {
			entropy = stats.Summarize(first.HistoricalStaysLong).VenueEntropy
		}
		users = append(users, userInfo{
			UserID:          userID,
			TrajectoryCount: len(trajIDs),
			AvgLength:       float64(total) / float64(len(trajIDs)),
			VenueEntropy:    entropy,
		})
	}
	response.Success(c, gin.H{"users": users, "count": len(users)})
}

// GetUserTrajectories handles GET /api/v1/trajectories/:city/:user
func (h *TrajectoryHandler) GetUserTrajectories(c *gin.Context) {
	ds, err := h.pred.Dataset(c.Param("city"))
	if err != nil {
		response.NotFound(c, "Unknown city")
		return
	}

	userID := c.Param("user")
	trajIDs := ds.Trajectories(userID)
	if len(trajIDs) == 0 {
		response.NotFound(c, "Unknown user")
		return
	}

	type trajInfo struct {
		TrajID     string  `json:"traj_id"`
		Length     int     `json:"length"`
		PathMeters float64 `json:"path_meters"`
	}
	infos := make([]trajInfo, 0, len(trajIDs))
	for _, trajID := range trajIDs {
		traj, ok := ds.Trajectory(userID, trajID)
		if !ok {
			continue
		}
		infos = append(infos, trajInfo{
			TrajID:     trajID,
			Length:     len(traj.ContextStays),
			PathMeters: spatial.PathLengthMeters(traj.ContextPos),
		})
	}
	response.Success(c, gin.H{"user_id": userID, "trajectories": infos})
}

// GetTrajectoryDetail handles GET /api/v1/trajectories/:city/:user/:traj
func (h *TrajectoryHandler) GetTrajectoryDetail(c *gin.Context) {
	ds, err := h.pred.Dataset(c.Param("city"))
	if err != nil {
		response.NotFound(c, "Unknown city")
		return
	}

	userID := c.Param("user")
	trajID := c.Param("traj")
	traj, ok := ds.Trajectory(userID, trajID)
	if !ok {
		response.NotFound(c, "Trajectory not found")
		return
	}

	type point struct {
		Hour     int     `json:"hour"`
		Weekday  string  `json:"weekday"`
		Category string  `json:"category"`
		VenueID  string  `json:"venue_id"`
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
		Index    int     `json:"index"`
	}
	points := make([]point, 0, len(traj.ContextStays))
	for i, stay := range traj.ContextStays {
		var pos models.Position
		if i < len(traj.ContextPos) {
			pos = traj.ContextPos[i]
		}
		points = append(points, point{
			Hour:     stay.Hour,
			Weekday:  stay.Weekday,
			Category: stay.Category,
			VenueID:  stay.VenueID,
			Lat:      pos.Lat,
			Lng:      pos.Lon,
			Index:    i,
		})
	}

	detail := gin.H{
		"user_id":           userID,
		"traj_id":           trajID,
		"trajectory_points": points,
		"path_meters":       spatial.PathLengthMeters(traj.ContextPos),
		"metadata": gin.H{
			"total_points":   len(points),
			"has_historical": len(traj.HistoricalStays) > 0,
			"mobility":       stats.Summarize(traj.ContextStays),
		},
	}
	if truth, ok := ds.GroundTruth(userID, trajID); ok {
		detail["ground_truth"] = gin.H{
			"venue_id": truth.VenueID,
			"lat":      truth.Pos.Lat,
			"lng":      truth.Pos.Lon,
			"address":  truth.Address,
		}
	}
	response.Success(c, detail)
}

// preview returns start, middle and end points of the context segment for
// map display.
func preview(traj *models.Trajectory) map[string]any {
	stays := traj.ContextStays
	positions := traj.ContextPos
	if len(stays) == 0 || len(positions) == 0 {
		return map[string]any{}
	}

	indices := []int{0, len(stays) - 1}
	if len(stays) > 2 {
		indices = []int{0, len(stays) / 2, len(stays) - 1}
	}

	points := make([]map[string]any, 0, len(indices))
	for _, idx := range indices {
		var pos models.Position
		if idx < len(positions) {
			pos = positions[idx]
		}
		points = append(points, map[string]any{
			"hour":     stays[idx].Hour,
			"category": stays[idx].Category,
			"lat":      pos.Lat,
			"lng":      pos.Lon,
		})
	}
	return map[string]any{
		"points":       points,
		"total_points": len(stays),
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
