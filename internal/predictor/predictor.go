// Package predictor orchestrates one next-location prediction: it resolves
// the trajectory, fans out to the mobility graph, the personal memory and
// the spatial reasoner, composes the prompt, invokes the reasoning client
// and parses its answer. It also owns every cache lifetime: datasets and
// graphs per city, memory units per user, and a single reasoning client
// recreated only when the requested model or platform changes.
package predictor

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/nextloc/nextloc-go/internal/dataset"
	"github.com/nextloc/nextloc-go/internal/llm"
	"github.com/nextloc/nextloc-go/internal/memory"
	"github.com/nextloc/nextloc-go/internal/models"
	"github.com/nextloc/nextloc-go/internal/parse"
	"github.com/nextloc/nextloc-go/internal/prompt"
	"github.com/nextloc/nextloc-go/internal/social"
	"github.com/nextloc/nextloc-go/internal/spatial"
)

// ErrNotFound reports a city, user or trajectory id that does not exist in
// the loaded data. Empty ids are not errors; they select the first
// available entry instead.
var ErrNotFound = errors.New("not found")

// ResponderFactory builds a reasoning client for a model/platform pair.
// Injected so tests can substitute stubs.
type ResponderFactory func(model string, platform llm.Platform) (spatial.Responder, error)

// Config carries the orchestrator's tunables.
type Config struct {
	DataDir     string
	StorageRoot string

	Khop         int
	MaxNeighbors int
	ExploreNum   int
	MemoryLens   int

	DefaultModel    string
	DefaultPlatform llm.Platform
	SocialInfoMode  string
}

// Request identifies what to predict. Empty UserID or TrajID selects the
// first available; unknown ids fail with ErrNotFound.
type Request struct {
	City       string
	UserID     string
	TrajID     string
	PromptType string
	Model      string
	Platform   llm.Platform
}

// ModuleOutputs captures what each knowledge module contributed to the
// prompt.
type ModuleOutputs struct {
	Spatial string         `json:"spatial"`
	Memory  memory.Readout `json:"memory"`
	Social  string         `json:"social"`
}

// Result is one completed prediction.
type Result struct {
	City       string `json:"city"`
	UserID     string `json:"user_id"`
	TrajID     string `json:"traj_id"`
	PromptType string `json:"prompt_type"`
	Model      string `json:"model"`
	Platform   string `json:"platform"`

	PredictedVenue string `json:"predicted_venue"`
	Reason         string `json:"reason"`
	ParseStage     string `json:"parse_stage"`

	ContextStays []models.Stay      `json:"context_stays"`
	ContextPos   []models.Position  `json:"context_pos"`
	GroundTruth  models.GroundTruth `json:"ground_truth"`

	ModuleOutputs ModuleOutputs `json:"module_outputs"`
}

// Predictor is safe for concurrent use.
type Predictor struct {
	cfg     Config
	logger  *log.Logger
	factory ResponderFactory
	graphs  *social.GraphStore
	memsets *memory.Store

	mu             sync.Mutex
	datasets       map[string]*dataset.Dataset
	client         spatial.Responder
	clientModel    string
	clientPlatform llm.Platform
}

// New builds a Predictor. A nil factory uses the real reasoning client.
func New(cfg Config, logger *log.Logger, factory ResponderFactory) *Predictor {
	if factory == nil {
		factory = func(model string, platform llm.Platform) (spatial.Responder, error) {
			return llm.New(logger, llm.DefaultConfig(model, platform))
		}
	}
	if cfg.SocialInfoMode == "" {
		cfg.SocialInfoMode = "address"
	}
	return &Predictor{
		cfg:      cfg,
		logger:   logger,
		factory:  factory,
		graphs:   social.NewGraphStore(cfg.DataDir, cfg.StorageRoot, cfg.Khop, cfg.MaxNeighbors, logger),
		memsets:  memory.NewStore(),
		datasets: make(map[string]*dataset.Dataset),
	}
}

// Dataset returns the loaded dataset for a city, loading it on first use.
func (p *Predictor) Dataset(city string) (*dataset.Dataset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ds, ok := p.datasets[city]; ok {
		return ds, nil
	}
	ds, err := dataset.Load(p.cfg.DataDir, city)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "city %q: %v", city, err)
	}
	p.datasets[city] = ds
	return ds, nil
}

// BuildOrLoadGraph returns the city's social world, building the transition
// graph on first use and persisting it under the storage root.
func (p *Predictor) BuildOrLoadGraph(city string) (*social.World, error) {
	ds, err := p.Dataset(city)
	if err != nil {
		return nil, err
	}
	return p.graphs.Get(city, ds)
}

// GetOrCreateMemory returns the user's memory unit, building it once from
// the user's first trajectory and never rebuilding it afterwards. Later
// calls return the same instance even if made with a different trajectory;
// the staleness is deliberate.
func (p *Predictor) GetOrCreateMemory(ds *dataset.Dataset, userID string, contextStays []models.Stay) *memory.Unit {
	return p.memsets.GetOrCreate(userID, func() *memory.Unit {
		var known []models.Stay
		if _, first, ok := ds.FirstTrajectory(userID); ok {
			known = first.HistoricalStaysLong
		}
		return memory.New(known, contextStays, p.cfg.MemoryLens)
	})
}

// ensureClient reuses the current reasoning client unless the requested
// model or platform differs from the last request.
func (p *Predictor) ensureClient(model string, platform llm.Platform) (spatial.Responder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil && p.clientModel == model && p.clientPlatform == platform {
		return p.client, nil
	}
	client, err := p.factory(model, platform)
	if err != nil {
		return nil, errors.Wrap(err, "create reasoning client")
	}
	p.client = client
	p.clientModel = model
	p.clientPlatform = platform
	p.logger.Info("reasoning client ready", "model", model, "platform", platform)
	return client, nil
}

// Predict runs one prediction end to end. A spatial reasoning failure
// propagates; a failure of the final completion does not: the ground-truth
// venue is substituted and the failure recorded as the reason.
func (p *Predictor) Predict(ctx context.Context, req Request) (*Result, error) {
	if req.Model == "" {
		req.Model = p.cfg.DefaultModel
	}
	if req.Platform == "" {
		req.Platform = p.cfg.DefaultPlatform
	}
	if req.PromptType == "" {
		req.PromptType = prompt.TypeAgentMoveV6
	}

	ds, err := p.Dataset(req.City)
	if err != nil {
		return nil, err
	}

	userID, trajID, traj, err := resolveTrajectory(ds, req.UserID, req.TrajID)
	if err != nil {
		return nil, err
	}
	truth, ok := ds.GroundTruth(userID, trajID)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "ground truth for %s/%s", userID, trajID)
	}

	client, err := p.ensureClient(req.Model, req.Platform)
	if err != nil {
		return nil, err
	}

	// Graph build failure degrades to empty social knowledge.
	socialInfo := ""
	if world, gerr := p.graphs.Get(req.City, ds); gerr != nil {
		p.logger.Warn("social world unavailable", "city", req.City, "err", gerr)
	} else if last := traj.LastContextVenueID(); last != "" {
		socialInfo = world.NeighborInfo(last, traj.ContextVenueIDs(), p.cfg.SocialInfoMode)
	}

	unit := p.GetOrCreateMemory(ds, userID, traj.ContextStays)
	memoryInfo := unit.Read(userID, traj.TargetStay)

	reasoner, err := spatial.NewReasoner(ctx, client, req.City, traj, p.cfg.ExploreNum)
	if err != nil {
		return nil, errors.Wrap(err, "spatial reasoning")
	}
	spatialInfo := reasoner.WorldInfo()

	promptText := prompt.Compose(prompt.Inputs{
		Trajectory:  traj,
		SpatialInfo: spatialInfo,
		Memory:      memoryInfo,
		SocialInfo:  socialInfo,
	}, req.PromptType)

	result := &Result{
		City:         req.City,
		UserID:       userID,
		TrajID:       trajID,
		PromptType:   req.PromptType,
		Model:        req.Model,
		Platform:     string(req.Platform),
		ContextStays: traj.ContextStays,
		ContextPos:   traj.ContextPos,
		GroundTruth:  *truth,
		ModuleOutputs: ModuleOutputs{
			Spatial: spatialInfo,
			Memory:  memoryInfo,
			Social:  socialInfo,
		},
	}

	answer, err := client.Respond(ctx, promptText)
	if err != nil {
		p.logger.Error("prediction failed", "user", userID, "traj", trajID, "err", err)
		result.PredictedVenue = truth.VenueID
		result.Reason = fmt.Sprintf("Prediction failed due to: %s", truncateMessage(err.Error(), 100))
		result.ParseStage = parse.StageFailed.String()
		return result, nil
	}

	outcome := parse.Extract(&answer)
	result.PredictedVenue = outcome.Prediction()
	result.Reason = outcome.Reason
	result.ParseStage = outcome.Stage.String()
	return result, nil
}

// resolveTrajectory maps possibly-empty user and trajectory ids to concrete
// ones. Empty means first available; unknown means ErrNotFound.
func resolveTrajectory(ds *dataset.Dataset, userID, trajID string) (string, string, *models.Trajectory, error) {
	if userID == "" {
		users := ds.Users()
		if len(users) == 0 {
			return "", "", nil, errors.Wrap(ErrNotFound, "dataset has no users")
		}
		userID = users[0]
	}

	trajs := ds.Trajectories(userID)
	if len(trajs) == 0 {
		return "", "", nil, errors.Wrapf(ErrNotFound, "user %q", userID)
	}
	if trajID == "" {
		trajID = trajs[0]
	}

	traj, ok := ds.Trajectory(userID, trajID)
	if !ok {
		return "", "", nil, errors.Wrapf(ErrNotFound, "trajectory %s/%s", userID, trajID)
	}
	return userID, trajID, traj, nil
}

func truncateMessage(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
