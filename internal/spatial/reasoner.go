package spatial

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/nextloc/nextloc-go/internal/models"
)

const (
	// maxLens bounds the rendered world-info block; overlong renders keep
	// their tail, which holds the most recent estimates.
	maxLens = 1000

	// maxHistory caps how many trailing historical addresses feed the
	// reasoning queries.
	maxHistory = 50

	// DefaultExploreNum is how many candidate places each query asks for.
	DefaultExploreNum = 5
)

// Responder answers a free-form reasoning query.
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// Reasoner estimates the next likely subdistricts and POIs for one
// trajectory by issuing two bounded natural-language queries. Estimates are
// trajectory-specific, so a Reasoner is built fresh per prediction and never
// cached.
type Reasoner struct {
	city       string
	exploreNum int

	adminAreas   []string
	subdistricts []string
	pois         [][2]string // (poi name, street)

	subdistrictInfo string
	poiInfo         string
}

// NewReasoner gathers the trajectory's addresses and runs both queries
// immediately. A failed query fails construction.
func NewReasoner(ctx context.Context, responder Responder, city string, traj *models.Trajectory, exploreNum int) (*Reasoner, error) {
	r := &Reasoner{city: city, exploreNum: exploreNum}
	if r.exploreNum <= 0 {
		r.exploreNum = DefaultExploreNum
	}

	historical := traj.HistoricalAddr
	if len(historical) > maxHistory {
		historical = historical[len(historical)-maxHistory:]
	}

	seen := make(map[string]bool)
	collect := func(addrs []models.Address) {
		for _, a := range addrs {
			if !seen[a.Admin] {
				seen[a.Admin] = true
				r.adminAreas = append(r.adminAreas, a.Admin)
			}
			r.subdistricts = append(r.subdistricts, a.Subdistrict)
			r.pois = append(r.pois, [2]string{a.POI, a.Street})
		}
	}
	collect(historical)
	collect(traj.ContextAddr)

	subdistrictInfo, err := responder.Respond(ctx, r.subdistrictQuery())
	if err != nil {
		return nil, errors.Wrap(err, "subdistrict query")
	}
	r.subdistrictInfo = subdistrictInfo

	poiInfo, err := responder.Respond(ctx, r.poiQuery())
	if err != nil {
		return nil, errors.Wrap(err, "poi query")
	}
	r.poiInfo = poiInfo

	return r, nil
}

func (r *Reasoner) subdistrictQuery() string {
	return fmt.Sprintf(
		"This trajectory moves within following administrative areas:\n[%s]\n"+
			"This trajectory sequentially visited following subdistricts, "+
			"with the last subdistrict being the most recently visited:\n%s"+
			"Consider about following two aspects:\n"+
			"1.The frequency each subdistrict is visited.\n"+
			"2.Transition probability between two administrative areas.\n"+
			"Please predict the next subdistrict in the trajectory. "+
			"Give %d subdistricts that are relatively likely to be visited. "+
			"Do not output other content.",
		strings.Join(r.adminAreas, ", "),
		strings.Join(r.subdistricts, ";"),
		r.exploreNum,
	)
}

func (r *Reasoner) poiQuery() string {
	pois := make([]string, 0, len(r.pois))
	for _, p := range r.pois {
		pois = append(pois, fmt.Sprintf("(%s, %s)", p[0], p[1]))
	}
	return fmt.Sprintf(
		"This trajectory sequentially visited following POIs"+
			"(Each POI is represented by 'POI name, the feeder road or access road it is on'), "+
			"with the last POI being the most recently visited:\n%s"+
			"Consider about following two aspects:\n"+
			"1.The frequency each subdistrict is visited\n"+
			"2.The frequency each poi is visited\n"+
			"3.Transition probability between two subdistricts.\n"+
			"4.Transition probability between two pois."+
			"Please predict the next poi in the trajectory."+
			"Give %d POIs that are relatively likely to be visited. "+
			"Do not output other content.",
		strings.Join(pois, ";"),
		r.exploreNum,
	)
}

// WorldInfo renders both estimates as one prompt block, truncated to its
// trailing characters when over budget.
func (r *Reasoner) WorldInfo() string {
	info := fmt.Sprintf(
		"\n### Names of subdistricts that are relatively likely to be visited:\n%s\n"+
			"### Names of POIs that are relatively likely to be visited:\n%s\n",
		r.subdistrictInfo, r.poiInfo,
	)
	if len(info) <= maxLens {
		return info
	}
	return info[len(info)-maxLens:]
}
