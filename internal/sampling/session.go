package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"ha-image-scene/internal/model"
)

var (
	ErrNoLights       = errors.New("select at least one light before sampling")
	ErrNoImage        = errors.New("load an image before sampling")
	ErrBlankLightID   = errors.New("light entity id is empty")
	ErrDuplicateLight = errors.New("light selected more than once")
)

// Options tune position generation. A negative MinDistance or EdgePadding
// selects the default; zero is a valid setting for both.
type Options struct {
	MinDistance float64
	EdgePadding float64
	Rand        *rand.Rand
}

// DefaultOptions returns the default spacing and padding with a clock-seeded
// source.
func DefaultOptions() Options {
	return Options{MinDistance: DefaultMinDistance, EdgePadding: DefaultEdgePadding}
}

// Session holds the loaded raster and one sample point per light. It is not
// safe for concurrent use; the owner serializes calls.
type Session struct {
	raster      *Raster
	points      []model.SamplePoint
	minDistance float64
	edgePadding float64
	rng         *rand.Rand
}

func NewSession(opts Options) *Session {
	if opts.MinDistance < 0 || math.IsNaN(opts.MinDistance) {
		opts.MinDistance = DefaultMinDistance
	}
	if opts.EdgePadding < 0 || math.IsNaN(opts.EdgePadding) {
		opts.EdgePadding = DefaultEdgePadding
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		points:      []model.SamplePoint{},
		minDistance: opts.MinDistance,
		edgePadding: opts.EdgePadding,
		rng:         opts.Rand,
	}
}

// Load swaps in a new raster. Points sampled from the previous one are
// dropped.
func (s *Session) Load(r *Raster) {
	s.raster = r
	s.Reset()
}

func (s *Session) Raster() *Raster {
	return s.raster
}

// Randomize assigns a fresh random position to every light and samples its
// color from raster, replacing all existing points. On error nothing changes.
func (s *Session) Randomize(lights []model.Light, raster *Raster) error {
	if len(lights) == 0 {
		return ErrNoLights
	}
	if err := checkLights(lights); err != nil {
		return err
	}
	if raster == nil {
		return ErrNoImage
	}

	coords := GeneratePositions(s.rng, len(lights), s.minDistance, s.edgePadding)
	points := make([]model.SamplePoint, 0, len(lights))
	for i, light := range lights {
		points = append(points, model.SamplePoint{
			ID:         uuid.NewString(),
			Coordinate: coords[i],
			RawColor:   SampleAt(raster, coords[i]),
			LightID:    light.EntityID,
			LightName:  light.Name,
		})
	}

	s.raster = raster
	s.points = points
	return nil
}

// checkLights rejects ids that would collide in the scene payload.
func checkLights(lights []model.Light) error {
	seen := make(map[string]struct{}, len(lights))
	for _, l := range lights {
		id := strings.TrimSpace(l.EntityID)
		if id == "" {
			return ErrBlankLightID
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateLight, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Reposition moves one point to a position given in frame units and
// resamples its color. It reports false if no point has that id.
func (s *Session) Reposition(id string, pos model.FramePoint) bool {
	for i := range s.points {
		if s.points[i].ID != id {
			continue
		}
		c := FromFrame(pos)
		s.points[i].Coordinate = c
		s.points[i].RawColor = SampleAt(s.raster, c)
		return true
	}
	return false
}

func (s *Session) Reset() {
	s.points = []model.SamplePoint{}
}

func (s *Session) Points() []model.SamplePoint {
	out := make([]model.SamplePoint, len(s.points))
	copy(out, s.points)
	return out
}
