package location

import (
	"math/rand"
	"sync"
	"time"

	"github.com/evanhutnik/mapnav/internal/types"
)

// RandomService samples coordinates uniformly over the lat/lng ranges. It is
// used to seed the initial map view.
type RandomService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomService(seed int64) *RandomService {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomService{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomService) Next() types.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.Coordinate{
		Lat: s.rng.Float64()*180 - 90,
		Lng: s.rng.Float64()*360 - 180,
	}
}
