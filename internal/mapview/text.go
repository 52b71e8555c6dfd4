package mapview

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/evanhutnik/mapnav/internal/types"
)

// TextCanvas is a Canvas that describes every draw call as a line of text.
// It backs the command line client and keeps a count of live overlays.
type TextCanvas struct {
	mu      sync.Mutex
	out     io.Writer
	maps    int
	markers int
	routes  int
}

func NewTextCanvas(out io.Writer) *TextCanvas {
	return &TextCanvas{out: out}
}

func (c *TextCanvas) printf(format string, args ...interface{}) {
	if c.out != nil {
		fmt.Fprintf(c.out, format+"\n", args...)
	}
}

func (c *TextCanvas) CreateMap(center types.Coordinate, zoom int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maps++
	c.printf("map created at %v (zoom %d)", center, zoom)
	return nil
}

func (c *TextCanvas) SetCenter(center types.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("map centered at %v", center)
}

func (c *TextCanvas) SetZoom(zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("zoom %d", zoom)
}

func (c *TextCanvas) AddMarker(at types.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers++
	c.printf("marker at %v", at)
}

func (c *TextCanvas) RemoveMarker() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.markers > 0 {
		c.markers--
	}
}

func (c *TextCanvas) DrawRoute(ctx context.Context, start, end types.Coordinate, mode TravelMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes++
	c.printf("%s route %v -> %v", mode, start, end)
	return nil
}

func (c *TextCanvas) RemoveRoute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.routes > 0 {
		c.routes--
	}
}

// Counts returns the number of maps, markers and routes currently drawn.
func (c *TextCanvas) Counts() (maps, markers, routes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maps, c.markers, c.routes
}
