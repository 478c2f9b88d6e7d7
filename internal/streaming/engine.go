// Package streaming keeps a square of terrain chunks resident around a moving
// viewer. The Engine owns the active-chunk registry and the in-flight set; it
// feeds a single generation worker through a request queue and uploads the
// worker's results on the goroutine that calls it.
package streaming

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"terrainstream/internal/config"
	"terrainstream/internal/meshing"
	"terrainstream/internal/profiling"
	"terrainstream/internal/queue"
	"terrainstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrClosed is returned by operations on a closed Engine.
var ErrClosed = errors.New("streaming: engine closed")

// ChunkState is where a coordinate sits in the streaming lifecycle.
type ChunkState int

const (
	StateUnrequested ChunkState = iota
	// StatePending covers both queued and generated-but-not-uploaded chunks.
	StatePending
	StateActive
)

func (s ChunkState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	default:
		return "unrequested"
	}
}

// DrawItem is what the renderer needs to draw one chunk this frame.
type DrawItem struct {
	Coord      world.ChunkCoord
	Origin     mgl32.Vec3
	Tier       int
	Buffers    Buffers
	IndexCount int32
}

// Stats is a point-in-time view of the pipeline.
type Stats struct {
	Active            int
	Pending           int
	QueuedRequests    int
	QueuedCompletions int
	Generated         uint64
	Evicted           uint64
	DroppedStale      uint64
	LastRequested     int
	LastEvicted       int
}

// Engine is the streaming core. All methods except HeightAt must be called
// from a single goroutine (the render goroutine).
type Engine struct {
	settings config.Settings
	heights  *world.HeightField
	uploader Uploader
	logger   *log.Logger

	requests    *queue.Queue[meshing.ChunkRequest]
	completions *queue.Queue[meshing.ChunkLODSet]
	worker      *meshing.Worker

	registry *Registry
	// pending maps in-flight coordinates to the epoch of their request.
	pending map[world.ChunkCoord]uint64

	epoch     uint64
	center    world.ChunkCoord
	hasCenter bool
	closed    bool

	evicted       uint64
	droppedStale  uint64
	lastEvicted   int
	lastRequested int
}

// NewEngine validates s, builds the height field and starts the worker.
// A nil logger uses log.Default().
func NewEngine(s config.Settings, uploader Uploader, logger *log.Logger) (*Engine, error) {
	e, err := newEngine(s, uploader, logger)
	if err != nil {
		return nil, err
	}
	e.worker.Start()
	return e, nil
}

func newEngine(s config.Settings, uploader Uploader, logger *log.Logger) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if uploader == nil {
		return nil, fmt.Errorf("streaming: nil uploader")
	}
	if logger == nil {
		logger = log.Default()
	}

	e := &Engine{
		settings:    s,
		heights:     world.NewHeightField(s.Noise),
		uploader:    uploader,
		logger:      logger,
		requests:    queue.New[meshing.ChunkRequest](),
		completions: queue.New[meshing.ChunkLODSet](),
		registry:    newRegistry(),
		pending:     make(map[world.ChunkCoord]uint64),
	}
	e.worker = meshing.NewWorker(e.requests, e.completions, e.heights, meshing.WorkerOptions{
		Resolutions: s.LODResolutions,
		Footprint:   s.ChunkSize,
		IdleBackoff: s.IdleBackoff,
		Logger:      logger,
	})
	return e, nil
}

// Settings returns the configuration the engine was built with.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// Registry exposes the active chunks.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// HeightField returns the terrain height function. It is safe to use from any
// goroutine.
func (e *Engine) HeightField() *world.HeightField {
	return e.heights
}

// HeightAt returns the terrain elevation at world (x, z). Safe from any goroutine.
func (e *Engine) HeightAt(x, z float64) float32 {
	return e.heights.HeightAt(x, z)
}

// ViewerChunk returns the chunk the required set is currently centred on.
func (e *Engine) ViewerChunk() (world.ChunkCoord, bool) {
	return e.center, e.hasCenter
}

// State reports the lifecycle state of coord.
func (e *Engine) State(coord world.ChunkCoord) ChunkState {
	if e.registry.Has(coord) {
		return StateActive
	}
	if _, ok := e.pending[coord]; ok {
		return StatePending
	}
	return StateUnrequested
}

// Update feeds the viewer position for this frame. The required set is only
// recomputed when the viewer enters a different chunk; completions are polled
// every call.
func (e *Engine) Update(viewer mgl32.Vec3) error {
	if e.closed {
		return ErrClosed
	}
	c := world.ChunkCoordAt(float64(viewer.X()), float64(viewer.Z()), e.settings.ChunkSize)
	if !e.hasCenter || c != e.center {
		e.UpdateRequiredSet(c)
	}
	_, err := e.Poll()
	return err
}

// UpdateRequiredSet recentres the required square on center: active chunks
// outside it are evicted and every missing coordinate inside it is requested
// exactly once. It returns the number of new requests and evictions.
func (e *Engine) UpdateRequiredSet(center world.ChunkCoord) (requested, evicted int) {
	if e.closed {
		return 0, 0
	}
	defer profiling.Track("streaming.UpdateRequiredSet")()

	r := e.settings.StreamingRadius
	e.epoch++
	e.center = center
	e.hasCenter = true

	for _, c := range e.registry.Sorted() {
		if world.ChebyshevDistance(center, c.Coord) <= r {
			continue
		}
		e.release(c)
		e.registry.remove(c.Coord)
		evicted++
	}

	if e.settings.StalePolicy == config.StaleDrop {
		// Abandon out-of-range requests; their deliveries no longer match an
		// in-flight epoch and are discarded by Poll.
		for c := range e.pending {
			if world.ChebyshevDistance(center, c) > r {
				delete(e.pending, c)
			}
		}
	}

	for _, c := range world.Square(center, r) {
		if e.registry.Has(c) {
			continue
		}
		if _, ok := e.pending[c]; ok {
			continue
		}
		e.pending[c] = e.epoch
		e.requests.Push(meshing.ChunkRequest{Coord: c, Epoch: e.epoch})
		requested++
	}

	e.evicted += uint64(evicted)
	e.lastEvicted = evicted
	e.lastRequested = requested
	if evicted > 0 || requested > 0 {
		e.logger.Printf("viewer chunk %v: requested %d, evicted %d, pending %d", center, requested, evicted, len(e.pending))
	}
	return requested, evicted
}

// Poll drains every completed LOD set without blocking and uploads it. Upload
// failures are returned after the rest of the queue has been processed; the
// failed coordinate goes back to unrequested.
func (e *Engine) Poll() (int, error) {
	if e.closed {
		return 0, ErrClosed
	}
	defer profiling.Track("streaming.Poll")()

	var errs []error
	inserted := 0
	for _, set := range e.completions.Drain() {
		epoch, ok := e.pending[set.Coord]
		if !ok || epoch != set.Epoch {
			e.droppedStale++
			continue
		}
		delete(e.pending, set.Coord)
		if e.registry.Has(set.Coord) {
			continue
		}

		chunk, err := e.upload(set)
		if err != nil {
			e.logger.Printf("upload chunk %v failed: %v", set.Coord, err)
			errs = append(errs, err)
			continue
		}
		e.registry.insert(chunk)
		inserted++
	}
	return inserted, errors.Join(errs...)
}

// Resident reports whether every coordinate of the current required square is
// active.
func (e *Engine) Resident() bool {
	if !e.hasCenter {
		return false
	}
	for _, c := range world.Square(e.center, e.settings.StreamingRadius) {
		if !e.registry.Has(c) {
			return false
		}
	}
	return true
}

// WaitResident blocks, polling, until the required square is fully active.
// It is meant for startup so the first frame is complete.
func (e *Engine) WaitResident(ctx context.Context) error {
	if !e.hasCenter {
		return fmt.Errorf("streaming: WaitResident before the first Update")
	}
	start := time.Now()
	backoff := max(e.settings.IdleBackoff, time.Millisecond)
	for !e.Resident() {
		if _, err := e.Poll(); err != nil {
			return err
		}
		if e.Resident() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	e.logger.Printf("warm-up complete: %d chunks resident in %v", e.registry.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}

// Visible returns every active chunk ordered by (X, Z) with the tier chosen
// from its current distance to the viewer.
func (e *Engine) Visible(viewer mgl32.Vec3) []DrawItem {
	defer profiling.Track("streaming.Visible")()
	chunks := e.registry.Sorted()
	out := make([]DrawItem, 0, len(chunks))
	v := mgl32.Vec2{viewer.X(), viewer.Z()}
	for _, c := range chunks {
		dist := c.Coord.Center(e.settings.ChunkSize).Sub(v).Len()
		tier := SelectLOD(dist, e.settings.LODThresholds, len(c.LODs))
		lod := c.LODs[tier]
		out = append(out, DrawItem{
			Coord:      c.Coord,
			Origin:     c.Origin,
			Tier:       tier,
			Buffers:    lod.Buffers,
			IndexCount: lod.IndexCount,
		})
	}
	return out
}

// Stats returns current pipeline counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Active:            e.registry.Len(),
		Pending:           len(e.pending),
		QueuedRequests:    e.requests.Len(),
		QueuedCompletions: e.completions.Len(),
		Generated:         e.worker.Generated(),
		Evicted:           e.evicted,
		DroppedStale:      e.droppedStale,
		LastRequested:     e.lastRequested,
		LastEvicted:       e.lastEvicted,
	}
}

// Close stops the worker (letting its current chunk finish), discards queued
// requests and undelivered completions, and releases every active chunk.
// Calling Close more than once is a no-op.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true

	e.worker.Stop()
	requests := len(e.requests.Drain())
	completions := len(e.completions.Drain())

	active := e.registry.Len()
	for _, c := range e.registry.Sorted() {
		e.release(c)
		e.registry.remove(c.Coord)
	}
	clear(e.pending)

	e.logger.Printf("streaming closed: released %d chunks, discarded %d requests and %d completions", active, requests, completions)
}

func (e *Engine) upload(set meshing.ChunkLODSet) (*Chunk, error) {
	defer profiling.Track("streaming.upload")()
	if len(set.LODs) != e.settings.TierCount() {
		return nil, fmt.Errorf("chunk %v: got %d LODs, want %d", set.Coord, len(set.LODs), e.settings.TierCount())
	}

	chunk := &Chunk{
		Coord:  set.Coord,
		Origin: set.LODs[0].Offset,
		LODs:   make([]LODLevel, 0, len(set.LODs)),
	}
	for tier, m := range set.LODs {
		b, err := e.uploader.Upload(m)
		if err != nil {
			e.release(chunk)
			return nil, fmt.Errorf("chunk %v tier %d: %w", set.Coord, tier, err)
		}
		chunk.LODs = append(chunk.LODs, LODLevel{
			Buffers:    b,
			IndexCount: m.IndexCount(),
			Resolution: m.Resolution,
		})
	}
	return chunk, nil
}

func (e *Engine) release(c *Chunk) {
	for _, lod := range c.LODs {
		e.uploader.Release(lod.Buffers)
	}
	c.LODs = nil
}
