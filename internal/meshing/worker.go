package meshing

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"terrainstream/internal/profiling"
	"terrainstream/internal/queue"
	"terrainstream/internal/world"
)

// ChunkRequest asks the worker to generate every LOD of one chunk.
// Epoch is the scheduler pass that issued it.
type ChunkRequest struct {
	Coord world.ChunkCoord
	Epoch uint64
}

// ChunkLODSet is one complete worker delivery: all tiers of one chunk.
type ChunkLODSet struct {
	Coord world.ChunkCoord
	Epoch uint64
	LODs  []ChunkMeshData
}

// BuildLODSet builds one mesh per resolution over the same footprint.
func BuildLODSet(req ChunkRequest, resolutions []int, footprint float64, heights HeightSampler) ChunkLODSet {
	defer profiling.Track("meshing.BuildLODSet")()
	lods := make([]ChunkMeshData, len(resolutions))
	for i, res := range resolutions {
		lods[i] = Build(req.Coord, res, footprint, heights)
	}
	return ChunkLODSet{Coord: req.Coord, Epoch: req.Epoch, LODs: lods}
}

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	Resolutions []int
	Footprint   float64
	IdleBackoff time.Duration
	Logger      *log.Logger
}

// Worker is the background stage of the generation pipeline. It pops requests
// FIFO, builds plain mesh arrays and pushes whole LOD sets. It never touches
// GPU state.
type Worker struct {
	requests *queue.Queue[ChunkRequest]
	results  *queue.Queue[ChunkLODSet]
	heights  HeightSampler
	opts     WorkerOptions

	started  atomic.Bool
	stopping atomic.Bool
	wg       sync.WaitGroup

	generated atomic.Uint64
}

// NewWorker wires a worker between the two queues. Call Start to run it.
func NewWorker(requests *queue.Queue[ChunkRequest], results *queue.Queue[ChunkLODSet], heights HeightSampler, opts WorkerOptions) *Worker {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Worker{
		requests: requests,
		results:  results,
		heights:  heights,
		opts:     opts,
	}
}

// Start launches the worker goroutine. Calling it again is a no-op.
func (w *Worker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.wg.Add(1)
	go w.run()
}

// Stop signals the worker and waits for it to exit. A chunk already being
// built is finished and delivered first; queued requests are left untouched.
func (w *Worker) Stop() {
	w.stopping.Store(true)
	w.wg.Wait()
}

// Generated returns how many LOD sets the worker has delivered.
func (w *Worker) Generated() uint64 {
	return w.generated.Load()
}

func (w *Worker) run() {
	defer w.wg.Done()
	w.opts.Logger.Printf("terrain worker started (%d tiers)", len(w.opts.Resolutions))

	for !w.stopping.Load() {
		req, ok := w.requests.TryPop()
		if !ok {
			time.Sleep(w.opts.IdleBackoff)
			continue
		}
		set := BuildLODSet(req, w.opts.Resolutions, w.opts.Footprint, w.heights)
		w.generated.Add(1)
		w.results.Push(set)
	}

	w.opts.Logger.Printf("terrain worker stopped after %d chunks", w.generated.Load())
}
