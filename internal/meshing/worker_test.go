package meshing

import (
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"terrainstream/internal/queue"
	"terrainstream/internal/world"
)

var quietLogger = log.New(io.Discard, "", 0)

func newTestWorker(heights HeightSampler) (*Worker, *queue.Queue[ChunkRequest], *queue.Queue[ChunkLODSet]) {
	reqs := queue.New[ChunkRequest]()
	results := queue.New[ChunkLODSet]()
	w := NewWorker(reqs, results, heights, WorkerOptions{
		Resolutions: []int{8, 4, 2},
		Footprint:   100,
		IdleBackoff: 100 * time.Microsecond,
		Logger:      quietLogger,
	})
	return w, reqs, results
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWorkerDeliversFullSetsInRequestOrder(t *testing.T) {
	w, reqs, results := newTestWorker(flatSampler(2))
	coords := []world.ChunkCoord{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: -1, Z: 3}, {X: 5, Z: 5}}
	for i, c := range coords {
		reqs.Push(ChunkRequest{Coord: c, Epoch: uint64(i + 1)})
	}
	w.Start()
	defer w.Stop()

	waitFor(t, func() bool { return results.Len() == len(coords) })
	got := results.Drain()
	for i, set := range got {
		if set.Coord != coords[i] {
			t.Errorf("delivery %d = %v, want %v", i, set.Coord, coords[i])
		}
		if set.Epoch != uint64(i+1) {
			t.Errorf("delivery %d epoch = %d", i, set.Epoch)
		}
		if len(set.LODs) != 3 {
			t.Fatalf("delivery %d has %d LODs", i, len(set.LODs))
		}
		for tier, lod := range set.LODs {
			if lod.Coord != set.Coord {
				t.Errorf("tier %d coord %v != %v", tier, lod.Coord, set.Coord)
			}
		}
	}
	if w.Generated() != uint64(len(coords)) {
		t.Errorf("Generated = %d", w.Generated())
	}
}

// gateSampler blocks the first HeightAt call until released.
type gateSampler struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gateSampler) HeightAt(x, z float64) float32 {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return 0
}

func TestWorkerStopFinishesInFlightChunk(t *testing.T) {
	gate := &gateSampler{entered: make(chan struct{}), release: make(chan struct{})}
	w, reqs, results := newTestWorker(gate)
	reqs.Push(ChunkRequest{Coord: world.ChunkCoord{X: 1, Z: 1}})
	reqs.Push(ChunkRequest{Coord: world.ChunkCoord{X: 2, Z: 2}})
	reqs.Push(ChunkRequest{Coord: world.ChunkCoord{X: 3, Z: 3}})
	w.Start()

	<-gate.entered
	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a chunk was still being built")
	case <-time.After(20 * time.Millisecond):
	}
	waitFor(t, w.stopping.Load)
	close(gate.release)
	<-stopped

	got := results.Drain()
	if len(got) != 1 {
		t.Fatalf("expected exactly the in-flight chunk, got %d deliveries", len(got))
	}
	if got[0].Coord != (world.ChunkCoord{X: 1, Z: 1}) || len(got[0].LODs) != 3 {
		t.Fatalf("partial or wrong delivery: %v with %d LODs", got[0].Coord, len(got[0].LODs))
	}
	if reqs.Len() != 2 {
		t.Errorf("queued requests = %d, want 2 left untouched", reqs.Len())
	}
}

func TestWorkerStartStopIdempotent(t *testing.T) {
	w, _, _ := newTestWorker(flatSampler(0))
	w.Start()
	w.Start()
	w.Stop()
	w.Stop()
}

func TestWorkerStopWithoutStart(t *testing.T) {
	w, _, _ := newTestWorker(flatSampler(0))
	w.Stop()
}
