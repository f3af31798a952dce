package meshing

import (
	"context"
	"sync"

	"mini-csg/pkg/csg"
)

// BuildJob represents a scene evaluation request
type BuildJob struct {
	Name  string
	Build func() (*csg.Solid, error)
	// Result channel - will be sent the result when done
	ResultChan chan BuildResult
}

// BuildResult contains the evaluated solid and its triangle mesh
type BuildResult struct {
	Name     string
	Solid    *csg.Solid
	Vertices []float32 // Interleaved, VertexStride floats per vertex
	Error    error
}

// WorkerPool manages goroutines evaluating CSG scenes
type WorkerPool struct {
	jobQueue chan BuildJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new evaluation worker pool
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		jobQueue: make(chan BuildJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJob submits a job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job BuildJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued
func (p *WorkerPool) SubmitJobBlocking(job BuildJob) {
	select {
	case p.jobQueue <- job:
	case <-p.ctx.Done():
	}
}

// worker is the worker goroutine that processes build jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			result := BuildResult{Name: job.Name}
			solid, err := job.Build()
			if err != nil {
				result.Error = err
			} else {
				result.Solid = solid
				result.Vertices = BuildSolidMesh(solid)
			}

			// Send result back
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers. Jobs still queued are dropped. The queue stays
// open, so submitting after Shutdown never panics.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// QueueLength returns the current number of jobs in the queue
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
