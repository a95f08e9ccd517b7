package vis

import (
	"context"
	"image"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/domain"
)

// Inputs is the plain-data bridge between playback state and the render
// loop. The loop reads it once per frame and never calls back into the
// session manager.
type Inputs struct {
	mu       sync.RWMutex
	playing  bool
	features *domain.AudioFeatures
}

// NewInputs creates an input holder with paused defaults
func NewInputs() *Inputs {
	return &Inputs{}
}

// Set replaces both inputs atomically
func (i *Inputs) Set(playing bool, features *domain.AudioFeatures) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.playing = playing
	i.features = features
}

// Get returns the current inputs
func (i *Inputs) Get() (bool, *domain.AudioFeatures) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.playing, i.features
}

// Publisher delivers a finished frame to the outside world
type Publisher interface {
	Publish(ctx context.Context, frame image.Image) error
}

// Renderer runs the continuous render loop. It owns the particle field
// and the drawing surface; the loop is rescheduled every frame until the
// renderer is stopped, independent of the device session's state machine.
type Renderer struct {
	logger       *zap.Logger
	inputs       *Inputs
	field        *Field
	surface      *ImageSurface
	fps          int
	publisher    Publisher
	publishEvery int
	clock        func() time.Time

	resize     chan SurfaceSize
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	publishing atomic.Bool

	mu sync.Mutex // guards surface/field swaps on resize
}

// NewRenderer creates a renderer and seeds the particle field for the
// initial surface size
func NewRenderer(logger *zap.Logger, inputs *Inputs, size SurfaceSize, fps int, publisher Publisher) *Renderer {
	r := &Renderer{
		logger:       logger,
		inputs:       inputs,
		field:        NewField(rand.New(rand.NewSource(time.Now().UnixNano()))),
		surface:      NewImageSurface(size.Width, size.Height),
		fps:          fps,
		publisher:    publisher,
		publishEvery: fps, // roughly one published frame per second
		clock:        time.Now,
		resize:       make(chan SurfaceSize, 1),
	}
	r.field.Reseed(float64(size.Width), float64(size.Height))
	return r
}

// Start launches the render loop in a goroutine
func (r *Renderer) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go r.run(loopCtx)

	r.logger.Info("Render loop started", zap.Int("fps", r.fps))
	return nil
}

// Stop cancels the loop and waits for the in-flight frame to finish.
// After Stop returns no further frames are produced.
func (r *Renderer) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
		r.wg.Wait()
	}
	r.logger.Info("Render loop stopped")
	return nil
}

// Resize requests a reseed of the particle field to new dimensions.
// Coalesces bursts: only the latest pending size is applied.
func (r *Renderer) Resize(size SurfaceSize) {
	for {
		select {
		case r.resize <- size:
			return
		default:
			select {
			case <-r.resize:
			default:
			}
		}
	}
}

func (r *Renderer) run(ctx context.Context) {
	defer r.wg.Done()

	interval := time.Second / time.Duration(r.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			return

		case size := <-r.resize:
			r.mu.Lock()
			r.surface = NewImageSurface(size.Width, size.Height)
			r.field.Reseed(float64(size.Width), float64(size.Height))
			r.mu.Unlock()
			r.logger.Info("Surface resized, particle field reseeded",
				zap.Int("width", size.Width),
				zap.Int("height", size.Height))

		case <-ticker.C:
			r.frame()
			frames++
			if r.publisher != nil && frames%r.publishEvery == 0 {
				r.publishFrame(ctx)
			}
		}
	}
}

// frame draws one animation step
func (r *Renderer) frame() {
	playing, features := r.inputs.Get()
	params := ComputeFrameParams(playing, features, r.clock())

	r.mu.Lock()
	defer r.mu.Unlock()

	// Trail effect: paint a translucent overlay instead of clearing
	r.surface.Overlay(trailOverlay)
	r.field.Advance(params)

	for i := range r.field.Particles {
		p := &r.field.Particles[i]
		c := HSLA(params.BaseHue+p.Hue*0.1, 0.8, 0.65, p.Opacity)
		r.surface.FillCircle(p.X, p.Y, p.RenderedRadius(params), c)
	}
}

// publishFrame hands a snapshot to the publisher, skipping the frame if
// the previous publish is still in flight
func (r *Renderer) publishFrame(ctx context.Context) {
	if !r.publishing.CompareAndSwap(false, true) {
		return
	}

	r.mu.Lock()
	snap := r.surface.Snapshot()
	r.mu.Unlock()

	go func() {
		defer r.publishing.Store(false)
		if err := r.publisher.Publish(ctx, snap); err != nil {
			r.logger.Warn("Frame publish failed", zap.Error(err))
		}
	}()
}
