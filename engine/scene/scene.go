package scene

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/radiant-engine/radiant/common"
	"github.com/radiant-engine/radiant/engine/camera"
	"github.com/radiant-engine/radiant/engine/forward"
	"github.com/radiant-engine/radiant/engine/game_object"
	"github.com/radiant-engine/radiant/engine/light"
	"github.com/radiant-engine/radiant/engine/model"
	"github.com/radiant-engine/radiant/engine/renderer"
	"github.com/radiant-engine/radiant/engine/renderer/bind_group_provider"
	"github.com/radiant-engine/radiant/engine/shadow"
)

// modelMatrixSize is the byte size of one instance's model matrix in the
// per-batch instance buffer (a column-major 4x4 of f32).
const modelMatrixSize = 64

// Scene owns a set of game objects and lights and drives the Forward+
// pipeline for them each frame: camera upload and instance packing during
// the compute phase, cascade depth passes during the shadow phase, light
// assignment during the culling phase, and the lit color pass last.
//
// Objects sharing a model are drawn as one instanced batch. Within a batch,
// shadow casters are packed first so the depth pass can draw a prefix of the
// same instance buffer the color pass uses.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Active returns whether the scene is rendered each frame.
	//
	// Returns:
	//   - bool: true if the scene is active
	Active() bool

	// SetActive sets whether the scene is rendered each frame.
	//
	// Parameters:
	//   - active: whether the scene should render
	SetActive(active bool)

	// Camera returns the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the camera, or nil if unset
	Camera() camera.Camera

	// Renderer returns the renderer the scene draws with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Forward returns the Forward+ pipeline facade, exposed for diagnostics
	// and advanced configuration.
	//
	// Returns:
	//   - forward.ForwardPlus: the pipeline facade
	Forward() forward.ForwardPlus

	// AddObject adds a game object to the scene, assigning it an ID when it
	// has none. The object's mesh buffers are initialized on first use of its
	// model.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	//   - error: an error if mesh or instance buffer initialization fails
	AddObject(obj game_object.GameObject) (uint64, error)

	// Object returns the object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil if not found
	Object(id uint64) game_object.GameObject

	// RemoveObject removes the object with the given ID. Removing an unknown
	// ID is a no-op.
	//
	// Parameters:
	//   - id: the object ID
	RemoveObject(id uint64)

	// ObjectCount returns the number of objects in the scene.
	//
	// Returns:
	//   - int: the object count
	ObjectCount() int

	// AddLight adds a free-standing light to the scene. Lights attached to
	// game objects via SetLight are gathered automatically and must not be
	// added here as well.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// RemoveLight removes a previously added free-standing light.
	//
	// Parameters:
	//   - l: the light to remove
	RemoveLight(l light.Light)

	// AmbientIntensity returns the scene's ambient light intensity.
	//
	// Returns:
	//   - float32: the ambient intensity
	AmbientIntensity() float32

	// SetAmbientIntensity sets the scene's ambient light intensity.
	//
	// Parameters:
	//   - intensity: the ambient intensity, clamped at 0
	SetAmbientIntensity(intensity float32)

	// Resize updates the scene's viewport dimensions, resizing the renderer
	// surface and the camera aspect ratio.
	//
	// Parameters:
	//   - width: the new viewport width in pixels
	//   - height: the new viewport height in pixels
	Resize(width, height int)

	// PrepareCompute advances object state, uploads the camera, gathers the
	// frame's lights, and stages per-batch instance buffers. Called once per
	// frame inside the engine's compute phase.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	PrepareCompute(deltaTime float32)

	// PrepareShadows refits the shadow cascades and records the depth-only
	// cascade passes. Called once per frame after the compute phase.
	PrepareShadows()

	// PrepareLightCulling runs per-cluster light assignment and uploads the
	// shading inputs. Called once per frame after the shadow phase.
	PrepareLightCulling()

	// DrawCalls issues the lit color pass draw calls for every batch. Called
	// once per frame inside the engine's render pass.
	//
	// Returns:
	//   - error: the first draw call error, if any
	DrawCalls() error

	// Release frees the scene's GPU resources: the Forward+ facade and every
	// batch's instance buffer. Object mesh buffers are owned by their models'
	// providers and released with them.
	Release()
}

// drawBatch groups all objects sharing one model into a single instanced
// draw. matrices holds the staged instance data for the frame: shadow
// casters first, then the rest, so the depth pass draws instances
// [0, shadowCount) and the color pass draws [0, count).
type drawBatch struct {
	mdl      model.Model
	provider bind_group_provider.BindGroupProvider
	objects  []game_object.GameObject

	capacity    int
	matrices    []float32
	count       int
	shadowCount int
}

type scene struct {
	mu     sync.Mutex
	name   string
	active atomic.Bool

	cam camera.Camera
	r   renderer.Renderer
	fp  forward.ForwardPlus

	width  int
	height int

	ambient float32

	objects map[uint64]game_object.GameObject
	nextID  uint64

	batches    map[model.Model]*drawBatch
	batchOrder []model.Model

	lights []light.Light

	pool    worker.DynamicWorkerPool
	workers int
	taskID  int
}

// Compile-time check that scene implements Scene
var _ Scene = &scene{}

// NewScene creates a scene bound to a camera, renderer, and Forward+
// pipeline facade. The facade's pipelines must already be registered with
// the renderer; see forward.NewForwardPlus.
//
// Parameters:
//   - name: the scene name
//   - cam: the scene camera
//   - r: the renderer to draw with
//   - fp: the Forward+ pipeline facade
//   - options: a variadic list of options to configure the scene
//
// Returns:
//   - Scene: the configured scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, fp forward.ForwardPlus, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:    name,
		cam:     cam,
		r:       r,
		fp:      fp,
		width:   1920,
		height:  1080,
		ambient: 0.03,
		objects: make(map[uint64]game_object.GameObject),
		nextID:  1,
		batches: make(map[model.Model]*drawBatch),
		workers: max(1, runtime.NumCPU()-1),
	}
	s.active.Store(true)
	for _, opt := range options {
		opt(s)
	}
	if s.workers > 1 {
		s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	return s.active.Load()
}

func (s *scene) SetActive(active bool) {
	s.active.Store(active)
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Forward() forward.ForwardPlus {
	return s.fp
}

func (s *scene) AddObject(obj game_object.GameObject) (uint64, error) {
	if obj == nil {
		return 0, fmt.Errorf("scene: cannot add nil object")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}

	mdl := obj.Model()
	if mdl != nil {
		batch, ok := s.batches[mdl]
		if !ok {
			if err := s.r.InitMeshBuffers(mdl.MeshProvider(), mdl.VertexData(), mdl.IndexData(), mdl.IndexCount()); err != nil {
				return 0, fmt.Errorf("scene: failed to init mesh buffers for model %s: %w", mdl.Name(), err)
			}
			batch = &drawBatch{mdl: mdl}
			s.batches[mdl] = batch
			s.batchOrder = append(s.batchOrder, mdl)
		}
		batch.objects = append(batch.objects, obj)
		if err := s.ensureBatchCapacity(batch); err != nil {
			return 0, err
		}
	}

	s.objects[obj.ID()] = obj
	return obj.ID(), nil
}

func (s *scene) Object(id uint64) game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[id]
}

func (s *scene) RemoveObject(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[id]
	if !ok {
		return
	}
	delete(s.objects, id)

	if mdl := obj.Model(); mdl != nil {
		if batch, ok := s.batches[mdl]; ok {
			for i, o := range batch.objects {
				if o.ID() == id {
					batch.objects = append(batch.objects[:i], batch.objects[i+1:]...)
					break
				}
			}
		}
	}
}

func (s *scene) ObjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) AmbientIntensity() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ambient
}

func (s *scene) SetAmbientIntensity(intensity float32) {
	if intensity < 0 {
		intensity = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = intensity
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.mu.Lock()
	s.width = width
	s.height = height
	s.mu.Unlock()

	s.r.Resize(width, height)
	if s.cam != nil {
		s.cam.SetAspect(float32(width) / float32(height))
	}
}

// ensureBatchCapacity grows the batch's instance buffer to hold its current
// object count, recreating the storage buffer when an existing one is too
// small. Capacity doubles to amortize growth.
func (s *scene) ensureBatchCapacity(batch *drawBatch) error {
	needed := len(batch.objects)
	if batch.capacity >= needed && batch.provider != nil {
		return nil
	}

	capacity := batch.capacity
	if capacity == 0 {
		capacity = 16
	}
	for capacity < needed {
		capacity *= 2
	}

	if batch.provider != nil {
		batch.provider.Release()
	}
	provider := bind_group_provider.NewBindGroupProvider(batch.mdl.Name() + " Instances")
	err := s.r.InitBindGroup(provider, shadow.InstanceBindGroupLayout(), nil, map[int]uint64{
		0: uint64(capacity) * modelMatrixSize,
	})
	if err != nil {
		return fmt.Errorf("scene: failed to init instance buffer for model %s: %w", batch.mdl.Name(), err)
	}

	batch.provider = provider
	batch.capacity = capacity
	batch.matrices = make([]float32, capacity*16)
	return nil
}

func (s *scene) PrepareCompute(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cam == nil {
		return
	}

	s.cam.Update()
	view := s.cam.ViewMatrix()
	proj := s.cam.ProjectionMatrix()
	s.fp.SetCamera(view[:], proj[:], s.width, s.height, s.cam.Near(), s.cam.Far())

	for _, obj := range s.objects {
		if !obj.Enabled() {
			continue
		}
		obj.Advance(deltaTime)
		if l := obj.Light(); l != nil {
			x, y, z := obj.Position()
			l.SetPosition(x, y, z)
		}
	}

	s.gatherLights()
	s.packBatches()
}

// gatherLights rebuilds the frame's light buffers from free-standing and
// object-attached lights. The first enabled shadow-casting directional light
// becomes the sun; additional directional lights are ignored.
func (s *scene) gatherLights() {
	s.fp.ClearLights()

	sunSet := false
	submit := func(l light.Light) {
		if l == nil || !l.Enabled() {
			return
		}
		switch l.Type() {
		case light.LightTypePoint:
			s.fp.AddPointLight(l.Position(), l.Range(), l.Color(), l.Intensity())
		case light.LightTypeSpot:
			// Cone accessors already return cosines, so bypass the facade's
			// radian conversion and feed the buffers directly.
			s.fp.Lights().AddSpotLight(l.Position(), l.Range(), l.Direction(), l.OuterCone(), l.InnerCone(), l.Color(), l.Intensity())
		case light.LightTypeDirectional:
			if !sunSet && l.CastsShadows() {
				s.fp.SetSunLight(l.Direction(), l.Color(), l.Intensity(), s.ambient)
				sunSet = true
			}
		}
	}

	for _, l := range s.lights {
		submit(l)
	}
	for _, obj := range s.objects {
		if obj.Enabled() {
			submit(obj.Light())
		}
	}
	if !sunSet {
		s.fp.SetSunLight([3]float32{0, 0, 0}, [3]float32{0, 0, 0}, 0, s.ambient)
	}
}

// packBatches stages every batch's instance matrices for the frame. Matrix
// packing fans out across the worker pool one batch per task; batches never
// share instance state so workers stay independent.
func (s *scene) packBatches() {
	var staged []*drawBatch
	for _, mdl := range s.batchOrder {
		batch := s.batches[mdl]
		batch.count = 0
		batch.shadowCount = 0
		if len(batch.objects) == 0 {
			continue
		}
		if err := s.ensureBatchCapacity(batch); err != nil {
			continue
		}
		staged = append(staged, batch)
	}

	if s.pool != nil && len(staged) > 1 {
		var wg sync.WaitGroup
		for _, batch := range staged {
			wg.Add(1)
			b := batch
			id := s.taskID
			s.taskID++
			s.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					packBatch(b)
					return nil, nil
				},
			})
		}
		wg.Wait()
	} else {
		for _, batch := range staged {
			packBatch(batch)
		}
	}

	writes := make([]bind_group_provider.BufferWrite, 0, len(staged))
	for _, batch := range staged {
		if batch.count == 0 {
			continue
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: batch.provider,
			Binding:  0,
			Data:     common.SliceToBytes(batch.matrices[:batch.count*16]),
		})
	}
	if len(writes) > 0 {
		s.r.WriteBuffers(writes)
	}
}

// packBatch writes the batch's enabled objects' model matrices into the
// staging slice, shadow casters first.
func packBatch(batch *drawBatch) {
	slot := 0
	for _, obj := range batch.objects {
		if obj.Enabled() && obj.CastsShadows() {
			obj.ModelMatrix(batch.matrices[slot*16 : (slot+1)*16])
			slot++
		}
	}
	batch.shadowCount = slot
	for _, obj := range batch.objects {
		if obj.Enabled() && !obj.CastsShadows() {
			obj.ModelMatrix(batch.matrices[slot*16 : (slot+1)*16])
			slot++
		}
	}
	batch.count = slot
}

func (s *scene) PrepareShadows() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fp.UpdateCascades(); err != nil {
		return
	}

	_ = s.fp.RenderShadows(func(cascade int) {
		for _, mdl := range s.batchOrder {
			batch := s.batches[mdl]
			if batch.shadowCount == 0 {
				continue
			}
			_ = s.r.ShadowDrawCall(shadow.ShadowPipelineKey, mdl.MeshProvider(), uint32(batch.shadowCount), []bind_group_provider.BindGroupProvider{
				s.fp.CascadeProvider(cascade),
				batch.provider,
			})
		}
	})
}

func (s *scene) PrepareLightCulling() {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.fp.CullLights()
}

func (s *scene) DrawCalls() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, mdl := range s.batchOrder {
		batch := s.batches[mdl]
		if batch.count == 0 {
			continue
		}
		err := s.r.DrawCall(forward.ForwardLitPipelineKey, mdl.MeshProvider(), uint32(batch.count), []bind_group_provider.BindGroupProvider{
			s.fp.LitProvider(),
			batch.provider,
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, batch := range s.batches {
		if batch.provider != nil {
			batch.provider.Release()
		}
	}
	s.batches = make(map[model.Model]*drawBatch)
	s.batchOrder = nil

	if s.fp != nil {
		s.fp.Release()
	}
}
