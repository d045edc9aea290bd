package client

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/devops-utils/richter/internal/model"
	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
	"github.com/devops-utils/richter/internal/sound"
	"github.com/devops-utils/richter/internal/vfs"
)

// PlayerInfo is one scoreboard slot.
type PlayerInfo struct {
	Name   string
	Frags  int
	Colors uint8
}

func (p *PlayerInfo) connected() bool { return p.Name != "" }

// IntermissionKind distinguishes the end-of-level camera modes.
type IntermissionKind int

const (
	IntermissionNone IntermissionKind = iota
	IntermissionScoreboard
	IntermissionFinale
	IntermissionCutscene
)

// Intermission is the end-of-level overlay state.
type Intermission struct {
	Kind           IntermissionKind
	Text           string
	CompletionTime time.Duration
}

// ClientState is the reconstructed world: everything the renderer and
// mixer need, rebuilt from the server message stream. It is owned by the
// client loop and never shared across goroutines.
type ClientState struct {
	logger  *log.Logger
	vfs     *vfs.Vfs
	backend sound.Backend
	mixer   *sound.Mixer
	rng     *rand.Rand

	// time is the client clock; msgTimes hold the two newest server
	// timestamps, [0] newest.
	time       time.Duration
	msgTimes   [2]time.Duration
	lerpFactor float32

	// startTime is latched once, when sign-on completes.
	startTime time.Duration
	started   bool

	levelName  string
	maxPlayers int
	gameType   protocol.GameType

	models []model.Model
	sounds []sound.Sample

	entities       []Entity
	staticEntities []Entity
	tempEntities   []Entity

	beams     Beams
	particles *Particles
	lights    Lights
	statics   []*sound.StaticSound

	lightStyles map[int]string

	players []PlayerInfo
	stats   [protocol.MaxStats]int

	items        int
	itemGetTimes [protocol.MaxItems]time.Duration
	faceAnimTime time.Duration

	colorShifts ColorShifts
	view        View

	msgVelocity [2]qmath.Vec3
	velocity    qmath.Vec3
	onGround    bool
	inWater     bool

	paused       bool
	intermission Intermission

	fx       effectSounds
	listener sound.Listener
}

func newClientState(logger *log.Logger, fs *vfs.Vfs, backend sound.Backend) *ClientState {
	if backend == nil {
		backend = sound.NullBackend{}
	}
	return &ClientState{
		logger:      logger,
		vfs:         fs,
		backend:     backend,
		mixer:       sound.NewMixer(backend, logger),
		rng:         rand.New(rand.NewSource(rand.Int63())),
		particles:   NewParticles(),
		lightStyles: make(map[int]string),
		view:        newView(),
	}
}

// resetForServer loads the precache lists and replaces the world tables.
// Both precaches are loaded into fresh slices before anything is swapped
// in, so a failed load leaves the previous level intact.
func (s *ClientState) resetForServer(info *protocol.ServerInfo) error {
	models := make([]model.Model, 0, len(info.ModelPrecache)+1)
	models = append(models, model.None())
	for _, name := range info.ModelPrecache {
		if strings.HasPrefix(name, "*") {
			// Submodels are expanded out of their parent brush model.
			continue
		}
		loaded, err := model.Load(s.vfs, name)
		if err != nil {
			return fmt.Errorf("precache model %q: %w", name, err)
		}
		models = append(models, loaded...)
	}

	sounds := make([]sound.Sample, 0, len(info.SoundPrecache)+1)
	sounds = append(sounds, sound.Sample{})
	for _, name := range info.SoundPrecache {
		smp, err := sound.LoadSample(s.vfs, name)
		if err != nil {
			return fmt.Errorf("precache sound %q: %w", name, err)
		}
		sounds = append(sounds, smp)
	}

	s.mixer.StopAll()
	for _, ss := range s.statics {
		ss.Stop()
	}
	s.loadEffectSounds()

	s.levelName = info.Message
	s.maxPlayers = int(info.MaxClients)
	s.gameType = info.GameType
	s.models = models
	s.sounds = sounds
	s.entities = s.entities[:0]
	s.staticEntities = s.staticEntities[:0]
	s.tempEntities = s.tempEntities[:0]
	s.beams.Clear()
	s.particles.Clear()
	s.lights = Lights{}
	s.statics = nil
	s.lightStyles = make(map[int]string)
	s.players = make([]PlayerInfo, int(info.MaxClients))
	s.stats = [protocol.MaxStats]int{}
	s.items = 0
	s.itemGetTimes = [protocol.MaxItems]time.Duration{}
	s.colorShifts.reset()
	s.view = newView()
	s.intermission = Intermission{}
	s.msgTimes = [2]time.Duration{}
	s.started = false
	return nil
}

// advanceTime moves the client clock by one frame.
func (s *ClientState) advanceTime(frameTime time.Duration) {
	s.time += frameTime
}

// checkEntityID validates an id received on the wire against the arena.
func (s *ClientState) checkEntityID(id int) error {
	if id <= 0 || id >= len(s.entities) {
		return &NoSuchEntityError{ID: id}
	}
	return nil
}

func (s *ClientState) checkPlayerID(id int) error {
	if id < 0 || id >= len(s.players) {
		return &NoSuchClientError{ID: id}
	}
	return nil
}

// entityRef returns the arena slot for id.
func (s *ClientState) entityRef(id int) (*Entity, error) {
	if err := s.checkEntityID(id); err != nil {
		return nil, err
	}
	return &s.entities[id], nil
}

// spawnEntity installs a baseline at id, growing the arena with tombstones
// as needed. A live entity already at id is an error.
func (s *ClientState) spawnEntity(id int, baseline protocol.EntityBaseline) error {
	for len(s.entities) <= id {
		e := newEntity(protocol.EntityBaseline{})
		e.free()
		s.entities = append(s.entities, e)
	}
	if s.entities[id].alive() {
		return &EntityExistsError{ID: id}
	}
	s.entities[id] = newEntity(baseline)
	return nil
}

// applyUpdate folds a fast update into entity id, creating the slot on
// first sight. Model changes re-seed the animation sync base.
func (s *ClientState) applyUpdate(u *protocol.EntityUpdate) error {
	id := u.EntityID
	if id <= 0 {
		return &NoSuchEntityError{ID: id}
	}
	if id >= len(s.entities) {
		for len(s.entities) <= id {
			e := newEntity(protocol.EntityBaseline{})
			e.free()
			s.entities = append(s.entities, e)
		}
	}
	ent := &s.entities[id]
	if u.Has(protocol.UColorMap) && int(u.ColorMap) > s.maxPlayers {
		s.logger.Printf("entity %d: colormap %d exceeds player count %d", id, u.ColorMap, s.maxPlayers)
	}
	if ent.apply(s.msgTimes, u) {
		ent.SyncBase = 0
		if m := s.modelFor(ent.ModelID); m != nil && m.SyncType == model.SyncRand {
			ent.SyncBase = time.Duration(s.rng.Int63n(int64(time.Second)))
		}
	}
	return nil
}

// spawnStaticEntity adds a scenery entity. The cap is a wire-era limit;
// overruns are dropped and reported rather than killing the connection.
func (s *ClientState) spawnStaticEntity(baseline protocol.EntityBaseline) error {
	if len(s.staticEntities) >= MaxStaticEntities {
		return ErrTooManyStaticEntities
	}
	s.staticEntities = append(s.staticEntities, newEntity(baseline))
	return nil
}

func (s *ClientState) modelFor(id int) *model.Model {
	if id <= 0 || id >= len(s.models) {
		return nil
	}
	return &s.models[id]
}

// shiftMessageTimes records a new server timestamp from a time command.
func (s *ClientState) shiftMessageTimes(t time.Duration) {
	s.msgTimes[1] = s.msgTimes[0]
	s.msgTimes[0] = t
}

// updateInterpRatio recomputes the interpolation factor for this frame and
// clamps the client clock into the snapshot window. With cl_nolerp set the
// client snaps to the newest snapshot.
func (s *ClientState) updateInterpRatio(noLerp bool) {
	if noLerp {
		s.time = s.msgTimes[0]
		s.lerpFactor = 1
		return
	}

	serverDelta := s.msgTimes[0] - s.msgTimes[1]
	switch {
	case serverDelta <= 0:
		// Duplicate or reordered timestamps: snap to newest.
		s.time = s.msgTimes[0]
		s.lerpFactor = 1
		return
	case serverDelta > 100*time.Millisecond:
		// The server stalled; pretend the previous snapshot was recent so
		// the catch-up is not one long slide.
		s.msgTimes[1] = s.msgTimes[0] - 100*time.Millisecond
		serverDelta = 100 * time.Millisecond
	}

	frameDelta := s.time - s.msgTimes[1]
	switch {
	case frameDelta < 0:
		s.time = s.msgTimes[1]
		s.lerpFactor = 0
	case frameDelta > serverDelta:
		s.time = s.msgTimes[0]
		s.lerpFactor = 1
	default:
		s.lerpFactor = float32(frameDelta) / float32(serverDelta)
	}
}

// setLightstyle installs or replaces a lightmap animation pattern.
func (s *ClientState) setLightstyle(id int, pattern string) {
	s.lightStyles[id] = pattern
}

// lightstyleValue samples animation id at the current time. Patterns map
// 'a'..'z' onto brightness with 'm' as nominal full bright; an empty
// pattern holds steady.
func (s *ClientState) lightstyleValue(id int) (float32, error) {
	pattern, ok := s.lightStyles[id]
	if !ok {
		return 0, &NoSuchLightstyleError{ID: id}
	}
	if pattern == "" {
		return 1, nil
	}
	frame := int(s.time/(100*time.Millisecond)) % len(pattern)
	return float32(pattern[frame]-'a') / float32('m'-'a'), nil
}

// setItems replaces the item bits and timestamps each newly held item for
// the status bar flash.
func (s *ClientState) setItems(items int) {
	gained := items &^ s.items
	for i := 0; i < protocol.MaxItems; i++ {
		if gained&(1<<uint(i)) != 0 {
			s.itemGetTimes[i] = s.time
		}
	}
	s.items = items
}

func (s *ClientState) updateStat(index, value int) error {
	if index < 0 || index >= protocol.MaxStats {
		return fmt.Errorf("client: stat index %d out of range", index)
	}
	s.stats[index] = value
	return nil
}

// startSound resolves a wire sound command against the precache and entity
// tables and hands it to the mixer.
func (s *ClientState) startSound(cmd *protocol.Sound) error {
	id := int(cmd.SoundID)
	if id <= 0 || id >= len(s.sounds) {
		return &NoSuchSoundError{ID: id}
	}
	if cmd.EntityID < 0 || cmd.EntityID >= len(s.entities) {
		// Sounds may reference entities the client has not seen yet.
		return &NoSuchEntityError{ID: cmd.EntityID}
	}
	s.mixer.Start(s.sounds[id], s.time, cmd.EntityID, cmd.Channel,
		cmd.Position, float32(cmd.Volume)/255, cmd.Attenuation, &s.listener)
	return nil
}

// spawnStaticSound starts a looping ambient sound at a fixed point.
func (s *ClientState) spawnStaticSound(cmd *protocol.SpawnStaticSound) error {
	id := int(cmd.SoundID)
	if id <= 0 || id >= len(s.sounds) {
		return &NoSuchSoundError{ID: id}
	}
	ss, err := sound.NewStaticSound(s.backend, s.logger, s.sounds[id],
		cmd.Origin, float32(cmd.Volume)/255, float32(cmd.Attenuation)/64, &s.listener)
	if err != nil {
		return err
	}
	s.statics = append(s.statics, ss)
	return nil
}

// updateListener moves the virtual ears to the view entity.
func (s *ClientState) updateListener() {
	ent, err := s.entityRef(s.view.EntityID())
	if err != nil {
		return
	}
	s.listener.Update(ent.Origin, s.view.ViewHeight(), s.view.InputAngles()[1])
}

func (s *ClientState) updateSound() {
	s.mixer.UpdateSpatialization(func(entID int) qmath.Vec3 {
		if entID < 0 || entID >= len(s.entities) {
			return s.listener.Origin()
		}
		return s.entities[entID].Origin
	}, &s.listener)
	for _, ss := range s.statics {
		ss.Update(&s.listener)
	}
}

// viewOrigin is the camera position: view entity origin plus eye height.
func (s *ClientState) viewOrigin() (qmath.Vec3, error) {
	ent, err := s.entityRef(s.view.EntityID())
	if err != nil {
		return qmath.Vec3{}, err
	}
	origin := ent.Origin
	origin[2] += s.view.ViewHeight()
	return origin, nil
}
