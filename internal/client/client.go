// Package client reconstructs the game world from a server message stream,
// either a live connection or a recorded demo, and exposes the entities,
// lights, particles, and sounds a renderer needs each frame.
package client

import (
	"io"
	"log"
	"time"

	"github.com/devops-utils/richter/internal/console"
	"github.com/devops-utils/richter/internal/demo"
	"github.com/devops-utils/richter/internal/net"
	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
	"github.com/devops-utils/richter/internal/sound"
	"github.com/devops-utils/richter/internal/vfs"
)

// Config carries the collaborators a client needs. Zero-value fields get
// working defaults: a prefixed stdlib logger, a silent sound backend, and
// fresh console registries.
type Config struct {
	Logger       *log.Logger
	Vfs          *vfs.Vfs
	SoundBackend sound.Backend
	Cvars        *console.CvarRegistry
	Cmds         *console.CmdRegistry
	Console      *console.Console

	PlayerName string
	// Colors packs shirt and pants palette rows, shirt in the high nibble.
	Colors uint8
}

func (cfg *Config) fillDefaults() {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Vfs == nil {
		cfg.Vfs = vfs.New()
	}
	if cfg.Cvars == nil {
		cfg.Cvars = console.NewCvarRegistry()
	}
	if cfg.Cmds == nil {
		cfg.Cmds = console.NewCmdRegistry()
	}
	if cfg.Console == nil {
		cfg.Console = console.New(cfg.Logger)
	}
	if cfg.PlayerName == "" {
		cfg.PlayerName = "player"
	}
	RegisterCvars(cfg.Cvars)
}

// RegisterCvars installs the console variables the client reads each frame.
// Existing registrations keep their values.
func RegisterCvars(cvars *console.CvarRegistry) {
	cvars.Register("cl_nolerp", 0)
	cvars.Register("sv_gravity", 800)
	cvars.Register("v_kicktime", 0.5)
	cvars.Register("v_kickpitch", 0.6)
	cvars.Register("v_kickroll", 0.6)
}

// Client drives one connection or demo playback. It is single-threaded:
// all methods must be called from the loop that calls Frame.
type Client struct {
	logger  *log.Logger
	cvars   *console.CvarRegistry
	cmds    *console.CmdRegistry
	console *console.Console

	state  *ClientState
	signOn SignOnState

	sock     *net.Socket
	demo     *demo.Reader
	compose  *protocol.Writer
	recorder *demo.Recorder

	playerName string
	colors     uint8

	disconnected bool
}

func newClient(cfg Config) *Client {
	cfg.fillDefaults()
	c := &Client{
		logger:     cfg.Logger,
		cvars:      cfg.Cvars,
		cmds:       cfg.Cmds,
		console:    cfg.Console,
		state:      newClientState(cfg.Logger, cfg.Vfs, cfg.SoundBackend),
		compose:    protocol.NewWriter(),
		playerName: cfg.PlayerName,
		colors:     cfg.Colors,
	}
	c.cmds.Replace("bf", func(args []string) {
		c.state.colorShifts.Bonus()
	})
	c.cmds.Replace("stopsound", func(args []string) {
		c.state.mixer.StopAll()
	})
	return c
}

// Connect dials a server and returns a client in the sign-on phase. The
// sign-on conversation plays out over subsequent Frame calls.
func Connect(serverURL string, cfg Config) (*Client, error) {
	sock, err := net.Connect(serverURL)
	if err != nil {
		return nil, err
	}
	c := newClient(cfg)
	c.sock = sock
	c.signOn.set(SignOnNotConnected)
	// The one dynamic command this connection owns. The server stuffs
	// "reconnect" on a level change; the sign-on conversation then replays
	// from the top on the same connection. The stage is atomic, so the
	// reset is safe from outside the frame loop and takes effect on the
	// next receive.
	c.cmds.Replace("reconnect", func(args []string) {
		c.console.Print("reconnecting...\n")
		c.signOn.set(SignOnNotConnected)
	})
	return c, nil
}

// PlayDemo starts playback of a recorded demo.
func PlayDemo(src io.ReadCloser, cfg Config) (*Client, error) {
	reader, err := demo.NewReader(src)
	if err != nil {
		return nil, err
	}
	c := newClient(cfg)
	c.demo = reader
	// Demos begin past the handshake; the first fast update flips to Done.
	c.signOn.set(SignOnBegin)
	return c, nil
}

func (c *Client) cvarOr(name string, def float32) float32 {
	v, err := c.cvars.Value(name)
	if err != nil {
		return def
	}
	return v
}

// Frame advances the client by one tick: ingest server messages, move the
// clock and the interpolated world, age the transient effects, and flush
// pending client commands.
func (c *Client) Frame(frameTime time.Duration) error {
	if c.disconnected {
		return ErrNotConnected
	}
	s := c.state

	s.advanceTime(frameTime)

	if err := c.readMessages(); err != nil {
		c.shutdown()
		return err
	}
	if c.disconnected {
		return nil
	}

	noLerp, err := c.cvars.Value("cl_nolerp")
	if err != nil {
		return err
	}
	gravity, err := c.cvars.Value("sv_gravity")
	if err != nil {
		return err
	}

	s.updateInterpRatio(noLerp != 0)
	s.updateEntities()
	s.updateTempEntities()
	s.lights.Update(s.time)
	s.particles.Update(s.time, frameTime, gravity)
	s.colorShifts.Update(frameTime, s.items)

	c.console.Drain(c.cmds)

	if err := c.flushCompose(); err != nil {
		c.shutdown()
		return err
	}

	if c.signOn.Stage() == SignOnDone {
		s.updateListener()
		s.updateSound()
	}
	return nil
}

// SendMove ships a movement command on the unreliable path. Moves are
// dropped rather than queued when the socket is busy.
func (c *Client) SendMove(move protocol.MoveCmd) error {
	if c.sock == nil || c.disconnected {
		return ErrNotConnected
	}
	if c.signOn.Stage() != SignOnDone {
		return nil
	}
	w := protocol.NewWriter()
	move.Encode(w)
	return c.sock.SendUnreliable(w.Bytes())
}

// StartRecording attaches a recorder; every server message received from
// now on is written to it. Demo playback cannot be re-recorded.
func (c *Client) StartRecording(rec *demo.Recorder) {
	if c.demo != nil {
		c.logger.Printf("cannot record during demo playback")
		return
	}
	c.recorder = rec
}

// StopRecording closes and detaches the active recorder, if any.
func (c *Client) StopRecording() error {
	if c.recorder == nil {
		return nil
	}
	err := c.recorder.Close()
	c.recorder = nil
	return err
}

// Disconnect tells the server goodbye and tears the connection down. Safe
// to call more than once.
func (c *Client) Disconnect() error {
	if c.disconnected {
		return nil
	}
	if c.sock != nil {
		w := protocol.NewWriter()
		protocol.DisconnectCmd{}.Encode(w)
		if err := c.sock.SendUnreliable(w.Bytes()); err != nil {
			c.logger.Printf("disconnect notice not sent: %v", err)
		}
	}
	c.shutdown()
	return nil
}

func (c *Client) shutdown() {
	if c.disconnected {
		return
	}
	c.disconnected = true
	c.signOn.set(SignOnNotConnected)
	c.cmds.Remove("reconnect")
	c.state.mixer.StopAll()
	for _, ss := range c.state.statics {
		ss.Stop()
	}
	if c.recorder != nil {
		c.recorder.Close()
		c.recorder = nil
	}
	if c.sock != nil {
		c.sock.Close()
	}
	if c.demo != nil {
		c.demo.Close()
	}
}

// Accessors below hand read-only views to the renderer and HUD.

func (c *Client) SignOnStage() SignOnStage { return c.signOn.Stage() }
func (c *Client) Connected() bool          { return !c.disconnected }
func (c *Client) Time() time.Duration      { return c.state.time }
func (c *Client) LevelName() string        { return c.state.levelName }
func (c *Client) Paused() bool             { return c.state.paused }
func (c *Client) MaxPlayers() int          { return c.state.maxPlayers }
func (c *Client) GameType() protocol.GameType {
	return c.state.gameType
}

// Players returns a copy of the scoreboard.
func (c *Client) Players() []PlayerInfo {
	out := make([]PlayerInfo, len(c.state.players))
	copy(out, c.state.players)
	return out
}

func (c *Client) Stat(index int) int {
	if index < 0 || index >= protocol.MaxStats {
		return 0
	}
	return c.state.stats[index]
}

func (c *Client) Items() int { return c.state.items }

// ItemGetTime reports when item bit i was last picked up.
func (c *Client) ItemGetTime(i int) time.Duration {
	if i < 0 || i >= protocol.MaxItems {
		return 0
	}
	return c.state.itemGetTimes[i]
}

func (c *Client) FaceAnimTime() time.Duration { return c.state.faceAnimTime }

func (c *Client) Intermission() Intermission { return c.state.intermission }

// Entities returns the live dynamic entities, tombstones excluded.
func (c *Client) Entities() []Entity {
	out := make([]Entity, 0, len(c.state.entities))
	for i := 1; i < len(c.state.entities); i++ {
		if c.state.entities[i].alive() {
			out = append(out, c.state.entities[i])
		}
	}
	return out
}

func (c *Client) StaticEntities() []Entity {
	out := make([]Entity, len(c.state.staticEntities))
	copy(out, c.state.staticEntities)
	return out
}

func (c *Client) TempEntities() []Entity {
	out := make([]Entity, len(c.state.tempEntities))
	copy(out, c.state.tempEntities)
	return out
}

// VisitParticles walks the live particles without copying.
func (c *Client) VisitParticles(fn func(p *Particle)) {
	c.state.particles.Visit(fn)
}

// VisitLights walks the live dynamic lights.
func (c *Client) VisitLights(fn func(handle int, l *Light)) {
	c.state.lights.Visit(fn)
}

func (c *Client) LightstyleValue(id int) (float32, error) {
	return c.state.lightstyleValue(id)
}

// ViewOrigin is the camera position.
func (c *Client) ViewOrigin() (qmath.Vec3, error) {
	return c.state.viewOrigin()
}

// ViewAngles are the final camera angles including punch and damage kick.
func (c *Client) ViewAngles() qmath.Vec3 {
	return c.state.view.Angles(c.state.time, c.cvarOr("v_kicktime", 0.5))
}

func (c *Client) ViewEntityID() int { return c.state.view.EntityID() }

func (c *Client) Velocity() qmath.Vec3 { return c.state.velocity }

// ColorShift composites the active screen blend layers.
func (c *Client) ColorShift() (rgb [3]float32, alpha float32) {
	return c.state.colorShifts.Composite()
}
