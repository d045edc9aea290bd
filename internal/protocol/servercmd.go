package protocol

import (
	"github.com/devops-utils/richter/internal/qmath"
)

// ServerCmd is one decoded server command. The concrete type identifies the
// command; payloads are plain value structs.
type ServerCmd interface {
	serverCmd()
}

type Nop struct{}

type Disconnect struct{}

type UpdateStat struct {
	Stat  byte
	Value int32
}

type VersionCmd struct {
	Version int32
}

type SetView struct {
	EntityID int16
}

type Sound struct {
	Bits        byte
	Volume      byte    // valid when Bits&SndVolume
	Attenuation float32 // valid when Bits&SndAttenuation
	EntityID    int
	Channel     int8
	SoundID     byte
	Position    qmath.Vec3
}

type TimeCmd struct {
	Time float32
}

type Print struct {
	Text string
}

type StuffText struct {
	Text string
}

type SetAngle struct {
	Angles qmath.Vec3
}

type ServerInfo struct {
	ProtocolVersion int32
	MaxClients      byte
	GameType        GameType
	Message         string
	ModelPrecache   []string
	SoundPrecache   []string
}

type LightStyle struct {
	ID      byte
	Pattern string
}

type UpdateName struct {
	PlayerID byte
	Name     string
}

type UpdateFrags struct {
	PlayerID byte
	Frags    int16
}

// ClientData carries the per-frame player state. Absent optional fields keep
// their zero value; consult Bits (Su* flags) or use the documented defaults
// (view height DefaultViewHeight, punch angles zero).
type ClientData struct {
	Bits        uint16
	ViewHeight  float32
	IdealPitch  float32
	PunchAngles qmath.Vec3
	Velocity    qmath.Vec3
	Items       uint32
	OnGround    bool
	InWater     bool
	WeaponFrame byte
	Armor       byte
	Weapon      byte
	Health      int16
	Ammo        byte
	Shells      byte
	Nails       byte
	Rockets     byte
	Cells       byte
	ActiveWpn   byte
}

func (c *ClientData) Has(bit uint16) bool { return c.Bits&bit != 0 }

type StopSound struct {
	EntityID int
	Channel  int8
}

type UpdateColors struct {
	PlayerID byte
	Colors   byte
}

type Particle struct {
	Origin    qmath.Vec3
	Direction qmath.Vec3
	Count     byte
	Color     byte
}

type Damage struct {
	Armor  byte
	Blood  byte
	Source qmath.Vec3
}

type EntityBaseline struct {
	ModelID  byte
	FrameID  byte
	ColorMap byte
	SkinID   byte
	Origin   qmath.Vec3
	Angles   qmath.Vec3
}

type SpawnStatic struct {
	Baseline EntityBaseline
}

type SpawnBaseline struct {
	EntityID int16
	Baseline EntityBaseline
}

type SetPause struct {
	Paused bool
}

type SignOnNum struct {
	Stage byte
}

type CenterPrint struct {
	Text string
}

type KilledMonster struct{}

type FoundSecret struct{}

type SpawnStaticSound struct {
	Origin      qmath.Vec3
	SoundID     byte
	Volume      byte
	Attenuation byte // wire value, scale by 1/64
}

type Intermission struct{}

type Finale struct {
	Text string
}

type CDTrack struct {
	Track     byte
	LoopTrack byte
}

type SellScreen struct{}

type Cutscene struct {
	Text string
}

// EntityUpdate is a fast update: a presence-bitmask delta against the
// entity's baseline. Fields are valid per the U* flags in Bits.
type EntityUpdate struct {
	Bits     uint16
	EntityID int
	ModelID  byte
	FrameID  byte
	ColorMap byte
	SkinID   byte
	Effects  byte
	Origin   qmath.Vec3
	Angles   qmath.Vec3
}

func (u *EntityUpdate) Has(bit uint16) bool { return u.Bits&bit != 0 }

// NoLerp reports whether interpolation must be suppressed for this update.
func (u *EntityUpdate) NoLerp() bool { return u.Has(UNoLerp) }

func (Nop) serverCmd()              {}
func (Disconnect) serverCmd()       {}
func (UpdateStat) serverCmd()       {}
func (VersionCmd) serverCmd()       {}
func (SetView) serverCmd()          {}
func (Sound) serverCmd()            {}
func (TimeCmd) serverCmd()          {}
func (Print) serverCmd()            {}
func (StuffText) serverCmd()        {}
func (SetAngle) serverCmd()         {}
func (ServerInfo) serverCmd()       {}
func (LightStyle) serverCmd()       {}
func (UpdateName) serverCmd()       {}
func (UpdateFrags) serverCmd()      {}
func (ClientData) serverCmd()       {}
func (StopSound) serverCmd()        {}
func (UpdateColors) serverCmd()     {}
func (Particle) serverCmd()         {}
func (Damage) serverCmd()           {}
func (SpawnStatic) serverCmd()      {}
func (SpawnBaseline) serverCmd()    {}
func (TempEntity) serverCmd()       {}
func (SetPause) serverCmd()         {}
func (SignOnNum) serverCmd()        {}
func (CenterPrint) serverCmd()      {}
func (KilledMonster) serverCmd()    {}
func (FoundSecret) serverCmd()      {}
func (SpawnStaticSound) serverCmd() {}
func (Intermission) serverCmd()     {}
func (Finale) serverCmd()           {}
func (CDTrack) serverCmd()          {}
func (SellScreen) serverCmd()       {}
func (Cutscene) serverCmd()         {}
func (EntityUpdate) serverCmd()     {}
