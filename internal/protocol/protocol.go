// Package protocol implements the binary server-command codec: parsing an
// opaque message frame into tagged commands and serializing client control
// messages. It knows nothing about connection state; dispatch lives in
// internal/client.
package protocol

// Version is the level protocol version carried by ServerInfo. A mismatch is
// fatal to the connection.
const Version = 15

// ConnectVersion is the version exchanged during the connect handshake,
// before any level data flows.
const ConnectVersion = 3

// GameName identifies the protocol family in connect requests.
const GameName = "QUAKE"

// Server-to-client command ids.
const (
	SvcBad        = 0
	SvcNop        = 1
	SvcDisconnect = 2
	// [byte] stat [long] value
	SvcUpdateStat = 3
	// [long] server version
	SvcVersion = 4
	// [short] entity number
	SvcSetView = 5
	// <flags + variable>
	SvcSound = 6
	// [float] server time
	SvcTime = 7
	// [string] null terminated
	SvcPrint = 8
	// [string] stuffed into the client's command buffer
	SvcStuffText = 9
	// [angle3] absolute view angle
	SvcSetAngle = 10
	// [long] protocol [byte] maxclients [byte] gametype
	// [string] message [string]..[0] models [string]..[0] sounds
	SvcServerInfo = 11
	// [byte] style [string] pattern
	SvcLightStyle = 12
	// [byte] player [string] name
	SvcUpdateName = 13
	// [byte] player [short] frags
	SvcUpdateFrags = 14
	// <shortbits + data>
	SvcClientData = 15
	// [short] (entity<<3)|channel
	SvcStopSound = 16
	// [byte] player [byte] colors
	SvcUpdateColors = 17
	// [coord3] [char3] dir [byte] count [byte] color
	SvcParticle = 18
	// [byte] armor [byte] blood [coord3] source
	SvcDamage        = 19
	SvcSpawnStatic   = 20
	SvcSpawnBaseline = 22
	SvcTempEntity    = 23
	// [byte] on/off
	SvcSetPause = 24
	// [byte] sign-on stage
	SvcSignOnNum = 25
	// [string] centered text
	SvcCenterPrint   = 26
	SvcKilledMonster = 27
	SvcFoundSecret   = 28
	// [coord3] [byte] sound [byte] volume [byte] attenuation
	SvcSpawnStaticSound = 29
	SvcIntermission     = 30
	// [string] text
	SvcFinale = 31
	// [byte] track [byte] looptrack
	SvcCDTrack    = 32
	SvcSellScreen = 33
	// [string] text
	SvcCutscene = 34
)

// Client-to-server command ids.
const (
	ClcBad        = 0
	ClcNop        = 1
	ClcDisconnect = 2
	// [float] last recv time [angle3] [short3] moves [byte] buttons [byte] impulse
	ClcMove = 3
	// [string] command text
	ClcStringCmd = 4
)

// Fast-update presence bits. The id byte itself carries USignal; UMoreBits
// extends the mask by a second byte.
const (
	UMoreBits = 1 << 0
	UOrigin1  = 1 << 1
	UOrigin2  = 1 << 2
	UOrigin3  = 1 << 3
	UAngle2   = 1 << 4
	UNoLerp   = 1 << 5
	UFrame    = 1 << 6
	USignal   = 1 << 7

	UAngle1     = 1 << 8
	UAngle3     = 1 << 9
	UModel      = 1 << 10
	UColorMap   = 1 << 11
	USkin       = 1 << 12
	UEffects    = 1 << 13
	ULongEntity = 1 << 14
)

// ClientData presence bits.
const (
	SuViewHeight  = 1 << 0
	SuIdealPitch  = 1 << 1
	SuPunch1      = 1 << 2
	SuVelocity1   = 1 << 5
	SuItems       = 1 << 9 // always sent regardless
	SuOnGround    = 1 << 10
	SuInWater     = 1 << 11
	SuWeaponFrame = 1 << 12
	SuArmor       = 1 << 13
	SuWeapon      = 1 << 14
)

// Sound command field flags.
const (
	SndVolume      = 1 << 0
	SndAttenuation = 1 << 1
)

// Entity effect flags.
const (
	EffectBrightField = 1 << 0
	EffectMuzzleFlash = 1 << 1
	EffectBrightLight = 1 << 2
	EffectDimLight    = 1 << 3
)

// Temp-entity kinds.
const (
	TeSpike        = 0
	TeSuperSpike   = 1
	TeGunshot      = 2
	TeExplosion    = 3
	TeTarExplosion = 4
	TeLightning1   = 5
	TeLightning2   = 6
	TeWizSpike     = 7
	TeKnightSpike  = 8
	TeLightning3   = 9
	TeLavaSplash   = 10
	TeTeleport     = 11
	TeExplosion2   = 12
	TeBeam         = 13
)

// Stat indices into the client stat table.
const (
	StatHealth         = 0
	StatWeapon         = 2
	StatAmmo           = 3
	StatArmor          = 4
	StatWeaponFrame    = 5
	StatShells         = 6
	StatNails          = 7
	StatRockets        = 8
	StatCells          = 9
	StatActiveWeapon   = 10
	StatTotalSecrets   = 11
	StatTotalMonsters  = 12
	StatFoundSecrets   = 13
	StatKilledMonsters = 14
)

// Item flags (subset relevant to overlays and pickup flashes).
const (
	ItemInvisibility    = 1 << 19
	ItemInvulnerability = 1 << 20
	ItemSuit            = 1 << 21
	ItemQuad            = 1 << 22
)

// Move button flags.
const (
	ButtonAttack = 1 << 0
	ButtonJump   = 1 << 1
)

// Table bounds and wire defaults.
const (
	MaxClients = 16
	MaxItems   = 32
	MaxStats   = 32

	DefaultViewHeight  = 22.0
	DefaultSoundVolume = 255
	DefaultAttenuation = 1.0
)

// GameType distinguishes coop from deathmatch in ServerInfo.
type GameType byte

const (
	GameCoop       GameType = 0
	GameDeathmatch GameType = 1
)
