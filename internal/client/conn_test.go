package client

import (
	"errors"
	"testing"
	"time"

	"github.com/devops-utils/richter/internal/protocol"
)

func parse(t *testing.T, c *Client, payload []byte) connectionStatus {
	t.Helper()
	status, err := c.parseServerMessage(payload, nil)
	if err != nil {
		t.Fatalf("parseServerMessage: %v", err)
	}
	return status
}

func TestSignOnBeginToDoneLatchesOnce(t *testing.T) {
	c := testClient(t)
	c.signOn.set(SignOnBegin)
	c.state.time = 3 * time.Second

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcTime)
	w.WriteFloat(3.0)
	w.WriteByte(protocol.USignal | protocol.UOrigin1)
	w.WriteByte(1) // entity id
	w.WriteCoord(0)

	parse(t, c, w.Bytes())

	if c.signOn.Stage() != SignOnDone {
		t.Fatalf("stage = %v, want done", c.signOn.Stage())
	}
	if !c.state.started {
		t.Fatalf("start time not latched")
	}
	latched := c.state.startTime
	if latched != 3*time.Second {
		t.Fatalf("startTime = %v, want 3s", latched)
	}

	// A second Begin->Done transition (same level, respawn) must not move
	// the start time.
	c.signOn.set(SignOnBegin)
	c.state.time = 9 * time.Second
	parse(t, c, w.Bytes())
	if c.signOn.Stage() != SignOnDone {
		t.Fatalf("stage after respawn = %v", c.signOn.Stage())
	}
	if c.state.startTime != latched {
		t.Fatalf("startTime moved: %v -> %v", latched, c.state.startTime)
	}
}

func TestSignOnStagesAdvance(t *testing.T) {
	c := testClient(t)

	for _, stage := range []SignOnStage{SignOnPrespawn, SignOnClientInfo, SignOnBegin} {
		w := protocol.NewWriter()
		w.WriteByte(protocol.SvcSignOnNum)
		w.WriteByte(byte(stage))
		parse(t, c, w.Bytes())
		if got := c.signOn.Stage(); got != stage {
			t.Fatalf("stage = %v, want %v", got, stage)
		}
	}
}

func TestServerInfoVersionMismatchLeavesStateUntouched(t *testing.T) {
	c := testClient(t)
	c.state.levelName = "the old level"
	c.state.players = make([]PlayerInfo, 2)
	c.state.players[0].Name = "Ranger"

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcServerInfo)
	w.WriteLong(14) // wrong protocol
	w.WriteByte(8)
	w.WriteByte(0)
	w.WriteString("bad server")
	w.WriteByte(0)
	w.WriteByte(0)

	_, err := c.parseServerMessage(w.Bytes(), nil)
	var version *protocol.VersionError
	if !errors.As(err, &version) {
		t.Fatalf("err = %v, want VersionError", err)
	}
	if c.state.levelName != "the old level" {
		t.Errorf("level name clobbered: %q", c.state.levelName)
	}
	if c.state.players[0].Name != "Ranger" {
		t.Errorf("players clobbered")
	}
}

func TestServerInfoResetsWorld(t *testing.T) {
	c := testClient(t)
	c.state.levelName = "previous"
	c.state.entities = make([]Entity, 10)

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcServerInfo)
	w.WriteLong(protocol.Version)
	w.WriteByte(4)
	w.WriteByte(1)
	w.WriteString("the Slipgate Complex")
	w.WriteByte(0) // no model precache
	w.WriteByte(0) // no sound precache

	parse(t, c, w.Bytes())

	s := c.state
	if s.levelName != "the Slipgate Complex" {
		t.Errorf("level name = %q", s.levelName)
	}
	if s.maxPlayers != 4 || s.gameType != protocol.GameDeathmatch {
		t.Errorf("maxplayers/gametype = %d/%d", s.maxPlayers, s.gameType)
	}
	if len(s.entities) != 0 {
		t.Errorf("entities not cleared: %d", len(s.entities))
	}
	if len(s.players) != 4 {
		t.Errorf("player table = %d slots, want 4", len(s.players))
	}
	// precache slot 0 is reserved in both tables
	if len(s.models) != 1 || len(s.sounds) != 1 {
		t.Errorf("precache slot 0 missing: models=%d sounds=%d", len(s.models), len(s.sounds))
	}
}

func TestReferentialErrorSkippedRestOfFrameApplies(t *testing.T) {
	c := testClient(t)

	w := protocol.NewWriter()
	// frags for a player slot that does not exist
	w.WriteByte(protocol.SvcUpdateFrags)
	w.WriteByte(5)
	w.WriteShort(10)
	// a valid command after the bad one
	w.WriteByte(protocol.SvcTime)
	w.WriteFloat(7.0)

	status := parse(t, c, w.Bytes())
	if status != statusMaintain {
		t.Fatalf("status = %v, want maintain", status)
	}
	if c.state.msgTimes[0] != 7*time.Second {
		t.Fatalf("command after referential error not applied: msgTimes[0] = %v", c.state.msgTimes[0])
	}
}

func TestDisconnectCommand(t *testing.T) {
	c := testClient(t)

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcDisconnect)

	if status := parse(t, c, w.Bytes()); status != statusDisconnect {
		t.Fatalf("status = %v, want disconnect", status)
	}
}

func TestUpdateNameJoinAndRename(t *testing.T) {
	c := testClient(t)
	c.state.players = make([]PlayerInfo, 4)

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcUpdateName)
	w.WriteByte(1)
	w.WriteString("Ranger")
	parse(t, c, w.Bytes())
	if c.state.players[1].Name != "Ranger" {
		t.Fatalf("player name = %q", c.state.players[1].Name)
	}

	w.Reset()
	w.WriteByte(protocol.SvcUpdateName)
	w.WriteByte(1)
	w.WriteString("Bitterman")
	parse(t, c, w.Bytes())
	if c.state.players[1].Name != "Bitterman" {
		t.Fatalf("renamed player = %q", c.state.players[1].Name)
	}
}

func TestSetViewRejectsWorldEntity(t *testing.T) {
	c := testClient(t)

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcSetView)
	w.WriteShort(0)

	// Referential: logged and skipped, frame keeps parsing.
	status := parse(t, c, w.Bytes())
	if status != statusMaintain {
		t.Fatalf("status = %v", status)
	}
	if c.state.view.EntityID() != -1 {
		t.Fatalf("view entity = %d, want untouched", c.state.view.EntityID())
	}
}

func TestSetViewRejectsUnknownEntity(t *testing.T) {
	c := testClient(t)
	c.state.maxPlayers = 4
	c.state.entities = make([]Entity, 2)

	setView := func(id int16) {
		w := protocol.NewWriter()
		w.WriteByte(protocol.SvcSetView)
		w.WriteShort(id)
		parse(t, c, w.Bytes())
	}

	// Beyond both the player slots and the entity table: rejected.
	setView(9999)
	if got := c.state.view.EntityID(); got != -1 {
		t.Fatalf("view entity = %d, want untouched", got)
	}

	// Player slots are valid view targets before their first update.
	setView(3)
	if got := c.state.view.EntityID(); got != 3 {
		t.Fatalf("view entity = %d, want 3", got)
	}

	// A known table entry past the player range is valid too.
	c.state.entities = make([]Entity, 20)
	setView(10)
	if got := c.state.view.EntityID(); got != 10 {
		t.Fatalf("view entity = %d, want 10", got)
	}
}

func TestDamageAppliesShiftAndFaceAnim(t *testing.T) {
	c := testClient(t)
	c.state.time = 2 * time.Second

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcDamage)
	w.WriteByte(0)  // armor
	w.WriteByte(20) // blood
	w.WriteCoord(0)
	w.WriteCoord(0)
	w.WriteCoord(0)

	parse(t, c, w.Bytes())

	layers := c.state.colorShifts.Layers()
	if layers[ShiftDamage].Percent != 30 {
		t.Errorf("damage percent = %d, want 30", layers[ShiftDamage].Percent)
	}
	if layers[ShiftDamage].Color != [3]uint8{255, 0, 0} {
		t.Errorf("pure blood hit color = %v, want red", layers[ShiftDamage].Color)
	}
	if c.state.faceAnimTime != 2*time.Second+200*time.Millisecond {
		t.Errorf("faceAnimTime = %v", c.state.faceAnimTime)
	}
}

func TestKillAndSecretCounters(t *testing.T) {
	c := testClient(t)

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcKilledMonster)
	w.WriteByte(protocol.SvcFoundSecret)
	w.WriteByte(protocol.SvcKilledMonster)

	parse(t, c, w.Bytes())
	if got := c.state.stats[protocol.StatKilledMonsters]; got != 2 {
		t.Errorf("kills = %d, want 2", got)
	}
	if got := c.state.stats[protocol.StatFoundSecrets]; got != 1 {
		t.Errorf("secrets = %d, want 1", got)
	}
}

func TestClientDataUpdatesViewAndStats(t *testing.T) {
	c := testClient(t)

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcClientData)
	w.WriteShort(int16(protocol.SuViewHeight | protocol.SuArmor))
	w.WriteByte(byte(int8(30))) // view height
	w.WriteLong(0)              // items
	w.WriteByte(100)            // armor
	w.WriteShort(99)            // health
	for i := 0; i < 6; i++ {
		w.WriteByte(byte(i))
	}

	parse(t, c, w.Bytes())

	if got := c.state.view.ViewHeight(); got != 30 {
		t.Errorf("view height = %v, want 30", got)
	}
	if c.state.stats[protocol.StatArmor] != 100 {
		t.Errorf("armor stat = %d", c.state.stats[protocol.StatArmor])
	}
	if c.state.stats[protocol.StatHealth] != 99 {
		t.Errorf("health stat = %d", c.state.stats[protocol.StatHealth])
	}

	// The next frame without the view height bit falls back to the default.
	w.Reset()
	w.WriteByte(protocol.SvcClientData)
	w.WriteShort(0)
	w.WriteLong(0)
	w.WriteShort(99)
	for i := 0; i < 6; i++ {
		w.WriteByte(0)
	}
	parse(t, c, w.Bytes())
	if got := c.state.view.ViewHeight(); got != protocol.DefaultViewHeight {
		t.Errorf("view height = %v, want default", got)
	}
}
