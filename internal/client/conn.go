package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/devops-utils/richter/internal/net"
	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
)

// recvTimeout bounds how long a frame waits for server data during
// sign-on; once sign-on is done the receive path never blocks. An empty
// window is not an error: the server may be waiting for our stage reply,
// which goes out at the end of the frame.
const recvTimeout = 5 * time.Second

type connectionStatus int

const (
	statusMaintain connectionStatus = iota
	statusDisconnect
)

// nextMessage pulls the next server message if one is due. A nil payload
// with nil error means nothing to process this frame.
func (c *Client) nextMessage() (payload []byte, demoAngles *qmath.Vec3, err error) {
	if c.demo != nil {
		// Demo pacing: hold the next message until the client clock
		// catches up with the newest snapshot it produced.
		if c.state.started && c.state.time < c.state.msgTimes[0] {
			return nil, nil, nil
		}
		frame, err := c.demo.Next()
		if err != nil {
			return nil, nil, err
		}
		if frame == nil {
			if c.demo.Done() {
				c.logger.Printf("end of demo")
				c.shutdown()
			}
			return nil, nil, nil
		}
		angles := frame.ViewAngles
		return frame.Payload, &angles, nil
	}

	mode := net.NonBlocking
	if c.signOn.Stage() != SignOnDone {
		mode = net.Timeout(recvTimeout)
	}
	data, err := c.sock.Recv(mode)
	if errors.Is(err, net.ErrRecvTimeout) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}

// readMessages drains everything the server sent since the last frame.
func (c *Client) readMessages() error {
	for {
		payload, demoAngles, err := c.nextMessage()
		if err != nil {
			return err
		}
		if payload == nil {
			return nil
		}

		if c.recorder != nil && c.demo == nil {
			if err := c.recorder.WriteMessage(c.state.view.InputAngles(), payload); err != nil {
				c.logger.Printf("demo recording failed, stopping: %v", err)
				c.recorder.Close()
				c.recorder = nil
			}
		}

		status, err := c.parseServerMessage(payload, demoAngles)
		if err != nil {
			return err
		}
		if status == statusDisconnect {
			return c.Disconnect()
		}

		if c.demo != nil {
			// One demo message per pull; pacing decides when the next is due.
			return nil
		}
		if c.signOn.Stage() != SignOnDone {
			// One blocking pull per frame during sign-on, so the stage
			// reply this message asked for is flushed before the next wait.
			return nil
		}
	}
}

// parseServerMessage decodes one wire message and applies each command.
// Referential errors are logged and skipped; anything else ends the
// connection.
func (c *Client) parseServerMessage(payload []byte, demoAngles *qmath.Vec3) (connectionStatus, error) {
	r := protocol.NewReader(payload)
	for {
		cmd, err := protocol.ReadServerCmd(r)
		if err != nil {
			return statusDisconnect, err
		}
		if cmd == nil {
			return statusMaintain, nil
		}

		status, err := c.applyServerCmd(cmd, demoAngles)
		if err != nil {
			if recoverable(err) {
				c.logger.Printf("ignoring server command: %v", err)
				continue
			}
			return statusDisconnect, err
		}
		if status == statusDisconnect {
			return statusDisconnect, nil
		}
	}
}

func (c *Client) applyServerCmd(cmd protocol.ServerCmd, demoAngles *qmath.Vec3) (connectionStatus, error) {
	s := c.state

	switch cmd := cmd.(type) {
	case protocol.Nop:

	case protocol.Disconnect:
		return statusDisconnect, nil

	case protocol.EntityUpdate:
		// The first fast update is how the server says the spawn sequence
		// is over.
		if c.signOn.Stage() == SignOnBegin {
			c.signOn.set(SignOnDone)
			if !s.started {
				s.startTime = s.time
				s.started = true
			}
		}
		if err := s.applyUpdate(&cmd); err != nil {
			return statusMaintain, err
		}
		if demoAngles != nil && cmd.EntityID == s.view.EntityID() {
			// Recorded demos store the view angles per message; pitch and
			// roll are stored inverted.
			if ent, err := s.entityRef(cmd.EntityID); err == nil {
				ent.MsgAngles[0] = qmath.V3(-demoAngles[0], demoAngles[1], -demoAngles[2])
			}
		}

	case protocol.UpdateStat:
		if err := s.updateStat(int(cmd.Stat), int(cmd.Value)); err != nil {
			return statusMaintain, err
		}

	case protocol.VersionCmd:
		if cmd.Version != protocol.Version {
			return statusDisconnect, &protocol.VersionError{Got: cmd.Version}
		}

	case protocol.SetView:
		// Player entities may arrive before their first update, so ids in
		// the player-slot range are trusted; anything else must already
		// exist in the entity table.
		id := int(cmd.EntityID)
		if id <= 0 || (id > s.maxPlayers && id >= len(s.entities)) {
			return statusMaintain, &InvalidViewEntityError{ID: id}
		}
		s.view.setEntityID(id)

	case protocol.Sound:
		if err := s.startSound(&cmd); err != nil {
			return statusMaintain, err
		}

	case protocol.TimeCmd:
		s.shiftMessageTimes(time.Duration(float64(cmd.Time) * float64(time.Second)))

	case protocol.Print:
		c.console.Print(cmd.Text)

	case protocol.StuffText:
		c.console.StuffText(cmd.Text)

	case protocol.SetAngle:
		s.view.SetInputAngles(cmd.Angles)

	case protocol.ServerInfo:
		if cmd.ProtocolVersion != protocol.Version {
			return statusDisconnect, &protocol.VersionError{Got: cmd.ProtocolVersion}
		}
		if err := s.resetForServer(&cmd); err != nil {
			return statusDisconnect, err
		}
		c.console.Print(cmd.Message)

	case protocol.LightStyle:
		s.setLightstyle(int(cmd.ID), cmd.Pattern)

	case protocol.UpdateName:
		id := int(cmd.PlayerID)
		if err := s.checkPlayerID(id); err != nil {
			return statusMaintain, err
		}
		prev := s.players[id].Name
		s.players[id].Name = cmd.Name
		switch {
		case prev == "" && cmd.Name != "":
			c.console.Print(fmt.Sprintf("%s entered the game\n", cmd.Name))
		case prev != "" && cmd.Name != "" && prev != cmd.Name:
			c.console.Print(fmt.Sprintf("%s changed name to %s\n", prev, cmd.Name))
		}

	case protocol.UpdateFrags:
		id := int(cmd.PlayerID)
		if err := s.checkPlayerID(id); err != nil {
			return statusMaintain, err
		}
		s.players[id].Frags = int(cmd.Frags)

	case protocol.UpdateColors:
		id := int(cmd.PlayerID)
		if err := s.checkPlayerID(id); err != nil {
			return statusMaintain, err
		}
		s.players[id].Colors = cmd.Colors

	case protocol.ClientData:
		c.applyClientData(&cmd)

	case protocol.StopSound:
		s.mixer.Stop(cmd.EntityID, cmd.Channel)

	case protocol.Particle:
		if cmd.Count == 255 {
			s.particles.CreateExplosion(s.time, cmd.Origin)
		} else {
			s.particles.CreateProjectileImpact(s.time, cmd.Origin, cmd.Direction,
				int(cmd.Color), int(cmd.Count))
		}

	case protocol.Damage:
		c.applyDamage(&cmd)

	case protocol.SpawnStatic:
		if err := s.spawnStaticEntity(cmd.Baseline); err != nil {
			return statusMaintain, err
		}

	case protocol.SpawnBaseline:
		if err := s.spawnEntity(int(cmd.EntityID), cmd.Baseline); err != nil {
			return statusMaintain, err
		}

	case protocol.TempEntity:
		if err := s.handleTempEntity(&cmd); err != nil {
			return statusMaintain, err
		}

	case protocol.SetPause:
		s.paused = cmd.Paused

	case protocol.SignOnNum:
		if err := c.handleSignOn(SignOnStage(cmd.Stage)); err != nil {
			return statusDisconnect, err
		}

	case protocol.CenterPrint:
		c.console.CenterPrint(cmd.Text)

	case protocol.KilledMonster:
		s.stats[protocol.StatKilledMonsters]++

	case protocol.FoundSecret:
		s.stats[protocol.StatFoundSecrets]++

	case protocol.SpawnStaticSound:
		if err := s.spawnStaticSound(&cmd); err != nil {
			return statusMaintain, err
		}

	case protocol.Intermission:
		s.intermission = Intermission{Kind: IntermissionScoreboard, CompletionTime: s.time}

	case protocol.Finale:
		s.intermission = Intermission{Kind: IntermissionFinale, Text: cmd.Text, CompletionTime: s.time}
		c.console.CenterPrint(cmd.Text)

	case protocol.Cutscene:
		s.intermission = Intermission{Kind: IntermissionCutscene, Text: cmd.Text, CompletionTime: s.time}
		c.console.CenterPrint(cmd.Text)

	case protocol.CDTrack:
		c.logger.Printf("cd track %d (loop %d)", cmd.Track, cmd.LoopTrack)

	case protocol.SellScreen:
		c.logger.Printf("sell screen requested")

	default:
		return statusDisconnect, fmt.Errorf("client: unhandled server command %T", cmd)
	}
	return statusMaintain, nil
}

// applyClientData folds the per-frame player state into the store. Optional
// fields fall back to their documented defaults.
func (c *Client) applyClientData(cd *protocol.ClientData) {
	s := c.state

	if cd.Has(protocol.SuViewHeight) {
		s.view.setViewHeight(cd.ViewHeight)
	} else {
		s.view.setViewHeight(protocol.DefaultViewHeight)
	}
	if cd.Has(protocol.SuIdealPitch) {
		s.view.setIdealPitch(cd.IdealPitch)
	} else {
		s.view.setIdealPitch(0)
	}
	s.view.setPunchAngles(cd.PunchAngles)

	s.msgVelocity[1] = s.msgVelocity[0]
	s.msgVelocity[0] = cd.Velocity

	s.setItems(int(cd.Items))
	s.onGround = cd.OnGround
	s.inWater = cd.InWater

	s.stats[protocol.StatWeaponFrame] = int(cd.WeaponFrame)
	s.stats[protocol.StatArmor] = int(cd.Armor)
	s.stats[protocol.StatWeapon] = int(cd.Weapon)
	s.stats[protocol.StatHealth] = int(cd.Health)
	s.stats[protocol.StatAmmo] = int(cd.Ammo)
	s.stats[protocol.StatShells] = int(cd.Shells)
	s.stats[protocol.StatNails] = int(cd.Nails)
	s.stats[protocol.StatRockets] = int(cd.Rockets)
	s.stats[protocol.StatCells] = int(cd.Cells)
	s.stats[protocol.StatActiveWeapon] = int(cd.ActiveWpn)
}

func (c *Client) applyDamage(d *protocol.Damage) {
	s := c.state
	s.colorShifts.Damage(int(d.Armor), int(d.Blood))
	if d.Blood > 0 || d.Armor > 0 {
		s.faceAnimTime = s.time + 200*time.Millisecond
	}

	kickTime := c.cvarOr("v_kicktime", 0.5)
	kickPitch := c.cvarOr("v_kickpitch", 0.6)
	kickRoll := c.cvarOr("v_kickroll", 0.6)
	viewOrigin, err := s.viewOrigin()
	if err != nil {
		return
	}
	s.view.handleDamage(s.time, d.Source, viewOrigin, s.view.InputAngles(),
		kickTime, kickPitch, kickRoll)
}

// handleSignOn advances the handshake and queues the client response each
// stage calls for.
func (c *Client) handleSignOn(stage SignOnStage) error {
	switch stage {
	case SignOnPrespawn:
		c.addComposeCmd(protocol.StringCmd{Cmd: "prespawn"})
	case SignOnClientInfo:
		c.addComposeCmd(protocol.StringCmd{Cmd: fmt.Sprintf("name %q\n", c.playerName)})
		c.addComposeCmd(protocol.StringCmd{Cmd: fmt.Sprintf("color %d %d", c.colors>>4, c.colors&0x0f)})
		c.addComposeCmd(protocol.StringCmd{Cmd: "spawn "})
	case SignOnBegin:
		c.addComposeCmd(protocol.StringCmd{Cmd: "begin"})
	case SignOnDone:
		// Done is never sent on the wire; it is inferred from the first
		// fast update.
		return fmt.Errorf("client: unexpected signon stage %v from server", stage)
	default:
		return fmt.Errorf("client: unknown signon stage %d", stage)
	}
	c.signOn.set(stage)
	return nil
}

// addComposeCmd appends a client command to the pending reliable buffer.
// Demo playback has no server to talk to, so sends are dropped.
func (c *Client) addComposeCmd(cmd protocol.ClientCmd) {
	if c.sock == nil {
		return
	}
	cmd.Encode(c.compose)
}

// flushCompose sends the pending reliable buffer when the socket can take
// it.
func (c *Client) flushCompose() error {
	if c.sock == nil || c.compose.Len() == 0 {
		return nil
	}
	if !c.sock.CanSend() {
		return nil
	}
	if err := c.sock.SendReliable(c.compose.Bytes()); err != nil {
		return err
	}
	c.compose.Reset()
	return nil
}
