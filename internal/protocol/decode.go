package protocol

// ReadServerCmd decodes the next command from the frame. It returns
// (nil, nil) at end-of-frame. A set high bit on the id byte marks a fast
// update; everything else is a fixed-id command.
func ReadServerCmd(r *Reader) (ServerCmd, error) {
	if r.Remaining() == 0 {
		return nil, nil
	}
	id, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	if id&USignal != 0 {
		return readEntityUpdate(r, id)
	}

	switch id {
	case SvcBad:
		return nil, ErrBadCommand

	case SvcNop:
		return Nop{}, nil

	case SvcDisconnect:
		return Disconnect{}, nil

	case SvcUpdateStat:
		var c UpdateStat
		if c.Stat, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Value, err = r.ReadLong(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcVersion:
		var c VersionCmd
		if c.Version, err = r.ReadLong(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcSetView:
		var c SetView
		if c.EntityID, err = r.ReadShort(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcSound:
		return readSound(r)

	case SvcTime:
		var c TimeCmd
		if c.Time, err = r.ReadFloat(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcPrint:
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Print{Text: text}, nil

	case SvcStuffText:
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return StuffText{Text: text}, nil

	case SvcSetAngle:
		angles, err := r.ReadAngleVec()
		if err != nil {
			return nil, err
		}
		return SetAngle{Angles: angles}, nil

	case SvcServerInfo:
		return readServerInfo(r)

	case SvcLightStyle:
		var c LightStyle
		if c.ID, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Pattern, err = r.ReadString(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcUpdateName:
		var c UpdateName
		if c.PlayerID, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Name, err = r.ReadString(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcUpdateFrags:
		var c UpdateFrags
		if c.PlayerID, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Frags, err = r.ReadShort(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcClientData:
		return readClientData(r)

	case SvcStopSound:
		packed, err := r.ReadShort()
		if err != nil {
			return nil, err
		}
		return StopSound{EntityID: int(packed >> 3), Channel: int8(packed & 7)}, nil

	case SvcUpdateColors:
		var c UpdateColors
		if c.PlayerID, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Colors, err = r.ReadByte(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcParticle:
		return readParticle(r)

	case SvcDamage:
		var c Damage
		if c.Armor, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Blood, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Source, err = r.ReadCoordVec(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcSpawnStatic:
		b, err := readBaseline(r)
		if err != nil {
			return nil, err
		}
		return SpawnStatic{Baseline: b}, nil

	case SvcSpawnBaseline:
		entID, err := r.ReadShort()
		if err != nil {
			return nil, err
		}
		b, err := readBaseline(r)
		if err != nil {
			return nil, err
		}
		return SpawnBaseline{EntityID: entID, Baseline: b}, nil

	case SvcTempEntity:
		return readTempEntity(r)

	case SvcSetPause:
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return SetPause{Paused: b != 0}, nil

	case SvcSignOnNum:
		stage, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return SignOnNum{Stage: stage}, nil

	case SvcCenterPrint:
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return CenterPrint{Text: text}, nil

	case SvcKilledMonster:
		return KilledMonster{}, nil

	case SvcFoundSecret:
		return FoundSecret{}, nil

	case SvcSpawnStaticSound:
		var c SpawnStaticSound
		if c.Origin, err = r.ReadCoordVec(); err != nil {
			return nil, err
		}
		if c.SoundID, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Volume, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.Attenuation, err = r.ReadByte(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcIntermission:
		return Intermission{}, nil

	case SvcFinale:
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Finale{Text: text}, nil

	case SvcCDTrack:
		var c CDTrack
		if c.Track, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if c.LoopTrack, err = r.ReadByte(); err != nil {
			return nil, err
		}
		return c, nil

	case SvcSellScreen:
		return SellScreen{}, nil

	case SvcCutscene:
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Cutscene{Text: text}, nil

	default:
		return nil, &UnknownCommandError{ID: id}
	}
}

func readEntityUpdate(r *Reader, id byte) (ServerCmd, error) {
	bits := uint16(id &^ USignal)
	if bits&UMoreBits != 0 {
		more, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		bits |= uint16(more) << 8
	}

	u := EntityUpdate{Bits: bits}

	if bits&ULongEntity != 0 {
		e, err := r.ReadShort()
		if err != nil {
			return nil, err
		}
		u.EntityID = int(e)
	} else {
		e, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		u.EntityID = int(e)
	}

	var err error
	if bits&UModel != 0 {
		if u.ModelID, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	if bits&UFrame != 0 {
		if u.FrameID, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	if bits&UColorMap != 0 {
		if u.ColorMap, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	if bits&USkin != 0 {
		if u.SkinID, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	if bits&UEffects != 0 {
		if u.Effects, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}

	// origin and angle axes are interleaved on the wire
	originBits := [3]uint16{UOrigin1, UOrigin2, UOrigin3}
	angleBits := [3]uint16{UAngle1, UAngle2, UAngle3}
	for i := 0; i < 3; i++ {
		if bits&originBits[i] != 0 {
			if u.Origin[i], err = r.ReadCoord(); err != nil {
				return nil, err
			}
		}
		if bits&angleBits[i] != 0 {
			if u.Angles[i], err = r.ReadAngle(); err != nil {
				return nil, err
			}
		}
	}

	return u, nil
}

func readSound(r *Reader) (ServerCmd, error) {
	bits, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	c := Sound{Bits: bits, Volume: DefaultSoundVolume, Attenuation: DefaultAttenuation}

	if bits&SndVolume != 0 {
		if c.Volume, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	if bits&SndAttenuation != 0 {
		a, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		c.Attenuation = float32(a) / 64
	}

	packed, err := r.ReadShort()
	if err != nil {
		return nil, err
	}
	c.EntityID = int(packed >> 3)
	c.Channel = int8(packed & 7)

	if c.SoundID, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if c.Position, err = r.ReadCoordVec(); err != nil {
		return nil, err
	}
	return c, nil
}

func readServerInfo(r *Reader) (ServerCmd, error) {
	var c ServerInfo
	var err error
	if c.ProtocolVersion, err = r.ReadLong(); err != nil {
		return nil, err
	}
	if c.MaxClients, err = r.ReadByte(); err != nil {
		return nil, err
	}
	gt, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	c.GameType = GameType(gt)
	if c.Message, err = r.ReadString(); err != nil {
		return nil, err
	}
	if c.ModelPrecache, err = r.ReadStringList(); err != nil {
		return nil, err
	}
	if c.SoundPrecache, err = r.ReadStringList(); err != nil {
		return nil, err
	}
	return c, nil
}

func readClientData(r *Reader) (ServerCmd, error) {
	bits16, err := r.ReadShort()
	if err != nil {
		return nil, err
	}
	bits := uint16(bits16)
	c := ClientData{Bits: bits, ViewHeight: DefaultViewHeight}

	if bits&SuViewHeight != 0 {
		h, err := r.ReadChar()
		if err != nil {
			return nil, err
		}
		c.ViewHeight = float32(h)
	}
	if bits&SuIdealPitch != 0 {
		p, err := r.ReadChar()
		if err != nil {
			return nil, err
		}
		c.IdealPitch = float32(p)
	}

	// punch angle and velocity axes interleave
	for i := 0; i < 3; i++ {
		if bits&(SuPunch1<<i) != 0 {
			p, err := r.ReadChar()
			if err != nil {
				return nil, err
			}
			c.PunchAngles[i] = float32(p)
		}
		if bits&(SuVelocity1<<i) != 0 {
			v, err := r.ReadChar()
			if err != nil {
				return nil, err
			}
			c.Velocity[i] = float32(v) * 16
		}
	}

	items, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	c.Items = uint32(items)
	c.OnGround = bits&SuOnGround != 0
	c.InWater = bits&SuInWater != 0

	if bits&SuWeaponFrame != 0 {
		if c.WeaponFrame, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	if bits&SuArmor != 0 {
		if c.Armor, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	if bits&SuWeapon != 0 {
		if c.Weapon, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}

	if c.Health, err = r.ReadShort(); err != nil {
		return nil, err
	}
	if c.Ammo, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if c.Shells, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if c.Nails, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if c.Rockets, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if c.Cells, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if c.ActiveWpn, err = r.ReadByte(); err != nil {
		return nil, err
	}
	return c, nil
}

func readParticle(r *Reader) (ServerCmd, error) {
	var c Particle
	var err error
	if c.Origin, err = r.ReadCoordVec(); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		d, err := r.ReadChar()
		if err != nil {
			return nil, err
		}
		c.Direction[i] = float32(d) * 0.0625
	}
	if c.Count, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if c.Color, err = r.ReadByte(); err != nil {
		return nil, err
	}
	return c, nil
}

func readBaseline(r *Reader) (EntityBaseline, error) {
	var b EntityBaseline
	var err error
	if b.ModelID, err = r.ReadByte(); err != nil {
		return b, err
	}
	if b.FrameID, err = r.ReadByte(); err != nil {
		return b, err
	}
	if b.ColorMap, err = r.ReadByte(); err != nil {
		return b, err
	}
	if b.SkinID, err = r.ReadByte(); err != nil {
		return b, err
	}
	// origin and angle axes interleave
	for i := 0; i < 3; i++ {
		if b.Origin[i], err = r.ReadCoord(); err != nil {
			return b, err
		}
		if b.Angles[i], err = r.ReadAngle(); err != nil {
			return b, err
		}
	}
	return b, nil
}
