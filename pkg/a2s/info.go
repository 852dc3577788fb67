package a2s

import "time"

// Extra data flag bits. Each set bit unlocks one optional field group at the
// tail of the INFO payload, decoded in this fixed order.
const (
	edfPort     byte = 0x80
	edfSteamID  byte = 0x10
	edfSourceTV byte = 0x40
	edfKeywords byte = 0x20
	edfGameID   byte = 0x01
)

// ServerType is the single-character server kind from the INFO reply.
type ServerType byte

// String expands the wire character into a human readable name.
func (t ServerType) String() string {
	switch t {
	case 'd':
		return "Dedicated"
	case 'l':
		return "Non-dedicated"
	case 'p':
		return "SourceTV relay"
	default:
		return string(rune(t))
	}
}

// Environment is the single-character host OS from the INFO reply.
type Environment byte

// String expands the wire character into a human readable name.
func (e Environment) String() string {
	switch e {
	case 'l':
		return "Linux"
	case 'w':
		return "Windows"
	case 'm', 'o':
		return "Mac"
	default:
		return string(rune(e))
	}
}

// Info is a decoded A2S_INFO reply. Optional fields past EDF are populated
// only when the matching flag bit is set; HasPort and friends report whether
// a field was present on the wire.
type Info struct {
	// Ping is the request/reply round-trip time observed by the client.
	Ping time.Duration `json:"ping"`

	Name    string `json:"name"`
	Map     string `json:"map"`
	Folder  string `json:"folder"`
	Game    string `json:"game"`
	Version string `json:"version"`

	Protocol   byte   `json:"protocol"`
	ID         uint16 `json:"id"`
	Players    byte   `json:"players"`
	MaxPlayers byte   `json:"max_players"`
	Bots       byte   `json:"bots"`

	ServerType  ServerType  `json:"server_type"`
	Environment Environment `json:"environment"`
	Visibility  byte        `json:"visibility"`
	VAC         byte        `json:"vac"`

	// EDF is the raw extra data flag byte.
	EDF byte `json:"edf"`

	Port         uint16 `json:"port,omitempty"`
	SteamID      uint64 `json:"steam_id,omitempty"`
	SourceTVPort uint16 `json:"sourcetv_port,omitempty"`
	SourceTVName string `json:"sourcetv_name,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	GameID       uint64 `json:"game_id,omitempty"`
}

// Public reports whether the server is not password protected.
func (i *Info) Public() bool { return i.Visibility == 0 }

// Secured reports whether the server runs Valve Anti-Cheat.
func (i *Info) Secured() bool { return i.VAC == 1 }

// HasPort reports whether the game port field was present on the wire.
func (i *Info) HasPort() bool { return i.EDF&edfPort != 0 }

// HasSteamID reports whether the server steam id field was present on the wire.
func (i *Info) HasSteamID() bool { return i.EDF&edfSteamID != 0 }

// HasSourceTV reports whether the SourceTV fields were present on the wire.
func (i *Info) HasSourceTV() bool { return i.EDF&edfSourceTV != 0 }

// HasKeywords reports whether the keywords field was present on the wire.
func (i *Info) HasKeywords() bool { return i.EDF&edfKeywords != 0 }

// HasGameID reports whether the 64-bit game id field was present on the wire.
func (i *Info) HasGameID() bool { return i.EDF&edfGameID != 0 }

// decodeInfo parses the INFO payload that follows the response-type byte.
func decodeInfo(payload []byte) (*Info, error) {
	r := newReader(payload)
	info := &Info{}
	var err error

	if info.Protocol, err = r.readByte("protocol"); err != nil {
		return nil, err
	}
	if info.Name, err = r.readString("name"); err != nil {
		return nil, err
	}
	if info.Map, err = r.readString("map"); err != nil {
		return nil, err
	}
	if info.Folder, err = r.readString("folder"); err != nil {
		return nil, err
	}
	if info.Game, err = r.readString("game"); err != nil {
		return nil, err
	}
	if info.ID, err = r.readUint16("id"); err != nil {
		return nil, err
	}
	if info.Players, err = r.readByte("players"); err != nil {
		return nil, err
	}
	if info.MaxPlayers, err = r.readByte("max players"); err != nil {
		return nil, err
	}
	if info.Bots, err = r.readByte("bots"); err != nil {
		return nil, err
	}

	st, err := r.readByte("server type")
	if err != nil {
		return nil, err
	}
	info.ServerType = ServerType(st)

	env, err := r.readByte("environment")
	if err != nil {
		return nil, err
	}
	info.Environment = Environment(env)

	if info.Visibility, err = r.readByte("visibility"); err != nil {
		return nil, err
	}
	if info.VAC, err = r.readByte("vac"); err != nil {
		return nil, err
	}
	if info.Version, err = r.readString("version"); err != nil {
		return nil, err
	}

	// The EDF byte itself is optional, very old servers omit it entirely.
	if r.remaining() == 0 {
		return info, nil
	}
	if info.EDF, err = r.readByte("edf"); err != nil {
		return nil, err
	}

	if info.EDF&edfPort != 0 {
		if info.Port, err = r.readUint16("game port"); err != nil {
			return nil, err
		}
	}
	if info.EDF&edfSteamID != 0 {
		if info.SteamID, err = r.readUint64("steam id"); err != nil {
			return nil, err
		}
	}
	if info.EDF&edfSourceTV != 0 {
		if info.SourceTVPort, err = r.readUint16("sourcetv port"); err != nil {
			return nil, err
		}
		if info.SourceTVName, err = r.readString("sourcetv name"); err != nil {
			return nil, err
		}
	}
	if info.EDF&edfKeywords != 0 {
		if info.Keywords, err = r.readString("keywords"); err != nil {
			return nil, err
		}
	}
	if info.EDF&edfGameID != 0 {
		if info.GameID, err = r.readUint64("game id"); err != nil {
			return nil, err
		}
	}

	return info, nil
}
