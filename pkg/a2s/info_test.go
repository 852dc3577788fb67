package a2s

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// infoPayloadBuilder assembles synthetic INFO payloads (everything past the
// response-type byte) for decoder tests.
type infoPayloadBuilder struct {
	buf bytes.Buffer
}

func (b *infoPayloadBuilder) byte(v byte) *infoPayloadBuilder {
	b.buf.WriteByte(v)
	return b
}

func (b *infoPayloadBuilder) u16(v uint16) *infoPayloadBuilder {
	_ = binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *infoPayloadBuilder) u64(v uint64) *infoPayloadBuilder {
	_ = binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *infoPayloadBuilder) str(s string) *infoPayloadBuilder {
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
	return b
}

func (b *infoPayloadBuilder) bytes() []byte {
	return b.buf.Bytes()
}

// mandatoryFields writes the fixed part of an INFO payload up to and
// including the version string.
func mandatoryFields() *infoPayloadBuilder {
	b := &infoPayloadBuilder{}
	return b.byte(17). // protocol
				str("Test Server").
				str("de_dust2").
				str("csgo").
				str("Counter-Strike").
				u16(730).   // app id
				byte(12).   // players
				byte(24).   // max players
				byte(2).    // bots
				byte('d').  // server type
				byte('l').  // environment
				byte(0).    // visibility
				byte(1).    // vac
				str("1.38") // game version
}

func checkMandatory(t *testing.T, info *Info) {
	t.Helper()

	if info.Protocol != 17 {
		t.Errorf("protocol = %d, want 17", info.Protocol)
	}
	if info.Name != "Test Server" {
		t.Errorf("name = %q, want %q", info.Name, "Test Server")
	}
	if info.Map != "de_dust2" {
		t.Errorf("map = %q, want %q", info.Map, "de_dust2")
	}
	if info.Folder != "csgo" || info.Game != "Counter-Strike" {
		t.Errorf("folder/game = %q/%q", info.Folder, info.Game)
	}
	if info.ID != 730 {
		t.Errorf("id = %d, want 730", info.ID)
	}
	if info.Players != 12 || info.MaxPlayers != 24 || info.Bots != 2 {
		t.Errorf("players = %d/%d bots %d", info.Players, info.MaxPlayers, info.Bots)
	}
	if info.ServerType != 'd' || info.Environment != 'l' {
		t.Errorf("type/env = %q/%q", byte(info.ServerType), byte(info.Environment))
	}
	if !info.Public() || !info.Secured() {
		t.Errorf("visibility/vac = %d/%d", info.Visibility, info.VAC)
	}
	if info.Version != "1.38" {
		t.Errorf("version = %q", info.Version)
	}
}

func TestDecodeInfoWithoutEDF(t *testing.T) {
	info, err := decodeInfo(mandatoryFields().bytes())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	checkMandatory(t, info)
	if info.EDF != 0 {
		t.Errorf("edf = 0x%02X, want 0", info.EDF)
	}
	if info.HasPort() || info.HasSteamID() || info.HasSourceTV() || info.HasKeywords() || info.HasGameID() {
		t.Error("optional fields reported present without EDF")
	}
}

func TestDecodeInfoEDFCombinations(t *testing.T) {
	tests := []struct {
		name  string
		edf   byte
		build func(b *infoPayloadBuilder)
		check func(t *testing.T, info *Info)
	}{
		{
			name:  "port only",
			edf:   edfPort,
			build: func(b *infoPayloadBuilder) { b.u16(27015) },
			check: func(t *testing.T, info *Info) {
				if !info.HasPort() || info.Port != 27015 {
					t.Errorf("port = %d (present=%v)", info.Port, info.HasPort())
				}
				if info.HasSteamID() || info.HasGameID() {
					t.Error("absent optional groups reported present")
				}
			},
		},
		{
			name:  "steam id only",
			edf:   edfSteamID,
			build: func(b *infoPayloadBuilder) { b.u64(90071996842573825) },
			check: func(t *testing.T, info *Info) {
				if !info.HasSteamID() || info.SteamID != 90071996842573825 {
					t.Errorf("steam id = %d", info.SteamID)
				}
			},
		},
		{
			name:  "sourcetv only",
			edf:   edfSourceTV,
			build: func(b *infoPayloadBuilder) { b.u16(27020).str("tv") },
			check: func(t *testing.T, info *Info) {
				if !info.HasSourceTV() || info.SourceTVPort != 27020 || info.SourceTVName != "tv" {
					t.Errorf("sourcetv = %d/%q", info.SourceTVPort, info.SourceTVName)
				}
			},
		},
		{
			name:  "keywords only",
			edf:   edfKeywords,
			build: func(b *infoPayloadBuilder) { b.str("secure,competitive") },
			check: func(t *testing.T, info *Info) {
				if !info.HasKeywords() || info.Keywords != "secure,competitive" {
					t.Errorf("keywords = %q", info.Keywords)
				}
			},
		},
		{
			name:  "game id only",
			edf:   edfGameID,
			build: func(b *infoPayloadBuilder) { b.u64(730) },
			check: func(t *testing.T, info *Info) {
				if !info.HasGameID() || info.GameID != 730 {
					t.Errorf("game id = %d", info.GameID)
				}
			},
		},
		{
			name: "all groups in published order",
			edf:  edfPort | edfSteamID | edfSourceTV | edfKeywords | edfGameID,
			build: func(b *infoPayloadBuilder) {
				b.u16(27015).u64(111).u16(27020).str("tv").str("kw").u64(730)
			},
			check: func(t *testing.T, info *Info) {
				if info.Port != 27015 || info.SteamID != 111 ||
					info.SourceTVPort != 27020 || info.SourceTVName != "tv" ||
					info.Keywords != "kw" || info.GameID != 730 {
					t.Errorf("decoded optionals: %+v", info)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mandatoryFields().byte(tt.edf)
			tt.build(b)

			info, err := decodeInfo(b.bytes())
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			checkMandatory(t, info)
			if info.EDF != tt.edf {
				t.Fatalf("edf = 0x%02X, want 0x%02X", info.EDF, tt.edf)
			}
			tt.check(t, info)
		})
	}
}

func TestDecodeInfoTruncated(t *testing.T) {
	full := mandatoryFields().bytes()

	// Every prefix of the mandatory section must fail cleanly, never read
	// out of bounds and never return a partial result.
	for cut := 0; cut < len(full); cut++ {
		info, err := decodeInfo(full[:cut])
		if !errors.Is(err, ErrProtocol) {
			t.Fatalf("cut=%d: got error %v, want ErrProtocol", cut, err)
		}
		if info != nil {
			t.Fatalf("cut=%d: got partial result %+v", cut, info)
		}
	}
}

func TestDecodeInfoTruncatedOptionalGroup(t *testing.T) {
	// EDF advertises a game id but the 8-byte value is cut short.
	payload := mandatoryFields().byte(edfGameID).u16(0xBEEF).bytes()

	if _, err := decodeInfo(payload); !errors.Is(err, ErrProtocol) {
		t.Fatalf("got error %v, want ErrProtocol", err)
	}
}

func TestEnumStrings(t *testing.T) {
	if got := ServerType('d').String(); got != "Dedicated" {
		t.Errorf("ServerType d = %q", got)
	}
	if got := ServerType('p').String(); got != "SourceTV relay" {
		t.Errorf("ServerType p = %q", got)
	}
	if got := Environment('w').String(); got != "Windows" {
		t.Errorf("Environment w = %q", got)
	}
	if got := Environment('o').String(); got != "Mac" {
		t.Errorf("Environment o = %q", got)
	}
}
