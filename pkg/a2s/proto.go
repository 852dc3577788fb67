// Package a2s implements a client for the Valve Server Query protocol
// (https://developer.valvesoftware.com/wiki/Server_queries). It performs a
// single-shot A2S_INFO request/response exchange over UDP, including the
// challenge handshake modern servers require, and decodes the reply into a
// typed Info structure.
package a2s

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// headerWhole marks a reply contained in a single datagram.
	headerWhole int32 = -1
	// headerSplit marks a fragmented reply. Fragmented replies are not
	// supported, the client reports them as a protocol error.
	headerSplit int32 = -2

	infoRequestType  byte = 'T'
	infoResponseType byte = 'I'
	challengeType    byte = 'A'

	infoPayload = "Source Engine Query"
)

const (
	// DefaultTimeout bounds the wait for a reply when Client.Timeout is unset.
	DefaultTimeout = 10 * time.Second

	// DefaultBufferSize is the conventional maximum size of a query datagram.
	DefaultBufferSize uint16 = 1400
)

// infoRequest builds the fixed A2S_INFO request packet. The byte sequence is
// deterministic; challenge, when non-nil, is the 4-byte token a server handed
// back and is appended verbatim.
func infoRequest(challenge []byte) []byte {
	buf := make([]byte, 0, 4+1+len(infoPayload)+1+len(challenge))

	// Whole-packet marker, the little-endian encoding of headerWhole.
	buf = binary.LittleEndian.AppendUint32(buf, 0xFFFFFFFF)
	buf = append(buf, infoRequestType)
	buf = append(buf, infoPayload...)
	buf = append(buf, 0)
	buf = append(buf, challenge...)

	return buf
}

// splitResponse validates the reply header and returns the reply-type byte
// together with the payload that follows it.
func splitResponse(data []byte) (byte, []byte, error) {
	r := newReader(data)

	header, err := r.readInt32("response header")
	if err != nil {
		return 0, nil, err
	}

	switch header {
	case headerWhole:
	case headerSplit:
		return 0, nil, fmt.Errorf("%w: split responses are not supported", ErrProtocol)
	default:
		return 0, nil, fmt.Errorf("%w: unexpected header 0x%08X", ErrProtocol, uint32(header))
	}

	typ, err := r.readByte("response type")
	if err != nil {
		return 0, nil, err
	}

	return typ, data[r.pos:], nil
}
