package drive

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	tlvTypeSpecial = 0 // event id, 32 bytes, required
	tlvTypeRelay   = 1 // relay URL, variable UTF-8
	tlvTypeAuthor  = 2 // author pubkey, 32 bytes
	tlvTypeKind    = 3 // kind, exactly 4 bytes big-endian

	hrpEvent = "nevent"
)

// EncodeSharePointer serializes p as a concatenation of (type:u8,
// length:u8, value) TLVs, repacks the bytes into 5-bit groups, and wraps
// them in bech32 under HRP "nevent". Length fields cannot exceed 255
// bytes; relay URLs longer than that are silently skipped, matching the
// host ecosystem's own leniency around malformed hint data.
func EncodeSharePointer(p *SharePointer) (string, error) {
	idBytes, err := hex.DecodeString(p.EventID)
	if err != nil || len(idBytes) != 32 {
		return "", NewInvalidArgument("event id must be 32 bytes hex")
	}

	var raw []byte
	raw = append(raw, tlvTypeSpecial, 32)
	raw = append(raw, idBytes...)

	for _, relay := range p.Relays {
		if len(relay) > 255 {
			continue
		}
		raw = append(raw, tlvTypeRelay, byte(len(relay)))
		raw = append(raw, []byte(relay)...)
	}

	if p.Author != "" {
		authorBytes, err := hex.DecodeString(p.Author)
		if err != nil || len(authorBytes) != 32 {
			return "", NewInvalidArgument("author must be 32 bytes hex")
		}
		raw = append(raw, tlvTypeAuthor, 32)
		raw = append(raw, authorBytes...)
	}

	if p.Kind != nil {
		kindBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(kindBytes, uint32(*p.Kind))
		raw = append(raw, tlvTypeKind, 4)
		raw = append(raw, kindBytes...)
	}

	fiveBit, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", NewInvalidArgument("bit conversion: %v", err)
	}
	encoded, err := bech32.Encode(hrpEvent, fiveBit)
	if err != nil {
		return "", NewInvalidArgument("bech32 encoding: %v", err)
	}
	return encoded, nil
}

// DecodeSharePointer is the inverse of EncodeSharePointer. It rejects an
// HRP other than "nevent" or a payload missing the required type-0 TLV.
// TLVs of unknown type are silently ignored; a relay TLV with a
// malformed length (one that runs past the end of the buffer) is
// silently skipped rather than aborting the whole decode, per the host
// ecosystem's specification. A kind TLV of any length other than 4 is
// discarded.
func DecodeSharePointer(nevent string) (*SharePointer, error) {
	hrp, fiveBit, err := bech32.DecodeNoLimit(nevent)
	if err != nil {
		return nil, NewInvalidArgument("bech32 decoding: %v", err)
	}
	if hrp != hrpEvent {
		return nil, NewInvalidArgument("unexpected HRP %q, want %q", hrp, hrpEvent)
	}

	raw, err := bech32.ConvertBits(fiveBit, 5, 8, false)
	if err != nil {
		return nil, NewInvalidArgument("bit conversion: %v", err)
	}

	p := &SharePointer{}
	haveSpecial := false

	for i := 0; i+2 <= len(raw); {
		typ := raw[i]
		length := int(raw[i+1])
		start := i + 2
		end := start + length
		if end > len(raw) {
			// Malformed length: stop parsing this TLV stream rather
			// than reading out of bounds, but keep whatever was
			// already parsed.
			break
		}
		value := raw[start:end]

		switch typ {
		case tlvTypeSpecial:
			if length != 32 {
				break
			}
			p.EventID = hex.EncodeToString(value)
			haveSpecial = true
		case tlvTypeRelay:
			p.Relays = append(p.Relays, string(value))
		case tlvTypeAuthor:
			if length == 32 {
				p.Author = hex.EncodeToString(value)
			}
		case tlvTypeKind:
			if length == 4 {
				kind := int(binary.BigEndian.Uint32(value))
				p.Kind = &kind
			}
			// any other length: discarded, per spec.
		default:
			// unknown TLV type: ignored.
		}

		i = end
	}

	if !haveSpecial {
		return nil, NewInvalidArgument("missing required type-0 (event id) TLV")
	}
	return p, nil
}
