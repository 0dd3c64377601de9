package lattice

import (
	"encoding/binary"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// encMode uses Core Deterministic Encoding so equal content always
// produces identical bytes.
var encMode cbor.EncMode

// shapeDomainKey separates shape fingerprints from any other BLAKE3 use.
var shapeDomainKey = [32]byte{
	'b', 'o', 'p', 'k', 'i', 't', '.', 'l', 'a', 't', 't', 'i', 'c', 'e', '.', 's',
	'h', 'a', 'p', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("lattice: CBOR encoder initialization failed: " + err.Error())
	}
}

type fingerprintRecord struct {
	Kind     int      `cbor:"1,keyasint"`
	Cells    []Cell   `cbor:"2,keyasint,omitempty"`
	Children []uint64 `cbor:"3,keyasint,omitempty"`
}

// fingerprint hashes the content of a shape. Child fingerprints are sorted,
// so containers compare as sets.
func fingerprint(kind m.ShapeType, cells []Cell, children []m.Shape) uint64 {
	record := fingerprintRecord{Kind: int(kind), Cells: cells}
	for _, child := range children {
		record.Children = append(record.Children, child.HashCode())
	}

	slices.Sort(record.Children)

	data, err := encMode.Marshal(record)
	if err != nil {
		panic("lattice: fingerprint encoding failed: " + err.Error())
	}

	hasher, err := blake3.NewKeyed(shapeDomainKey[:])
	if err != nil {
		panic("lattice: BLAKE3 keyed hash initialization failed: " + err.Error())
	}

	_, _ = hasher.Write(data)

	return binary.LittleEndian.Uint64(hasher.Sum(nil)[:8])
}
