package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// Kind tags every stored object so readers resolve the variant explicitly
// instead of sniffing payload shapes.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
)

var ErrCorrupt = errors.New("corrupt object encoding")

// ID is a content id: CIDv1, raw codec, SHA-256 multihash. Identical
// encoded objects always produce the identical ID, across processes.
type ID = cid.Cid

// ComputeID digests a full encoded object (header + payload).
func ComputeID(encoded []byte) (ID, error) {
	sum, err := multihash.Sum(encoded, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("digest object: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Filename renders an id as the object's storage filename.
func Filename(id ID) (string, error) {
	s, err := id.StringOfBase(multibase.Base32)
	if err != nil {
		return "", fmt.Errorf("encode object filename: %w", err)
	}
	return s, nil
}

// ParseID parses an id previously rendered with ID.String or Filename.
func ParseID(s string) (ID, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("parse object id %q: %w", s, err)
	}
	return id, nil
}

// Encode envelopes a payload as "<kind> <len>\x00<payload>".
func Encode(kind Kind, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	return append(out, payload...)
}

// Decode splits an envelope into its kind tag and payload.
func Decode(encoded []byte) (Kind, []byte, error) {
	sep := bytes.IndexByte(encoded, 0)
	if sep < 0 {
		return "", nil, fmt.Errorf("%w: missing header terminator", ErrCorrupt)
	}

	header := string(encoded[:sep])
	kindStr, sizeStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed header %q", ErrCorrupt, header)
	}

	kind := Kind(kindStr)
	switch kind {
	case KindBlob, KindTree, KindCommit:
	default:
		return "", nil, fmt.Errorf("%w: unknown kind %q", ErrCorrupt, kindStr)
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad size %q", ErrCorrupt, sizeStr)
	}

	payload := encoded[sep+1:]
	if size != len(payload) {
		return "", nil, fmt.Errorf("%w: size %d does not match payload %d", ErrCorrupt, size, len(payload))
	}

	return kind, payload, nil
}

// EncodeBlob envelopes file content and returns the encoding with its id.
func EncodeBlob(content []byte) ([]byte, ID, error) {
	enc := Encode(KindBlob, content)
	id, err := ComputeID(enc)
	if err != nil {
		return nil, cid.Undef, err
	}
	return enc, id, nil
}

// BlobID returns the id content would have if stored, without keeping
// the encoding around.
func BlobID(content []byte) (ID, error) {
	_, id, err := EncodeBlob(content)
	return id, err
}
