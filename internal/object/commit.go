package object

import (
	"encoding/json"
	"fmt"

	"github.com/ipfs/go-cid"
)

// Commit links a root tree to its parent chain.
type Commit struct {
	Tree      string   `json:"tree"`
	Parents   []string `json:"parents,omitempty"`
	Author    string   `json:"author,omitempty"`
	Timestamp int64    `json:"timestamp"`
	Message   string   `json:"message,omitempty"`
}

// Encode returns the commit's envelope and id.
func (c *Commit) Encode() ([]byte, ID, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, cid.Undef, fmt.Errorf("encode commit: %w", err)
	}

	enc := Encode(KindCommit, payload)
	id, err := ComputeID(enc)
	if err != nil {
		return nil, cid.Undef, err
	}
	return enc, id, nil
}

// DecodeCommit parses a commit payload (the envelope already stripped).
func DecodeCommit(payload []byte) (*Commit, error) {
	var c Commit
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("%w: commit payload: %v", ErrCorrupt, err)
	}
	return &c, nil
}
