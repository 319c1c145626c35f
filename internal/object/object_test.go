package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/avc/internal/object"
)

func TestBlobIDStable(t *testing.T) {
	id1, err := object.BlobID([]byte("same bytes"))
	require.NoError(t, err)
	id2, err := object.BlobID([]byte("same bytes"))
	require.NoError(t, err)
	require.True(t, id1.Equals(id2))

	id3, err := object.BlobID([]byte("other bytes"))
	require.NoError(t, err)
	require.False(t, id1.Equals(id3))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	content := []byte("hello\x00world") // payload may contain NUL
	enc, id, err := object.EncodeBlob(content)
	require.NoError(t, err)
	require.True(t, id.Defined())

	kind, payload, err := object.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, object.KindBlob, kind)
	require.Equal(t, content, payload)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		[]byte("no header terminator"),
		[]byte("blob\x00payload"),          // missing size
		[]byte("widget 3\x00abc"),          // unknown kind
		[]byte("blob 5\x00abc"),            // size mismatch
		[]byte("blob notanumber\x00abc"),   // bad size
	}
	for _, c := range cases {
		_, _, err := object.Decode(c)
		require.ErrorIs(t, err, object.ErrCorrupt, "input %q", c)
	}
}

func TestFilenameAndParse(t *testing.T) {
	_, id, err := object.EncodeBlob([]byte("x"))
	require.NoError(t, err)

	name, err := object.Filename(id)
	require.NoError(t, err)
	require.NotEmpty(t, name)

	parsed, err := object.ParseID(name)
	require.NoError(t, err)
	require.True(t, id.Equals(parsed))

	_, err = object.ParseID("definitely not a cid")
	require.Error(t, err)
}

func TestTreeDeterminism(t *testing.T) {
	blobID, err := object.BlobID([]byte("f"))
	require.NoError(t, err)
	idStr := blobID.String()

	a := &object.Tree{Entries: []object.TreeEntry{
		{Name: "zeta.txt", Mode: object.ModeFile, ID: idStr, Size: 1},
		{Name: "alpha.txt", Mode: object.ModeFile, ID: idStr, Size: 1},
		{Name: "mid", Mode: object.ModeDir, ID: idStr},
	}}
	b := &object.Tree{Entries: []object.TreeEntry{
		{Name: "mid", Mode: object.ModeDir, ID: idStr},
		{Name: "alpha.txt", Mode: object.ModeFile, ID: idStr, Size: 1},
		{Name: "zeta.txt", Mode: object.ModeFile, ID: idStr, Size: 1},
	}}

	_, idA, err := a.Encode()
	require.NoError(t, err)
	_, idB, err := b.Encode()
	require.NoError(t, err)
	require.True(t, idA.Equals(idB), "entry order must not change the tree id")
}

func TestTreeRejectsDuplicates(t *testing.T) {
	tr := &object.Tree{Entries: []object.TreeEntry{
		{Name: "a", Mode: object.ModeFile, ID: "x"},
		{Name: "a", Mode: object.ModeFile, ID: "y"},
	}}
	_, _, err := tr.Encode()
	require.Error(t, err)
}

func TestTreeRoundTrip(t *testing.T) {
	tr := &object.Tree{Entries: []object.TreeEntry{
		{Name: "b", Mode: object.ModeFile, ID: "id-b", Size: 7},
		{Name: "a", Mode: object.ModeDir, ID: "id-a"},
	}}
	enc, _, err := tr.Encode()
	require.NoError(t, err)

	kind, payload, err := object.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, object.KindTree, kind)

	got, err := object.DecodeTree(payload)
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	require.Equal(t, "a", got.Entries[0].Name, "entries come back sorted")

	e, ok := got.Find("b")
	require.True(t, ok)
	require.EqualValues(t, 7, e.Size)
	_, ok = got.Find("missing")
	require.False(t, ok)
}

func TestCommitRoundTrip(t *testing.T) {
	c := &object.Commit{
		Tree:      "tree-id",
		Parents:   []string{"parent-id"},
		Author:    "avc",
		Timestamp: 1700000000,
		Message:   "checkpoint",
	}
	enc, id, err := c.Encode()
	require.NoError(t, err)
	require.True(t, id.Defined())

	kind, payload, err := object.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, object.KindCommit, kind)

	got, err := object.DecodeCommit(payload)
	require.NoError(t, err)
	require.Equal(t, c.Tree, got.Tree)
	require.Equal(t, c.Parents, got.Parents)
	require.Equal(t, c.Message, got.Message)
}

func TestCommitIdentityChangesWithFields(t *testing.T) {
	base := object.Commit{Tree: "t", Timestamp: 1}
	withMsg := base
	withMsg.Message = "m"

	_, id1, err := base.Encode()
	require.NoError(t, err)
	_, id2, err := withMsg.Encode()
	require.NoError(t, err)
	require.False(t, id1.Equals(id2))
}
