package alog

import (
	"bytes"
	"testing"

	"github.com/W3W-EdU/machine-emulator/merkletree"
	"github.com/stretchr/testify/require"
)

func sampleLog() *Log {
	return &Log{Entries: []Entry{
		{Kind: KindRead, Address: 0x1000, SizeLog2: 3, ValueRead: 0xdeadbeef, Siblings: []merkletree.Digest{{1}, {2}}},
		{Kind: KindWrite, Address: 0x1008, SizeLog2: 3, ValueRead: 1, ValueWritten: 2, Siblings: []merkletree.Digest{{3}, {4}}},
	}}
}

func TestWireRoundTrip(t *testing.T) {
	l := sampleLog()
	buf := new(bytes.Buffer)
	require.NoError(t, l.Serialize(buf))

	got, err := Deserialize(buf)
	require.NoError(t, err)
	require.Equal(t, l, got)
}

func TestDeserializeRejectsTruncatedInput(t *testing.T) {
	l := sampleLog()
	buf := new(bytes.Buffer)
	require.NoError(t, l.Serialize(buf))

	truncated := buf.Bytes()[:buf.Len()-10]
	_, err := Deserialize(bytes.NewReader(truncated))
	require.Error(t, err)
}

func TestDeserializeRejectsUnknownVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write([]byte{0xff, 0, 0, 0})
	_, err := Deserialize(buf)
	require.Error(t, err)
}
