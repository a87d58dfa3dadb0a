package drop

import (
	"context"
	"testing"

	"github.com/dropzone-protocol/dropzone/bridge"
	"github.com/stretchr/testify/require"
)

// memoryStore keeps drops serialized so reads hand back independent copies,
// the same way the real stores do.
type memoryStore struct {
	seq   uint64
	drops map[uint64][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{drops: make(map[uint64][]byte)}
}

func (ms *memoryStore) ReadDrop(id uint64) (*Drop, error) {
	val, ok := ms.drops[id]
	if !ok {
		return nil, nil
	}
	var d Drop
	err := bridge.MsgpackUnmarshal(val, &d)
	return &d, err
}

func (ms *memoryStore) WriteDrop(d *Drop) error {
	ms.drops[d.Id] = bridge.MsgpackMarshalPanic(d)
	return nil
}

func (ms *memoryStore) NextDropId() (uint64, error) {
	ms.seq += 1
	return ms.seq, nil
}

type fakeInitiator struct {
	transfers []*bridge.Transfer
	err       error
}

func (fi *fakeInitiator) BuildTransfer(ctx context.Context, t *bridge.Transfer) error {
	if fi.err != nil {
		return fi.err
	}
	fi.transfers = append(fi.transfers, t)
	return nil
}

const (
	testAccount  = "dropzone.node"
	testFunder   = "funder.account"
	testSender   = "alice.sender"
	testContract = "pixel.nft"
)

func newTestZone() (*DropZone, *memoryStore, *fakeInitiator) {
	ms := newMemoryStore()
	fi := &fakeInitiator{}
	return NewDropZone(testAccount, ms, fi), ms, fi
}

func newTestDrop(t *testing.T, dz *DropZone) uint64 {
	t.Helper()
	id, err := dz.CreateNFTDrop(context.Background(), &bridge.Env{Predecessor: testFunder}, &NFTDataConfig{
		Sender:         testSender,
		Contract:       testContract,
		LongestTokenId: "tokenAAA",
	}, []string{"pk1", "pk2"}, DropConfig{MaxClaimsPerKey: 1})
	require.NoError(t, err)
	return id
}

func registerEnv() *bridge.Env {
	return &bridge.Env{Predecessor: testContract}
}

func resolveEnv(predecessor string, succeeded bool) *bridge.Env {
	result := bridge.PromiseResultFailed
	if succeeded {
		result = bridge.PromiseResultSuccessful
	}
	return &bridge.Env{
		Predecessor: predecessor,
		Results:     []int{result},
		UsedGas:     3 * bridge.OneGigaGas,
		PrepaidGas:  100 * bridge.OneGigaGas,
	}
}
