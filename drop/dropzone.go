package drop

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/dropzone-protocol/dropzone/bridge"
)

const (
	NFTRefundMemo = "Linkdropped NFT Refund"
	NFTClaimMemo  = "Linkdrop claim"
)

// DropZone custodies NFTs registered against drops and reconciles the
// outcomes of their outbound transfers. Entry points serialize on one mutex,
// one contract call at a time; resolution always re-reads the drop fresh
// because registrations may have interleaved while the transfer settled.
type DropZone struct {
	mu        sync.Mutex
	account   string
	store     Store
	initiator Initiator
}

func NewDropZone(account string, store Store, initiator Initiator) *DropZone {
	return &DropZone{
		account:   account,
		store:     store,
		initiator: initiator,
	}
}

func (dz *DropZone) AccountId() string {
	return dz.account
}

// CreateNFTDrop records a new NFT drop owned by the caller. The key set and
// claim-link issuance live outside this contract; the keys only bound the
// claim quota here.
func (dz *DropZone) CreateNFTDrop(ctx context.Context, env *bridge.Env, conf *NFTDataConfig, publicKeys []string, dropConfig DropConfig) (uint64, error) {
	dz.mu.Lock()
	defer dz.mu.Unlock()

	if conf == nil || conf.Sender == "" || conf.Contract == "" || conf.LongestTokenId == "" {
		return 0, fmt.Errorf("%w: incomplete nft data config", ErrInvalidDropConfig)
	}
	if len(publicKeys) == 0 {
		return 0, fmt.Errorf("%w: no public keys", ErrInvalidDropConfig)
	}
	if env.Predecessor == "" {
		return 0, fmt.Errorf("%w: no funder", ErrInvalidDropConfig)
	}
	if dropConfig.MaxClaimsPerKey == 0 {
		dropConfig.MaxClaimsPerKey = 1
	}

	id, err := dz.store.NextDropId()
	if err != nil {
		return 0, err
	}
	drop := &Drop{
		Id:         id,
		Funder:     env.Predecessor,
		PublicKeys: publicKeys,
		Config:     dropConfig,
		Asset: NewNFTAsset(&NFTData{
			Sender:            conf.Sender,
			Contract:          conf.Contract,
			LongestTokenId:    conf.LongestTokenId,
			StorageForLongest: storageForLongest(conf.LongestTokenId),
		}),
	}
	err = dz.store.WriteDrop(drop)
	if err != nil {
		return 0, err
	}
	logger.Printf("DropZone.CreateNFTDrop(%d) funder %s keys %d\n", id, drop.Funder, len(publicKeys))
	return id, nil
}

// NFTOnTransfer admits an inbound NFT into a drop. The predecessor is the
// NFT contract that delivered the token. Every rejection leaves the drop
// untouched and asks the caller to take the token back; on success the token
// is retained and counted against the drop's claim quota.
func (dz *DropZone) NFTOnTransfer(ctx context.Context, env *bridge.Env, tokenId, senderId string, dropId uint64) (bool, error) {
	dz.mu.Lock()
	defer dz.mu.Unlock()

	contractId := env.Predecessor

	drop, err := dz.store.ReadDrop(dropId)
	if err != nil {
		return true, err
	}
	if drop == nil {
		return true, fmt.Errorf("%w: %d", ErrDropNotFound, dropId)
	}
	data, err := drop.NFTData()
	if err != nil {
		return true, err
	}
	if data.Sender != senderId || data.Contract != contractId {
		return true, fmt.Errorf("%w: got %s from %s", ErrSenderMismatch, senderId, contractId)
	}
	if len(tokenId) > len(data.LongestTokenId) {
		return true, fmt.Errorf("%w: %q", ErrTokenIdTooLong, tokenId)
	}
	if !data.TokenIds.Insert(tokenId) {
		return true, fmt.Errorf("%w: %q", ErrTokenIdRegistered, tokenId)
	}

	drop.NumClaimsRegistered += 1
	logger.Printf("drop %d num_claims_registered %d\n", dropId, drop.NumClaimsRegistered)

	// The claims to register can't exceed the number of keys in the drop.
	// The token was already sent in, so keep it instead of bouncing it.
	if quota := drop.ClaimsQuota(); drop.NumClaimsRegistered > quota {
		logger.Printf("drop %d received too many NFTs, keeping the rest\n", dropId)
		drop.NumClaimsRegistered = quota
	}

	err = dz.store.WriteDrop(drop)
	if err != nil {
		return true, err
	}
	return false, nil
}

// InitiateClaimTransfer sends one registered token to a claimant. The claim
// quota and the inventory give up the unit now; a failed settlement routes
// the token back to the original sender through ResolveTransfer, not back
// into the drop.
func (dz *DropZone) InitiateClaimTransfer(ctx context.Context, dropId uint64, receiverId string) error {
	dz.mu.Lock()
	defer dz.mu.Unlock()

	drop, err := dz.store.ReadDrop(dropId)
	if err != nil {
		return err
	}
	if drop == nil {
		return fmt.Errorf("%w: %d", ErrDropNotFound, dropId)
	}
	data, err := drop.NFTData()
	if err != nil {
		return err
	}
	if drop.NumClaimsRegistered == 0 {
		return fmt.Errorf("%w: drop %d", ErrNoClaimsAvailable, dropId)
	}
	tokenId, ok := data.TokenIds.Pop()
	if !ok {
		return fmt.Errorf("%w: drop %d inventory empty", ErrNoClaimsAvailable, dropId)
	}
	drop.NumClaimsRegistered -= 1

	// queue the transfer before writing the drop back, a rejected build
	// must not consume the claim unit
	t := &bridge.Transfer{
		TraceId:     bridge.UniqueTraceId(fmt.Sprintf("claim:%d", dropId), tokenId),
		Contract:    data.Contract,
		Receiver:    receiverId,
		TokenIds:    []string{tokenId},
		Memo:        NFTClaimMemo,
		GasBudget:   bridge.MinGasSimpleNFTTransfer,
		Callback:    bridge.CallbackResolveTransfer,
		DropId:      dropId,
		TokenSender: data.Sender,
	}
	err = dz.initiator.BuildTransfer(ctx, t)
	if err != nil {
		return err
	}
	err = dz.store.WriteDrop(drop)
	if err != nil {
		return err
	}
	logger.Printf("drop %d claim of %s by %s initiated\n", dropId, tokenId, receiverId)
	return nil
}

// InitiateRefund returns registered tokens to the drop's NFT sender in one
// batch. The claim quota gives the units up now, but the inventory keeps the
// ids until ResolveRefund confirms the batch settled.
func (dz *DropZone) InitiateRefund(ctx context.Context, env *bridge.Env, dropId uint64, tokenIds []string) error {
	dz.mu.Lock()
	defer dz.mu.Unlock()

	drop, err := dz.store.ReadDrop(dropId)
	if err != nil {
		return err
	}
	if drop == nil {
		return fmt.Errorf("%w: %d", ErrDropNotFound, dropId)
	}
	data, err := drop.NFTData()
	if err != nil {
		return err
	}
	if env.Predecessor != drop.Funder {
		return fmt.Errorf("%w: %s", ErrNotDropFunder, env.Predecessor)
	}
	if len(tokenIds) == 0 || uint64(len(tokenIds)) > drop.NumClaimsRegistered {
		return fmt.Errorf("%w: drop %d refunding %d of %d", ErrNoClaimsAvailable, dropId, len(tokenIds), drop.NumClaimsRegistered)
	}
	for _, id := range tokenIds {
		if !data.TokenIds.Contains(id) {
			return fmt.Errorf("%w: %q", ErrTokenIdUnknown, id)
		}
	}

	drop.NumClaimsRegistered -= uint64(len(tokenIds))

	t := &bridge.Transfer{
		TraceId:   bridge.UniqueTraceId(fmt.Sprintf("refund:%d", dropId), strings.Join(tokenIds, ",")),
		Contract:  data.Contract,
		Receiver:  data.Sender,
		TokenIds:  tokenIds,
		Memo:      NFTRefundMemo,
		GasBudget: bridge.MinGasSimpleNFTTransfer,
		Callback:  bridge.CallbackResolveRefund,
		DropId:    dropId,
	}
	err = dz.initiator.BuildTransfer(ctx, t)
	if err != nil {
		return err
	}
	err = dz.store.WriteDrop(drop)
	if err != nil {
		return err
	}
	logger.Printf("drop %d refund of %d tokens initiated\n", dropId, len(tokenIds))
	return nil
}

// ResolveRefund settles a batch refund. A failed transfer only restores the
// claim quota, the ids were never removed at initiation. A settled transfer
// removes the ids, tolerating ones already gone so a replay changes nothing.
func (dz *DropZone) ResolveRefund(ctx context.Context, env *bridge.Env, dropId uint64, tokenIds []string) (bool, error) {
	dz.mu.Lock()
	defer dz.mu.Unlock()

	logger.Verbosef("DropZone.ResolveRefund(%d) used gas %d prepaid gas %d\n", dropId, env.UsedGas/bridge.OneGigaGas, env.PrepaidGas/bridge.OneGigaGas)
	if env.Predecessor != dz.account {
		return false, fmt.Errorf("%w: %s", ErrPrivateMethod, env.Predecessor)
	}
	succeeded := env.PromiseResult(0) == bridge.PromiseResultSuccessful

	if !succeeded {
		drop, err := dz.store.ReadDrop(dropId)
		if err != nil {
			return false, err
		}
		if drop == nil {
			return false, fmt.Errorf("%w: %d", ErrDropNotFound, dropId)
		}
		drop.NumClaimsRegistered += uint64(len(tokenIds))
		err = dz.store.WriteDrop(drop)
		if err != nil {
			return false, err
		}
		logger.Printf("transfer failed, adding %d back to drop %d num_claims_registered %d\n", len(tokenIds), dropId, drop.NumClaimsRegistered)
		return false, nil
	}

	drop, err := dz.store.ReadDrop(dropId)
	if err != nil {
		return false, err
	}
	if drop == nil {
		return false, fmt.Errorf("%w: %d", ErrDropNotFound, dropId)
	}
	data, err := drop.NFTData()
	if err != nil {
		return false, err
	}
	for _, id := range tokenIds {
		logger.Printf("removing %s from drop %d, present %t\n", id, dropId, data.TokenIds.Remove(id))
	}
	err = dz.store.WriteDrop(drop)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ResolveTransfer settles one claimant transfer. On failure the token goes
// back to its original sender with a plain transfer; that compensating call
// is fire-and-forget, there is no second level of resolution.
func (dz *DropZone) ResolveTransfer(ctx context.Context, env *bridge.Env, tokenId, tokenSender, tokenContract string) (bool, error) {
	dz.mu.Lock()
	defer dz.mu.Unlock()

	logger.Verbosef("DropZone.ResolveTransfer(%s) used gas %d prepaid gas %d\n", tokenId, env.UsedGas/bridge.OneGigaGas, env.PrepaidGas/bridge.OneGigaGas)
	if env.Predecessor != dz.account {
		return false, fmt.Errorf("%w: %s", ErrPrivateMethod, env.Predecessor)
	}
	succeeded := env.PromiseResult(0) == bridge.PromiseResultSuccessful
	if succeeded {
		return true, nil
	}

	logger.Printf("transfer to the claimant failed, sending %s back to %s\n", tokenId, tokenSender)
	t := &bridge.Transfer{
		TraceId:   bridge.UniqueTraceId(tokenContract+":"+tokenId, tokenSender),
		Contract:  tokenContract,
		Receiver:  tokenSender,
		TokenIds:  []string{tokenId},
		Memo:      NFTRefundMemo,
		GasBudget: bridge.MinGasSimpleNFTTransfer,
		Callback:  bridge.CallbackNone,
	}
	err := dz.initiator.BuildTransfer(ctx, t)
	if err != nil {
		return false, err
	}
	return false, nil
}
