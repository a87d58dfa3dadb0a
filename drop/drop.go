package drop

import (
	"errors"
	"fmt"
)

var (
	ErrDropNotFound      = errors.New("drop: no drop found for id")
	ErrAssetKindMismatch = errors.New("drop: asset kind mismatch")
	ErrSenderMismatch    = errors.New("drop: nft data must match what was sent")
	ErrTokenIdTooLong    = errors.New("drop: token id longer than largest token specified")
	ErrTokenIdRegistered = errors.New("drop: token id already registered")
	ErrTokenIdUnknown    = errors.New("drop: token id not registered")
	ErrNoClaimsAvailable = errors.New("drop: no claims available")
	ErrNotDropFunder     = errors.New("drop: caller is not the drop funder")
	ErrPrivateMethod     = errors.New("drop: method restricted to the contract account")
	ErrInvalidDropConfig = errors.New("drop: invalid drop configuration")
)

const (
	AssetKindNFT    = "nft"
	AssetKindSimple = "simple"
)

// DropAsset is the drop's payload, one variant populated according to Kind.
type DropAsset struct {
	Kind   string
	NFT    *NFTData    `msgpack:",omitempty"`
	Simple *SimpleData `msgpack:",omitempty"`
}

// SimpleData is a keys-only drop with no backing asset inventory.
type SimpleData struct{}

type DropConfig struct {
	MaxClaimsPerKey uint64
}

type Drop struct {
	Id                  uint64
	Funder              string
	PublicKeys          []string
	Config              DropConfig
	NumClaimsRegistered uint64
	Asset               DropAsset
}

func NewNFTAsset(data *NFTData) DropAsset {
	return DropAsset{Kind: AssetKindNFT, NFT: data}
}

func NewSimpleAsset() DropAsset {
	return DropAsset{Kind: AssetKindSimple, Simple: &SimpleData{}}
}

// NFTData extracts the NFT payload, rejecting every other variant instead of
// assuming the match succeeds.
func (d *Drop) NFTData() (*NFTData, error) {
	if d.Asset.Kind != AssetKindNFT || d.Asset.NFT == nil {
		return nil, fmt.Errorf("%w: drop %d holds %q", ErrAssetKindMismatch, d.Id, d.Asset.Kind)
	}
	return d.Asset.NFT, nil
}

// ClaimsQuota is the hard ceiling on registered claims, one claim per key
// times the per-key multiplier.
func (d *Drop) ClaimsQuota() uint64 {
	return uint64(len(d.PublicKeys)) * d.Config.MaxClaimsPerKey
}
