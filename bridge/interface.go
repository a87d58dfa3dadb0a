package bridge

import (
	"context"
	"time"
)

type Store interface {
	WriteProperty(key, val []byte) error
	ReadProperty(key []byte) ([]byte, error)

	WriteTransfer(t *Transfer) error
	ReadTransfer(traceId string) (*Transfer, error)
	ListTransfers(state int, limit int) ([]*Transfer, error)
	DeleteTransfer(t *Transfer) error
}

// Deposit is an inbound NFT transfer notification drained from the bridge.
// The memo carries the drop id the sender wants the token registered against.
type Deposit struct {
	DepositId string    `json:"deposit_id"`
	TokenId   string    `json:"token_id"`
	Sender    string    `json:"sender"`
	Contract  string    `json:"contract"`
	Memo      string    `json:"memo"`
	CreatedAt time.Time `json:"created_at"`
}

type TransferRequest struct {
	TraceId    string   `json:"trace_id"`
	Contract   string   `json:"contract"`
	Receiver   string   `json:"receiver"`
	TokenIds   []string `json:"token_ids"`
	ApprovalId *uint64  `json:"approval_id,omitempty"`
	Memo       string   `json:"memo,omitempty"`
	Deposit    string   `json:"deposit"`
	GasBudget  uint64   `json:"gas_budget"`
}

// Client is the transport to the external NFT bridge. Transfer must return
// nil only for a settled success, a *TransferFailedError for a definitive
// failure, and any other error for a transient condition worth retrying.
type Client interface {
	ListDeposits(ctx context.Context, offset time.Time, limit int) ([]*Deposit, error)
	Transfer(ctx context.Context, req *TransferRequest) error
}

type Worker interface {
	ProcessDeposit(context.Context, *Deposit)
}

// Resolver reconciles the outcome of a dispatched transfer back into drop
// state. The group invokes it exactly once per transfer, after the outcome
// is definitive, with an Env whose promise result 0 carries that outcome.
type Resolver interface {
	ResolveRefund(ctx context.Context, env *Env, dropId uint64, tokenIds []string) (bool, error)
	ResolveTransfer(ctx context.Context, env *Env, tokenId, tokenSender, tokenContract string) (bool, error)
}
