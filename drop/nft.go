package drop

import (
	"github.com/shopspring/decimal"
)

// NFTData tracks the registered inventory of an NFT drop. The longest
// permitted token id bounds what registration will accept, and the storage
// reserved for it is sized at drop creation.
type NFTData struct {
	Sender            string
	Contract          string
	LongestTokenId    string
	StorageForLongest string
	TokenIds          TokenSet
}

// NFTDataConfig is the caller-supplied template used at drop creation, never
// mutated afterwards.
type NFTDataConfig struct {
	Sender         string `json:"nft_sender"`
	Contract       string `json:"nft_contract"`
	LongestTokenId string `json:"longest_token_id"`
}

// storage price per byte of token id, in the native token
var storageCostPerByte = decimal.New(1, -5)

func storageForLongest(longestTokenId string) string {
	size := decimal.NewFromInt(int64(len(longestTokenId)))
	return size.Mul(storageCostPerByte).String()
}

// TokenSet is an insertion-ordered set of token ids. The whole set is read,
// mutated and written back with its drop on every operation.
type TokenSet struct {
	Ids []string
}

func (s *TokenSet) Contains(id string) bool {
	for _, old := range s.Ids {
		if old == id {
			return true
		}
	}
	return false
}

func (s *TokenSet) Insert(id string) bool {
	if s.Contains(id) {
		return false
	}
	s.Ids = append(s.Ids, id)
	return true
}

func (s *TokenSet) Remove(id string) bool {
	for i, old := range s.Ids {
		if old == id {
			s.Ids = append(s.Ids[:i], s.Ids[i+1:]...)
			return true
		}
	}
	return false
}

// Pop takes the oldest registered id out of the set.
func (s *TokenSet) Pop() (string, bool) {
	if len(s.Ids) == 0 {
		return "", false
	}
	id := s.Ids[0]
	s.Ids = s.Ids[1:]
	return id, true
}

func (s *TokenSet) Len() int {
	return len(s.Ids)
}
