package replay

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MintLog is the replay-side token issuer. The host already issued the
// tokens, so replay only records what the engine would have minted; the
// totals double as a cross-check against the host's books.
type MintLog struct {
	logger *zap.Logger
	minted map[common.Address]*big.Int
}

func NewMintLog(logger *zap.Logger) *MintLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MintLog{
		logger: logger,
		minted: make(map[common.Address]*big.Int),
	}
}

func (m *MintLog) Mint(provider common.Address, amount *big.Int) error {
	total, ok := m.minted[provider]
	if !ok {
		total = big.NewInt(0)
		m.minted[provider] = total
	}
	total.Add(total, amount)

	m.logger.Debug("mint recorded",
		zap.String("provider", provider.Hex()),
		zap.String("amount", amount.String()),
	)
	return nil
}

// Minted returns the cumulative amount recorded for a provider.
func (m *MintLog) Minted(provider common.Address) *big.Int {
	if total, ok := m.minted[provider]; ok {
		return new(big.Int).Set(total)
	}
	return big.NewInt(0)
}
