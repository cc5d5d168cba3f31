// Package portfolio turns signals into sized orders and decides which of
// them the account can afford.
package portfolio

import (
	"math"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// SizeOrder maps a signal direction, the current signed position and the
// configured target size onto a side and a non-negative quantity.
//
//	EXIT*  qty > 0   SELL qty
//	EXIT*  qty <= 0  BUY |qty|
//	LONG   qty < 0   BUY size + |qty|
//	LONG   qty >= 0  BUY size
//	SHORT  qty > 0   SELL size + qty
//	SHORT  qty <= 0  SELL size
//
// ok is false for an unknown direction.
func SizeOrder(direction types.Direction, currentQuantity float64, targetSize float64) (side types.PurchaseType, quantity float64, ok bool) {
	switch {
	case direction.IsExit():
		if currentQuantity > 0 {
			return types.PurchaseTypeSell, currentQuantity, true
		}

		return types.PurchaseTypeBuy, math.Abs(currentQuantity), true
	case direction == types.DirectionLong:
		if currentQuantity < 0 {
			return types.PurchaseTypeBuy, targetSize + math.Abs(currentQuantity), true
		}

		return types.PurchaseTypeBuy, targetSize, true
	case direction == types.DirectionShort:
		if currentQuantity > 0 {
			return types.PurchaseTypeSell, targetSize + currentQuantity, true
		}

		return types.PurchaseTypeSell, targetSize, true
	default:
		return "", 0, false
	}
}
