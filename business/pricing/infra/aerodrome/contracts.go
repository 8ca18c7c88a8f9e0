package aerodrome

import (
	"github.com/ethereum/go-ethereum/common"
)

// RouterABI is the ABI fragment for the Aerodrome router.
// Only getAmountsOut is used.
const RouterABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{
				"components": [
					{"internalType": "address", "name": "from", "type": "address"},
					{"internalType": "address", "name": "to", "type": "address"},
					{"internalType": "bool", "name": "stable", "type": "bool"},
					{"internalType": "address", "name": "factory", "type": "address"}
				],
				"internalType": "struct IRouter.Route[]",
				"name": "routes",
				"type": "tuple[]"
			}
		],
		"name": "getAmountsOut",
		"outputs": [
			{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// Route is one hop of an Aerodrome swap path.
type Route struct {
	From    common.Address
	To      common.Address
	Stable  bool
	Factory common.Address
}
