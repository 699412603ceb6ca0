package domain

// TransactionVersion selects the transaction wire version byte.
type TransactionVersion byte

const (
	TransactionVersionMainnet TransactionVersion = 0x00
	TransactionVersionTestnet TransactionVersion = 0x80
)

// ChainID is the 4-byte chain identifier embedded in every transaction.
type ChainID uint32

const (
	ChainIDMainnet ChainID = 0x00000001
	ChainIDTestnet ChainID = 0x80000000
)

// Network describes one Stacks network endpoint set.
type Network struct {
	Name         string
	CoreAPIURL   string
	WebSocketURL string
	Version      TransactionVersion
	ChainID      ChainID
}

// Mainnet returns the default mainnet network.
func Mainnet() Network {
	return Network{
		Name:         "mainnet",
		CoreAPIURL:   "https://stacks-node-api.mainnet.stacks.co",
		WebSocketURL: "wss://stacks-node-api.mainnet.stacks.co",
		Version:      TransactionVersionMainnet,
		ChainID:      ChainIDMainnet,
	}
}

// Testnet returns the default testnet network.
func Testnet() Network {
	return Network{
		Name:         "testnet",
		CoreAPIURL:   "https://stacks-node-api.testnet.stacks.co",
		WebSocketURL: "wss://stacks-node-api.testnet.stacks.co",
		Version:      TransactionVersionTestnet,
		ChainID:      ChainIDTestnet,
	}
}
