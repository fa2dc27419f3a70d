package anchor

import "strings"

// Cluster locates a Solana cluster: an HTTP RPC endpoint plus the derived
// WebSocket endpoint for subscriptions.
type Cluster struct {
	name  string
	url   string
	wsURL string
}

// Well-known clusters.
var (
	Localnet    = Cluster{name: "localnet", url: "http://127.0.0.1:8899", wsURL: "ws://127.0.0.1:8900"}
	Devnet      = Cluster{name: "devnet", url: "https://api.devnet.solana.com", wsURL: "wss://api.devnet.solana.com"}
	Testnet     = Cluster{name: "testnet", url: "https://api.testnet.solana.com", wsURL: "wss://api.testnet.solana.com"}
	MainnetBeta = Cluster{name: "mainnet-beta", url: "https://api.mainnet-beta.solana.com", wsURL: "wss://api.mainnet-beta.solana.com"}
)

// CustomCluster locates a cluster by explicit endpoints. When wsURL is
// empty it is derived from url by swapping the scheme.
func CustomCluster(url, wsURL string) Cluster {
	if wsURL == "" {
		wsURL = deriveWSURL(url)
	}
	return Cluster{name: "custom", url: url, wsURL: wsURL}
}

func deriveWSURL(url string) string {
	switch {
	case strings.HasPrefix(url, "https://"):
		return "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		return "ws://" + strings.TrimPrefix(url, "http://")
	default:
		return url
	}
}

// URL returns the HTTP RPC endpoint.
func (c Cluster) URL() string { return c.url }

// WSURL returns the WebSocket endpoint.
func (c Cluster) WSURL() string { return c.wsURL }

// String returns the cluster name.
func (c Cluster) String() string { return c.name }
