// Package fabricclient wraps the Fabric gateway for talking to the
// insurance pool chaincode.
package fabricclient

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
)

const (
	// ChannelName is the channel the pool chaincode is deployed on.
	ChannelName = "insurance-pool-channel"
	// ContractName is the chaincode name.
	ContractName = "insurance-pool"

	walletLabel = "poolUser"
)

type Client struct {
	gw       *gateway.Gateway
	network  *gateway.Network
	contract *gateway.Contract
}

// NewClient connects to the gateway described by the connection profile and
// binds the pool contract.
func NewClient(configPath, mspID, certPath, keyPath string) (*Client, error) {
	wallet, err := gateway.NewFileSystemWallet("wallet")
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %v", err)
	}

	if !wallet.Exists(walletLabel) {
		if err := populateWallet(wallet, mspID, certPath, keyPath); err != nil {
			return nil, fmt.Errorf("failed to populate wallet: %v", err)
		}
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(config.FromFile(filepath.Clean(configPath))),
		gateway.WithIdentity(wallet, walletLabel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gateway: %v", err)
	}

	network, err := gw.GetNetwork(ChannelName)
	if err != nil {
		return nil, fmt.Errorf("failed to get network: %v", err)
	}

	contract := network.GetContract(ContractName)

	return &Client{
		gw:       gw,
		network:  network,
		contract: contract,
	}, nil
}

// SubmitTransaction invokes a mutating pool operation on the chaincode.
func (c *Client) SubmitTransaction(name string, args ...string) ([]byte, error) {
	return c.contract.SubmitTransaction(name, args...)
}

// EvaluateTransaction invokes a read-only pool query on the chaincode.
func (c *Client) EvaluateTransaction(name string, args ...string) ([]byte, error) {
	return c.contract.EvaluateTransaction(name, args...)
}

// PoolEvents subscribes to the chaincode's notification stream.
func (c *Client) PoolEvents() (<-chan *fab.CCEvent, error) {
	reg, notifier, err := c.contract.RegisterEvent("PoolEvent")
	if err != nil {
		return nil, err
	}
	// TODO: expose unregistration so callers can stop the stream; the
	// service currently subscribes once for its whole lifetime.
	_ = reg
	return notifier, nil
}

func (c *Client) Close() {
	c.gw.Close()
}

func populateWallet(wallet *gateway.Wallet, mspID, certPath, keyPath string) error {
	cert, err := os.ReadFile(filepath.Clean(certPath))
	if err != nil {
		return err
	}

	key, err := os.ReadFile(filepath.Clean(keyPath))
	if err != nil {
		return err
	}

	identity := gateway.NewX509Identity(mspID, string(cert), string(key))

	return wallet.Put(walletLabel, identity)
}
