// Package engine wraps the trading engine's remote-procedure interface.
package engine

import (
	"context"

	"github.com/quantbridge/webtrader/internal/models"
)

// Callback receives every event the backend publishes, invoked once per
// event in delivery order on the adapter's own receive goroutine.
type Callback func(topic string, record models.Record)

// Client is the boundary to the backend trading engine. Synchronous calls
// cost one round trip; events arrive asynchronously through the registered
// callback. Start and Stop must each be called exactly once.
type Client interface {
	Connect(ctx context.Context, settings map[string]any, gatewayName string) error
	Subscribe(ctx context.Context, req models.SubscribeRequest, gatewayName string) error
	SendOrder(ctx context.Context, req models.OrderRequest, gatewayName string) (string, error)
	CancelOrder(ctx context.Context, req models.CancelRequest, gatewayName string) error

	// GetContract and GetOrder return (nil, nil) when the record is absent.
	GetContract(ctx context.Context, vtSymbol string) (*models.ContractData, error)
	GetOrder(ctx context.Context, vtOrderID string) (*models.OrderData, error)

	GetAllTicks(ctx context.Context) ([]models.TickData, error)
	GetAllOrders(ctx context.Context) ([]models.OrderData, error)
	GetAllTrades(ctx context.Context) ([]models.TradeData, error)
	GetAllPositions(ctx context.Context) ([]models.PositionData, error)
	GetAllAccounts(ctx context.Context) ([]models.AccountData, error)
	GetAllContracts(ctx context.Context) ([]models.ContractData, error)

	SetCallback(cb Callback)
	SubscribeTopic(prefix string)

	Start(reqAddress, subAddress string) error
	Stop() error

	Ping(ctx context.Context) error
}
