package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/quantbridge/webtrader/internal/models"
)

const (
	requestQueue = "webtrader:rpc"
	replyPrefix  = "webtrader:rpc:"
)

var ErrNotStarted = errors.New("rpc client not started")

type request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// RPCClient reaches the engine over Redis: requests go through a list-based
// request/reply exchange on the request address, events arrive via pattern
// pub/sub on the subscription address.
type RPCClient struct {
	mux         sync.RWMutex
	req         *redis.Client
	sub         *redis.Client
	callback    Callback
	topicPrefix string
	timeout     time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewRPCClient(timeout time.Duration) *RPCClient {
	return &RPCClient{
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

func (c *RPCClient) SetCallback(cb Callback) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.callback = cb
}

// SubscribeTopic selects which topics flow to the callback. An empty prefix
// subscribes to the full namespace. Must be called before Start.
func (c *RPCClient) SubscribeTopic(prefix string) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.topicPrefix = prefix
}

func (c *RPCClient) Start(reqAddress, subAddress string) error {
	var err error
	c.startOnce.Do(func() {
		var reqOpts, subOpts *redis.Options
		reqOpts, err = redis.ParseURL(reqAddress)
		if err != nil {
			err = fmt.Errorf("bad request address: %w", err)
			return
		}
		subOpts, err = redis.ParseURL(subAddress)
		if err != nil {
			err = fmt.Errorf("bad subscription address: %w", err)
			return
		}
		c.mux.Lock()
		c.req = redis.NewClient(reqOpts)
		c.sub = redis.NewClient(subOpts)
		c.mux.Unlock()

		ctx, cancel := context.WithCancel(context.Background())

		pingCtx, pingCancel := context.WithTimeout(ctx, c.timeout)
		defer pingCancel()
		if err = c.req.Ping(pingCtx).Err(); err != nil {
			cancel()
			err = fmt.Errorf("request connection: %w", err)
			return
		}

		c.cancel = cancel
		pubsub := c.sub.PSubscribe(ctx, c.topicPrefix+"*")
		go c.receiveLoop(ctx, pubsub)
	})
	return err
}

func (c *RPCClient) Stop() error {
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
			<-c.done
		}
		if c.req != nil {
			c.req.Close()
		}
		if c.sub != nil {
			c.sub.Close()
		}
	})
	return nil
}

func (c *RPCClient) Ping(ctx context.Context) error {
	c.mux.RLock()
	req := c.req
	c.mux.RUnlock()
	if req == nil {
		return ErrNotStarted
	}
	return req.Ping(ctx).Err()
}

// receiveLoop is the adapter's event delivery thread: it decodes each
// published message and hands it to the callback, one at a time, in the
// order Redis delivered them.
func (c *RPCClient) receiveLoop(ctx context.Context, pubsub *redis.PubSub) {
	log := log.WithField("prefix", "RPCClient.receiveLoop")
	defer close(c.done)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			record, err := models.DecodeEvent(msg.Channel, []byte(msg.Payload))
			if err != nil {
				log.Errorf("failed to decode event on topic %q: %v", msg.Channel, err)
				continue
			}
			c.mux.RLock()
			cb := c.callback
			c.mux.RUnlock()
			if cb != nil {
				cb(msg.Channel, record)
			}
		}
	}
}

// call performs one request/reply round trip: the envelope is pushed onto
// the shared request list and the reply popped from a per-request key.
func (c *RPCClient) call(ctx context.Context, method string, params any, result any) error {
	c.mux.RLock()
	client := c.req
	c.mux.RUnlock()
	if client == nil {
		return ErrNotStarted
	}

	id := uuid.NewString()
	payload, err := sonic.Marshal(request{ID: id, Method: method, Params: params})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := client.LPush(ctx, requestQueue, payload).Err(); err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	reply, err := client.BRPop(ctx, c.timeout, replyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}

	var res response
	if err := sonic.Unmarshal([]byte(reply[1]), &res); err != nil {
		return fmt.Errorf("rpc %s: bad reply: %w", method, err)
	}
	if res.Error != "" {
		return fmt.Errorf("rpc %s: %s", method, res.Error)
	}
	if result == nil || len(res.Result) == 0 || string(res.Result) == "null" {
		return nil
	}
	return sonic.Unmarshal(res.Result, result)
}

func (c *RPCClient) Connect(ctx context.Context, settings map[string]any, gatewayName string) error {
	params := map[string]any{"setting": settings, "gateway_name": gatewayName}
	return c.call(ctx, "connect", params, nil)
}

func (c *RPCClient) Subscribe(ctx context.Context, req models.SubscribeRequest, gatewayName string) error {
	params := map[string]any{"req": req, "gateway_name": gatewayName}
	return c.call(ctx, "subscribe", params, nil)
}

func (c *RPCClient) SendOrder(ctx context.Context, req models.OrderRequest, gatewayName string) (string, error) {
	params := map[string]any{"req": req, "gateway_name": gatewayName}
	var vtOrderID string
	if err := c.call(ctx, "send_order", params, &vtOrderID); err != nil {
		return "", err
	}
	return vtOrderID, nil
}

func (c *RPCClient) CancelOrder(ctx context.Context, req models.CancelRequest, gatewayName string) error {
	params := map[string]any{"req": req, "gateway_name": gatewayName}
	return c.call(ctx, "cancel_order", params, nil)
}

func (c *RPCClient) GetContract(ctx context.Context, vtSymbol string) (*models.ContractData, error) {
	var contract *models.ContractData
	params := map[string]any{"vt_symbol": vtSymbol}
	if err := c.call(ctx, "get_contract", params, &contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (c *RPCClient) GetOrder(ctx context.Context, vtOrderID string) (*models.OrderData, error) {
	var order *models.OrderData
	params := map[string]any{"vt_orderid": vtOrderID}
	if err := c.call(ctx, "get_order", params, &order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *RPCClient) GetAllTicks(ctx context.Context) ([]models.TickData, error) {
	var ticks []models.TickData
	if err := c.call(ctx, "get_all_ticks", nil, &ticks); err != nil {
		return nil, err
	}
	return ticks, nil
}

func (c *RPCClient) GetAllOrders(ctx context.Context) ([]models.OrderData, error) {
	var orders []models.OrderData
	if err := c.call(ctx, "get_all_orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *RPCClient) GetAllTrades(ctx context.Context) ([]models.TradeData, error) {
	var trades []models.TradeData
	if err := c.call(ctx, "get_all_trades", nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (c *RPCClient) GetAllPositions(ctx context.Context) ([]models.PositionData, error) {
	var positions []models.PositionData
	if err := c.call(ctx, "get_all_positions", nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (c *RPCClient) GetAllAccounts(ctx context.Context) ([]models.AccountData, error) {
	var accounts []models.AccountData
	if err := c.call(ctx, "get_all_accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *RPCClient) GetAllContracts(ctx context.Context) ([]models.ContractData, error) {
	var contracts []models.ContractData
	if err := c.call(ctx, "get_all_contracts", nil, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}
