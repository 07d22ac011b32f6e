package models

import (
	"fmt"
	"time"
)

// Enumerated values carried on the wire as plain scalars.
type (
	Exchange  string
	Direction string
	OrderType string
	Offset    string
	Status    string
)

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
	DirectionNet   Direction = "net"

	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
	OrderTypeStop   OrderType = "stop"
	OrderTypeFAK    OrderType = "fak"
	OrderTypeFOK    OrderType = "fok"

	OffsetNone           Offset = "none"
	OffsetOpen           Offset = "open"
	OffsetClose          Offset = "close"
	OffsetCloseToday     Offset = "closetoday"
	OffsetCloseYesterday Offset = "closeyesterday"

	StatusSubmitting Status = "submitting"
	StatusNotTraded  Status = "notTraded"
	StatusPartTraded Status = "partTraded"
	StatusAllTraded  Status = "allTraded"
	StatusCancelled  Status = "cancelled"
	StatusRejected   Status = "rejected"
)

type TickData struct {
	GatewayName  string    `json:"gateway_name"`
	Symbol       string    `json:"symbol"`
	Exchange     Exchange  `json:"exchange"`
	Datetime     time.Time `json:"datetime"`
	Name         string    `json:"name"`
	Volume       float64   `json:"volume"`
	Turnover     float64   `json:"turnover"`
	OpenInterest float64   `json:"open_interest"`
	LastPrice    float64   `json:"last_price"`
	LimitUp      float64   `json:"limit_up"`
	LimitDown    float64   `json:"limit_down"`
	OpenPrice    float64   `json:"open_price"`
	HighPrice    float64   `json:"high_price"`
	LowPrice     float64   `json:"low_price"`
	PreClose     float64   `json:"pre_close"`
	BidPrice1    float64   `json:"bid_price_1"`
	AskPrice1    float64   `json:"ask_price_1"`
	BidVolume1   float64   `json:"bid_volume_1"`
	AskVolume1   float64   `json:"ask_volume_1"`
}

type OrderData struct {
	GatewayName string    `json:"gateway_name"`
	Symbol      string    `json:"symbol"`
	Exchange    Exchange  `json:"exchange"`
	OrderID     string    `json:"orderid"`
	Type        OrderType `json:"type"`
	Direction   Direction `json:"direction"`
	Offset      Offset    `json:"offset"`
	Price       float64   `json:"price"`
	Volume      float64   `json:"volume"`
	Traded      float64   `json:"traded"`
	Status      Status    `json:"status"`
	Datetime    time.Time `json:"datetime"`
	Reference   string    `json:"reference"`
}

func (o OrderData) VTOrderID() string {
	return fmt.Sprintf("%s.%s", o.GatewayName, o.OrderID)
}

// CreateCancelRequest builds the cancel request addressed at this order.
func (o OrderData) CreateCancelRequest() CancelRequest {
	return CancelRequest{
		OrderID:  o.OrderID,
		Symbol:   o.Symbol,
		Exchange: o.Exchange,
	}
}

type TradeData struct {
	GatewayName string    `json:"gateway_name"`
	Symbol      string    `json:"symbol"`
	Exchange    Exchange  `json:"exchange"`
	OrderID     string    `json:"orderid"`
	TradeID     string    `json:"tradeid"`
	Direction   Direction `json:"direction"`
	Offset      Offset    `json:"offset"`
	Price       float64   `json:"price"`
	Volume      float64   `json:"volume"`
	Datetime    time.Time `json:"datetime"`
}

type PositionData struct {
	GatewayName string    `json:"gateway_name"`
	Symbol      string    `json:"symbol"`
	Exchange    Exchange  `json:"exchange"`
	Direction   Direction `json:"direction"`
	Volume      float64   `json:"volume"`
	Frozen      float64   `json:"frozen"`
	Price       float64   `json:"price"`
	Pnl         float64   `json:"pnl"`
	YdVolume    float64   `json:"yd_volume"`
}

type AccountData struct {
	GatewayName string  `json:"gateway_name"`
	AccountID   string  `json:"accountid"`
	Balance     float64 `json:"balance"`
	Frozen      float64 `json:"frozen"`
}

func (a AccountData) Available() float64 {
	return a.Balance - a.Frozen
}

type ContractData struct {
	GatewayName string   `json:"gateway_name"`
	Symbol      string   `json:"symbol"`
	Exchange    Exchange `json:"exchange"`
	Name        string   `json:"name"`
	Product     string   `json:"product"`
	Size        float64  `json:"size"`
	PriceTick   float64  `json:"pricetick"`
	MinVolume   float64  `json:"min_volume"`
}

// OrderRequest is the inbound order placement body. Price, offset and
// reference are optional and default to 0, "none" and "" respectively.
type OrderRequest struct {
	Symbol    string    `json:"symbol"`
	Exchange  Exchange  `json:"exchange"`
	Direction Direction `json:"direction"`
	Type      OrderType `json:"type"`
	Volume    float64   `json:"volume"`
	Price     float64   `json:"price"`
	Offset    Offset    `json:"offset"`
	Reference string    `json:"reference"`
}

// Validate checks the required fields and applies defaults.
func (r *OrderRequest) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("field \"symbol\" is required")
	}
	if r.Exchange == "" {
		return fmt.Errorf("field \"exchange\" is required")
	}
	if r.Direction == "" {
		return fmt.Errorf("field \"direction\" is required")
	}
	if r.Type == "" {
		return fmt.Errorf("field \"type\" is required")
	}
	if r.Volume <= 0 {
		return fmt.Errorf("field \"volume\" must be positive")
	}
	if r.Offset == "" {
		r.Offset = OffsetNone
	}
	return nil
}

func (r OrderRequest) VTSymbol() string {
	return fmt.Sprintf("%s.%s", r.Symbol, r.Exchange)
}

type CancelRequest struct {
	OrderID  string   `json:"orderid"`
	Symbol   string   `json:"symbol"`
	Exchange Exchange `json:"exchange"`
}

type SubscribeRequest struct {
	Symbol   string   `json:"symbol"`
	Exchange Exchange `json:"exchange"`
}
