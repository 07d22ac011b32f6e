package models

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Event topics published by the backend engine. Trailing dots mark prefix
// topics that carry the record identity after the dot (e.g. "eTick.BTC.SMEX").
const (
	TopicTick     = "eTick."
	TopicOrder    = "eOrder."
	TopicTrade    = "eTrade."
	TopicPosition = "ePosition."
	TopicAccount  = "eAccount."
	TopicContract = "eContract."
)

// Record is any engine object that can be rendered as a flat field mapping
// for the wire: enums as their scalar value, timestamps as text.
type Record interface {
	Flatten() map[string]any
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateTime)
}

func (t TickData) Flatten() map[string]any {
	return map[string]any{
		"gateway_name":  t.GatewayName,
		"symbol":        t.Symbol,
		"exchange":      string(t.Exchange),
		"datetime":      formatTime(t.Datetime),
		"name":          t.Name,
		"volume":        t.Volume,
		"turnover":      t.Turnover,
		"open_interest": t.OpenInterest,
		"last_price":    t.LastPrice,
		"limit_up":      t.LimitUp,
		"limit_down":    t.LimitDown,
		"open_price":    t.OpenPrice,
		"high_price":    t.HighPrice,
		"low_price":     t.LowPrice,
		"pre_close":     t.PreClose,
		"bid_price_1":   t.BidPrice1,
		"ask_price_1":   t.AskPrice1,
		"bid_volume_1":  t.BidVolume1,
		"ask_volume_1":  t.AskVolume1,
		"vt_symbol":     t.Symbol + "." + string(t.Exchange),
	}
}

func (o OrderData) Flatten() map[string]any {
	return map[string]any{
		"gateway_name": o.GatewayName,
		"symbol":       o.Symbol,
		"exchange":     string(o.Exchange),
		"orderid":      o.OrderID,
		"type":         string(o.Type),
		"direction":    string(o.Direction),
		"offset":       string(o.Offset),
		"price":        o.Price,
		"volume":       o.Volume,
		"traded":       o.Traded,
		"status":       string(o.Status),
		"datetime":     formatTime(o.Datetime),
		"reference":    o.Reference,
		"vt_symbol":    o.Symbol + "." + string(o.Exchange),
		"vt_orderid":   o.VTOrderID(),
	}
}

func (t TradeData) Flatten() map[string]any {
	return map[string]any{
		"gateway_name": t.GatewayName,
		"symbol":       t.Symbol,
		"exchange":     string(t.Exchange),
		"orderid":      t.OrderID,
		"tradeid":      t.TradeID,
		"direction":    string(t.Direction),
		"offset":       string(t.Offset),
		"price":        t.Price,
		"volume":       t.Volume,
		"datetime":     formatTime(t.Datetime),
		"vt_symbol":    t.Symbol + "." + string(t.Exchange),
		"vt_orderid":   t.GatewayName + "." + t.OrderID,
		"vt_tradeid":   t.GatewayName + "." + t.TradeID,
	}
}

func (p PositionData) Flatten() map[string]any {
	return map[string]any{
		"gateway_name":  p.GatewayName,
		"symbol":        p.Symbol,
		"exchange":      string(p.Exchange),
		"direction":     string(p.Direction),
		"volume":        p.Volume,
		"frozen":        p.Frozen,
		"price":         p.Price,
		"pnl":           p.Pnl,
		"yd_volume":     p.YdVolume,
		"vt_symbol":     p.Symbol + "." + string(p.Exchange),
		"vt_positionid": p.Symbol + "." + string(p.Exchange) + "." + string(p.Direction),
	}
}

func (a AccountData) Flatten() map[string]any {
	return map[string]any{
		"gateway_name": a.GatewayName,
		"accountid":    a.AccountID,
		"balance":      a.Balance,
		"frozen":       a.Frozen,
		"available":    a.Available(),
		"vt_accountid": a.GatewayName + "." + a.AccountID,
	}
}

func (c ContractData) Flatten() map[string]any {
	return map[string]any{
		"gateway_name": c.GatewayName,
		"symbol":       c.Symbol,
		"exchange":     string(c.Exchange),
		"name":         c.Name,
		"product":      c.Product,
		"size":         c.Size,
		"pricetick":    c.PriceTick,
		"min_volume":   c.MinVolume,
		"vt_symbol":    c.Symbol + "." + string(c.Exchange),
	}
}

// RawRecord carries payloads from topics without a registered decoder.
type RawRecord map[string]any

func (r RawRecord) Flatten() map[string]any {
	return map[string]any(r)
}

// DecodeEvent turns a published (topic, payload) pair into a typed record.
// Topics outside the known set decode into a RawRecord so the full topic
// namespace still flows to clients.
func DecodeEvent(topic string, payload []byte) (Record, error) {
	switch {
	case strings.HasPrefix(topic, TopicTick):
		var tick TickData
		if err := sonic.Unmarshal(payload, &tick); err != nil {
			return nil, err
		}
		return tick, nil
	case strings.HasPrefix(topic, TopicOrder):
		var order OrderData
		if err := sonic.Unmarshal(payload, &order); err != nil {
			return nil, err
		}
		return order, nil
	case strings.HasPrefix(topic, TopicTrade):
		var trade TradeData
		if err := sonic.Unmarshal(payload, &trade); err != nil {
			return nil, err
		}
		return trade, nil
	case strings.HasPrefix(topic, TopicPosition):
		var position PositionData
		if err := sonic.Unmarshal(payload, &position); err != nil {
			return nil, err
		}
		return position, nil
	case strings.HasPrefix(topic, TopicAccount):
		var account AccountData
		if err := sonic.Unmarshal(payload, &account); err != nil {
			return nil, err
		}
		return account, nil
	case strings.HasPrefix(topic, TopicContract):
		var contract ContractData
		if err := sonic.Unmarshal(payload, &contract); err != nil {
			return nil, err
		}
		return contract, nil
	default:
		var raw RawRecord
		if err := sonic.Unmarshal(payload, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
}
