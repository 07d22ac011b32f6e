package models

import (
	"reflect"
	"testing"
	"time"
)

func TestFlatten_EnumsAndTimestamps(t *testing.T) {
	dt := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	order := OrderData{
		GatewayName: "SMEX",
		Symbol:      "BTCUSDT",
		Exchange:    "SMEX",
		OrderID:     "42",
		Type:        OrderTypeLimit,
		Direction:   DirectionLong,
		Offset:      OffsetOpen,
		Price:       101.5,
		Volume:      2,
		Traded:      1,
		Status:      StatusPartTraded,
		Datetime:    dt,
		Reference:   "web",
	}

	got := order.Flatten()

	if got["direction"] != "long" {
		t.Errorf("direction = %v (%T), want scalar \"long\"", got["direction"], got["direction"])
	}
	if got["status"] != "partTraded" {
		t.Errorf("status = %v, want %q", got["status"], "partTraded")
	}
	if got["datetime"] != "2024-03-15 09:30:00" {
		t.Errorf("datetime = %v, want rendered text", got["datetime"])
	}
	if got["vt_symbol"] != "BTCUSDT.SMEX" {
		t.Errorf("vt_symbol = %v, want %q", got["vt_symbol"], "BTCUSDT.SMEX")
	}
	if got["vt_orderid"] != "SMEX.42" {
		t.Errorf("vt_orderid = %v, want %q", got["vt_orderid"], "SMEX.42")
	}
}

func TestFlatten_ZeroTime(t *testing.T) {
	tick := TickData{Symbol: "BTCUSDT", Exchange: "SMEX"}
	if got := tick.Flatten()["datetime"]; got != "" {
		t.Errorf("datetime = %v, want empty for zero time", got)
	}
}

func TestFlatten_Account(t *testing.T) {
	account := AccountData{GatewayName: "SMEX", AccountID: "a1", Balance: 100, Frozen: 25}
	got := account.Flatten()
	if got["available"] != 75.0 {
		t.Errorf("available = %v, want 75", got["available"])
	}
	if got["vt_accountid"] != "SMEX.a1" {
		t.Errorf("vt_accountid = %v, want %q", got["vt_accountid"], "SMEX.a1")
	}
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		want    Record
		wantErr bool
	}{
		{
			name:    "tick event",
			topic:   "eTick.BTCUSDT.SMEX",
			payload: `{"symbol":"BTCUSDT","exchange":"SMEX","last_price":100.5}`,
			want:    TickData{Symbol: "BTCUSDT", Exchange: "SMEX", LastPrice: 100.5},
		},
		{
			name:    "order event",
			topic:   "eOrder.SMEX.42",
			payload: `{"gateway_name":"SMEX","orderid":"42","status":"allTraded"}`,
			want:    OrderData{GatewayName: "SMEX", OrderID: "42", Status: StatusAllTraded},
		},
		{
			name:    "trade event",
			topic:   "eTrade.SMEX.7",
			payload: `{"tradeid":"7","price":99.5}`,
			want:    TradeData{TradeID: "7", Price: 99.5},
		},
		{
			name:    "position event",
			topic:   "ePosition.",
			payload: `{"symbol":"BTCUSDT","volume":3}`,
			want:    PositionData{Symbol: "BTCUSDT", Volume: 3},
		},
		{
			name:    "account event",
			topic:   "eAccount.a1",
			payload: `{"accountid":"a1","balance":10}`,
			want:    AccountData{AccountID: "a1", Balance: 10},
		},
		{
			name:    "unknown topic decodes raw",
			topic:   "eLog",
			payload: `{"msg":"hello"}`,
			want:    RawRecord{"msg": "hello"},
		},
		{
			name:    "broken payload",
			topic:   "eTick.BTCUSDT.SMEX",
			payload: `{"symbol":`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent(tt.topic, []byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeEvent() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
