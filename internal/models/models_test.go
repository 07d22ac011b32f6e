package models

import (
	"testing"

	"github.com/bytedance/sonic"
)

func TestOrderRequest_Validate(t *testing.T) {
	valid := OrderRequest{
		Symbol:    "BTCUSDT",
		Exchange:  "SMEX",
		Direction: DirectionLong,
		Type:      OrderTypeLimit,
		Volume:    1,
		Price:     100,
	}

	tests := []struct {
		name    string
		mutate  func(r *OrderRequest)
		wantErr bool
	}{
		{
			name:   "valid request",
			mutate: func(r *OrderRequest) {},
		},
		{
			name:    "missing symbol",
			mutate:  func(r *OrderRequest) { r.Symbol = "" },
			wantErr: true,
		},
		{
			name:    "missing exchange",
			mutate:  func(r *OrderRequest) { r.Exchange = "" },
			wantErr: true,
		},
		{
			name:    "missing direction",
			mutate:  func(r *OrderRequest) { r.Direction = "" },
			wantErr: true,
		},
		{
			name:    "missing type",
			mutate:  func(r *OrderRequest) { r.Type = "" },
			wantErr: true,
		},
		{
			name:    "zero volume",
			mutate:  func(r *OrderRequest) { r.Volume = 0 },
			wantErr: true,
		},
		{
			name:    "negative volume",
			mutate:  func(r *OrderRequest) { r.Volume = -2 },
			wantErr: true,
		},
		{
			name:   "zero price is allowed",
			mutate: func(r *OrderRequest) { r.Price = 0 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrderRequest_Defaults(t *testing.T) {
	body := []byte(`{"symbol":"BTCUSDT","exchange":"SMEX","direction":"long","type":"limit","volume":1}`)

	var req OrderRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if req.Price != 0 {
		t.Errorf("Price = %v, want 0", req.Price)
	}
	if req.Offset != OffsetNone {
		t.Errorf("Offset = %q, want %q", req.Offset, OffsetNone)
	}
	if req.Reference != "" {
		t.Errorf("Reference = %q, want empty", req.Reference)
	}
}

func TestOrderRequest_VTSymbol(t *testing.T) {
	req := OrderRequest{Symbol: "AAA", Exchange: "EXCH"}
	if got := req.VTSymbol(); got != "AAA.EXCH" {
		t.Errorf("VTSymbol() = %q, want %q", got, "AAA.EXCH")
	}
}

func TestOrderData_CreateCancelRequest(t *testing.T) {
	order := OrderData{
		GatewayName: "SMEX",
		Symbol:      "BTCUSDT",
		Exchange:    "SMEX",
		OrderID:     "1001",
	}
	cancel := order.CreateCancelRequest()
	if cancel.OrderID != "1001" || cancel.Symbol != "BTCUSDT" || cancel.Exchange != "SMEX" {
		t.Errorf("CreateCancelRequest() = %+v", cancel)
	}
	if got := order.VTOrderID(); got != "SMEX.1001" {
		t.Errorf("VTOrderID() = %q, want %q", got, "SMEX.1001")
	}
}
