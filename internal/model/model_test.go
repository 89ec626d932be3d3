package model

import (
	"encoding/json"
	"testing"

	"main/internal/model/enum"
)

func TestPortfolioAmountDefaultsToZero(t *testing.T) {
	p := NewPortfolio(100)
	if got := p.Amount("Divinator"); got != 0 {
		t.Fatalf("amount of unknown company: got %d want 0", got)
	}
}

func TestPortfolioCopyIsDeep(t *testing.T) {
	p := NewPortfolio(100)
	p.Shares["Divinator"] = 5

	c := p.Copy()
	c.Shares["Divinator"] = 99
	c.Cash = 0

	if p.Shares["Divinator"] != 5 || p.Cash != 100 {
		t.Fatalf("copy leaked back into original: %+v", p)
	}
}

func TestOperationKindWireNames(t *testing.T) {
	data, err := json.Marshal(enum.OperationBuy)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"BUY"` {
		t.Fatalf("buy wire name: got %s", data)
	}

	var kind enum.OperationKind
	if err := json.Unmarshal([]byte(`"SELL"`), &kind); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if kind != enum.OperationSell {
		t.Fatalf("sell decoded as %v", kind)
	}

	if err := json.Unmarshal([]byte(`"HOLD"`), &kind); err == nil {
		t.Fatal("unknown kind should fail to decode")
	}
}

func TestOperationKindAvailability(t *testing.T) {
	if !enum.OperationBuy.IsAvailable() || !enum.OperationSell.IsAvailable() {
		t.Fatal("buy/sell should be available")
	}
	if enum.OperationKind(0).IsAvailable() {
		t.Fatal("zero kind should not be available")
	}
}
