package launchpadd

import (
	"launchpad/native/factory"
	"launchpad/native/ido"
	"launchpad/native/point"
	"launchpad/native/tier"
	"launchpad/native/token"
)

type vestView struct {
	TGEPercent  uint64 `json:"tgePercent"`
	CliffTime   uint64 `json:"cliffTime"`
	Duration    uint64 `json:"duration"`
	Periodicity uint64 `json:"periodicity"`
}

func (v vestView) info() ido.VestInfo {
	return ido.VestInfo{TGEPercent: v.TGEPercent, CliffTime: v.CliffTime, Duration: v.Duration, Periodicity: v.Periodicity}
}

type offeringView struct {
	Index            uint64   `json:"index"`
	Creator          string   `json:"creator"`
	Custody          string   `json:"custody"`
	SaleToken        string   `json:"saleToken"`
	PaymentToken     string   `json:"paymentToken"`
	SaleAmount       string   `json:"saleAmount"`
	TargetAmount     string   `json:"targetAmount"`
	StartTime        uint64   `json:"startTime"`
	EndTime          uint64   `json:"endTime"`
	ClaimTime        uint64   `json:"claimTime"`
	Vest             vestView `json:"vest"`
	BaseAmount       string   `json:"baseAmount"`
	MaxAmountPerUser string   `json:"maxAmountPerUser"`
	TotalFunded      string   `json:"totalFunded"`
	State            string   `json:"state"`
	Phase            string   `json:"phase"`
	FeePercent       uint64   `json:"feePercent,omitempty"`
	FeeRecipient     string   `json:"feeRecipient,omitempty"`
	PayoutAddress    string   `json:"payoutAddress,omitempty"`
	FinalizedAt      uint64   `json:"finalizedAt,omitempty"`
	SaleReclaimed    bool     `json:"saleReclaimed"`
	CreatedAt        uint64   `json:"createdAt"`
}

func newOfferingView(o *ido.Offering, phase ido.Phase) offeringView {
	return offeringView{
		Index:            o.Index,
		Creator:          formatAddress(o.Creator),
		Custody:          formatAddress(o.Custody),
		SaleToken:        formatAddress(o.SaleToken),
		PaymentToken:     formatAddress(o.PaymentToken),
		SaleAmount:       formatAmount(o.SaleAmount),
		TargetAmount:     formatAmount(o.TargetAmount),
		StartTime:        o.StartTime,
		EndTime:          o.EndTime,
		ClaimTime:        o.ClaimTime,
		Vest:             vestView{TGEPercent: o.Vest.TGEPercent, CliffTime: o.Vest.CliffTime, Duration: o.Vest.Duration, Periodicity: o.Vest.Periodicity},
		BaseAmount:       formatAmount(o.BaseAmount),
		MaxAmountPerUser: formatAmount(o.MaxAmountPerUser),
		TotalFunded:      formatAmount(o.TotalFunded),
		State:            o.State.String(),
		Phase:            string(phase),
		FeePercent:       o.FeePercent,
		FeeRecipient:     formatAddress(o.FeeRecipient),
		PayoutAddress:    formatAddress(o.PayoutAddress),
		FinalizedAt:      o.FinalizedAt,
		SaleReclaimed:    o.SaleReclaimed,
		CreatedAt:        o.CreatedAt,
	}
}

type accountView struct {
	Offering   uint64 `json:"offering"`
	Address    string `json:"address"`
	Whitelist  string `json:"whitelist"`
	Funded     string `json:"funded"`
	Claimed    string `json:"claimed"`
	Refunded   bool   `json:"refunded"`
	Allocation string `json:"allocation"`
	Claimable  string `json:"claimable"`
	Cap        string `json:"cap"`
}

type settlementView struct {
	Offering      uint64 `json:"offering"`
	State         string `json:"state"`
	TotalFunded   string `json:"totalFunded"`
	FeePercent    uint64 `json:"feePercent"`
	Fee           string `json:"fee"`
	FeeRecipient  string `json:"feeRecipient"`
	Payout        string `json:"payout"`
	PayoutAddress string `json:"payoutAddress"`
}

func newSettlementView(s *ido.Settlement) settlementView {
	return settlementView{
		Offering:      s.Index,
		State:         s.State.String(),
		TotalFunded:   formatAmount(s.TotalFunded),
		FeePercent:    s.FeePercent,
		Fee:           formatAmount(s.Fee),
		FeeRecipient:  formatAddress(s.FeeRecipient),
		Payout:        formatAmount(s.Payout),
		PayoutAddress: formatAddress(s.PayoutAddress),
	}
}

type pointEntryView struct {
	Index  uint64 `json:"index"`
	Token  string `json:"token"`
	Weight string `json:"weight"`
	Active bool   `json:"active"`
}

func newPointEntryView(index uint64, e *point.Entry) pointEntryView {
	return pointEntryView{Index: index, Token: formatAddress(e.Token), Weight: formatAmount(e.Weight), Active: e.Active}
}

type tierView struct {
	Index      uint64 `json:"index"`
	Name       string `json:"name"`
	Threshold  string `json:"threshold"`
	Multiplier uint64 `json:"multiplier"`
	Active     bool   `json:"active"`
}

func newTierView(index uint64, t *tier.Tier) tierView {
	return tierView{Index: index, Name: t.Name, Threshold: formatAmount(t.Threshold), Multiplier: t.Multiplier, Active: t.Active}
}

type feeView struct {
	Percent   uint64 `json:"percent"`
	Recipient string `json:"recipient"`
}

func newFeeView(cfg *factory.FeeConfig) feeView {
	return feeView{Percent: cfg.Percent, Recipient: formatAddress(cfg.Recipient)}
}

type tokenView struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	Owner    string `json:"owner"`
	Supply   string `json:"supply"`
}

func newTokenView(m *token.Metadata) tokenView {
	return tokenView{
		Address:  formatAddress(m.Address),
		Symbol:   m.Symbol,
		Name:     m.Name,
		Decimals: m.Decimals,
		Owner:    formatAddress(m.Owner),
		Supply:   formatAmount(m.Supply),
	}
}

type eventView struct {
	ID         string            `json:"id"`
	Seq        uint64            `json:"seq"`
	Type       string            `json:"type"`
	Offering   *uint64           `json:"offering,omitempty"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  string            `json:"createdAt"`
}

func newEventView(rec EventRecord) (eventView, error) {
	attrs, err := rec.Attrs()
	if err != nil {
		return eventView{}, err
	}
	return eventView{
		ID:         rec.ID.String(),
		Seq:        rec.Seq,
		Type:       rec.Type,
		Offering:   rec.Offering,
		Attributes: attrs,
		CreatedAt:  rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}, nil
}
