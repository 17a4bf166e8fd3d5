package launchpadd

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/native/ido"
)

type createIDORequest struct {
	SaleToken    Address `json:"saleToken"`
	SaleAmount   Amount  `json:"saleAmount"`
	PaymentToken Address `json:"paymentToken"`
	TargetAmount Amount  `json:"targetAmount"`
}

func (s *Server) handleCreateIDO(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req createIDORequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var index uint64
	err = s.app.Update(func(m *Modules) error {
		var err error
		index, err = m.Registry.CreateIDO(caller, req.SaleToken.Address, req.SaleAmount.Value(), req.PaymentToken.Address, req.TargetAmount.Value())
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"index":   index,
		"custody": formatAddress(ido.CustodyAddress(index)),
	})
}

func (s *Server) handleListIDOs(w http.ResponseWriter, r *http.Request) {
	var out []offeringView
	err := s.app.View(func(m *Modules) error {
		count, err := m.Registry.Count()
		if err != nil {
			return err
		}
		out = make([]offeringView, 0, count)
		for i := uint64(0); i < count; i++ {
			o, err := m.Offerings.Get(i)
			if err != nil {
				return err
			}
			phase, err := m.Offerings.Phase(i)
			if err != nil {
				return err
			}
			out = append(out, newOfferingView(o, phase))
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(out), "offerings": out})
}

func (s *Server) handleGetIDO(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var view offeringView
	err = s.app.View(func(m *Modules) error {
		o, err := m.Registry.GetIDO(index)
		if err != nil {
			return err
		}
		phase, err := m.Offerings.Phase(index)
		if err != nil {
			return err
		}
		view = newOfferingView(o, phase)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offering": view, "now": s.app.NowTime()})
}

func (s *Server) handleListFunders(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var funders []string
	err = s.app.View(func(m *Modules) error {
		addrs, err := m.Offerings.Funders(index)
		if err != nil {
			return err
		}
		funders = make([]string, 0, len(addrs))
		for _, addr := range addrs {
			funders = append(funders, formatAddress(addr))
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offering": index, "funders": funders})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	addr, err := pathAddress(r, "address")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var view accountView
	err = s.app.View(func(m *Modules) error {
		acct, err := m.Offerings.Account(index, addr)
		if err != nil {
			return err
		}
		alloc, err := m.Offerings.Allocation(index, addr)
		if err != nil {
			return err
		}
		claimable, err := m.Offerings.Claimable(index, addr)
		if err != nil {
			return err
		}
		remaining, err := m.Offerings.Cap(index, addr)
		if err != nil {
			return err
		}
		view = accountView{
			Offering:   index,
			Address:    formatAddress(addr),
			Whitelist:  formatAmount(acct.Whitelist),
			Funded:     formatAmount(acct.Funded),
			Claimed:    formatAmount(acct.Claimed),
			Refunded:   acct.Refunded,
			Allocation: formatAmount(alloc),
			Claimable:  formatAmount(claimable),
			Cap:        formatAmount(remaining),
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// configRequest carries a partial configuration. Present fields are applied
// setter by setter inside one unit.
type configRequest struct {
	StartTime        *uint64   `json:"startTime"`
	EndTime          *uint64   `json:"endTime"`
	ClaimTime        *uint64   `json:"claimTime"`
	Vest             *vestView `json:"vest"`
	BaseAmount       *Amount   `json:"baseAmount"`
	MaxAmountPerUser *Amount   `json:"maxAmountPerUser"`
	SaleAmount       *Amount   `json:"saleAmount"`
	TargetAmount     *Amount   `json:"targetAmount"`
}

func (c configRequest) empty() bool {
	return c.StartTime == nil && c.EndTime == nil && c.ClaimTime == nil && c.Vest == nil &&
		c.BaseAmount == nil && c.MaxAmountPerUser == nil && c.SaleAmount == nil && c.TargetAmount == nil
}

func applyConfig(m *Modules, caller common.Address, index uint64, req configRequest) error {
	current, err := m.Offerings.Get(index)
	if err != nil {
		return err
	}
	engine := m.Offerings

	var timeline []func() error
	if req.StartTime != nil {
		timeline = append(timeline, func() error { return engine.SetStartTime(caller, index, *req.StartTime) })
	}
	if req.EndTime != nil {
		timeline = append(timeline, func() error { return engine.SetEndTime(caller, index, *req.EndTime) })
	}
	if req.ClaimTime != nil {
		timeline = append(timeline, func() error { return engine.SetClaimTime(caller, index, *req.ClaimTime) })
	}
	if req.Vest != nil {
		timeline = append(timeline, func() error { return engine.SetVestInfo(caller, index, req.Vest.info()) })
	}
	// Each setter checks its neighbours, so a schedule moved later is
	// applied from the cliff backwards.
	if req.StartTime != nil && *req.StartTime > current.StartTime {
		for i, j := 0, len(timeline)-1; i < j; i, j = i+1, j-1 {
			timeline[i], timeline[j] = timeline[j], timeline[i]
		}
	}
	for _, step := range timeline {
		if err := step(); err != nil {
			return err
		}
	}

	if req.BaseAmount != nil {
		if err := engine.SetBaseAmount(caller, index, req.BaseAmount.Value()); err != nil {
			return err
		}
	}
	if req.MaxAmountPerUser != nil {
		if err := engine.SetMaxAmountPerUser(caller, index, req.MaxAmountPerUser.Value()); err != nil {
			return err
		}
	}
	if req.SaleAmount != nil || req.TargetAmount != nil {
		sale := current.SaleAmount
		if req.SaleAmount != nil {
			sale = req.SaleAmount.Value()
		}
		target := current.TargetAmount
		if req.TargetAmount != nil {
			target = req.TargetAmount.Value()
		}
		if err := engine.SetSaleInfo(caller, index, sale, target); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req configRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.empty() {
		s.writeError(w, r, badRequest("no configuration fields supplied"))
		return
	}
	var view offeringView
	err = s.app.Update(func(m *Modules) error {
		if err := applyConfig(m, caller, index, req); err != nil {
			return err
		}
		o, err := m.Offerings.Get(index)
		if err != nil {
			return err
		}
		phase, err := m.Offerings.Phase(index)
		if err != nil {
			return err
		}
		view = newOfferingView(o, phase)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type whitelistEntry struct {
	Address Address `json:"address"`
	Amount  Amount  `json:"amount"`
}

type whitelistRequest struct {
	Entries []whitelistEntry `json:"entries"`
}

func (s *Server) handleWhitelist(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req whitelistRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Entries) == 0 {
		s.writeError(w, r, badRequest("entries required"))
		return
	}
	err = s.app.Update(func(m *Modules) error {
		if len(req.Entries) == 1 {
			return m.Offerings.SetWhitelistAmount(caller, index, req.Entries[0].Address.Address, req.Entries[0].Amount.Value())
		}
		addrs := make([]common.Address, 0, len(req.Entries))
		amounts := make([]*big.Int, 0, len(req.Entries))
		for _, entry := range req.Entries {
			addrs = append(addrs, entry.Address.Address)
			amounts = append(amounts, entry.Amount.Value())
		}
		return m.Offerings.SetWhitelistAmounts(caller, index, addrs, amounts)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offering": index, "updated": len(req.Entries)})
}

type amountRequest struct {
	Amount Amount `json:"amount"`
}

func (s *Server) handleFund(w http.ResponseWriter, r *http.Request) {
	s.accountAction(w, r, func(m *Modules, caller common.Address, index uint64, amount *big.Int) (*big.Int, error) {
		if err := m.Offerings.Fund(index, caller, amount); err != nil {
			return nil, err
		}
		return m.Offerings.Funded(index, caller)
	}, "funded", true)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	s.accountAction(w, r, func(m *Modules, caller common.Address, index uint64, amount *big.Int) (*big.Int, error) {
		if err := m.Offerings.Claim(index, caller, amount); err != nil {
			return nil, err
		}
		return m.Offerings.Claimed(index, caller)
	}, "claimed", true)
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	s.accountAction(w, r, func(m *Modules, caller common.Address, index uint64, _ *big.Int) (*big.Int, error) {
		return m.Offerings.Refund(index, caller)
	}, "refunded", false)
}

func (s *Server) accountAction(w http.ResponseWriter, r *http.Request, act func(m *Modules, caller common.Address, index uint64, amount *big.Int) (*big.Int, error), field string, needsAmount bool) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var amount *big.Int
	if needsAmount {
		var req amountRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		amount = req.Amount.Value()
	}
	var total *big.Int
	err = s.app.Update(func(m *Modules) error {
		var err error
		total, err = act(m, caller, index, amount)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"offering": index,
		"address":  formatAddress(caller),
		field:      formatAmount(total),
	})
}

type finalizeRequest struct {
	Payout Address `json:"payout"`
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req finalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var settlement *ido.Settlement
	err = s.app.Update(func(m *Modules) error {
		var err error
		settlement, err = m.Registry.FinalizeIDO(caller, index, req.Payout.Address)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettlementView(settlement))
}

func (s *Server) handleEmergencyRefund(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = s.app.Update(func(m *Modules) error {
		return m.Registry.EmergencyRefund(caller, index)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offering": index, "state": ido.StateFailure.String()})
}

func (s *Server) handleReclaim(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var amount *big.Int
	err = s.app.Update(func(m *Modules) error {
		var err error
		amount, err = m.Registry.ReclaimSaleTokens(caller, index)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offering": index, "amount": formatAmount(amount)})
}
