package launchpadd

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/native/ido"
)

type pointTokenRequest struct {
	Token  Address `json:"token"`
	Weight Amount  `json:"weight"`
}

func (s *Server) handleListPointTokens(w http.ResponseWriter, r *http.Request) {
	var out []pointEntryView
	err := s.app.View(func(m *Modules) error {
		entries, err := m.Points.Entries()
		if err != nil {
			return err
		}
		out = make([]pointEntryView, 0, len(entries))
		for i, entry := range entries {
			out = append(out, newPointEntryView(uint64(i), entry))
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tokens": out})
}

func (s *Server) handleGetPointToken(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var view pointEntryView
	err = s.app.View(func(m *Modules) error {
		entry, err := m.Points.GetToken(index)
		if err != nil {
			return err
		}
		view = newPointEntryView(index, entry)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetDecimal(w http.ResponseWriter, r *http.Request) {
	var decimal uint64
	err := s.app.View(func(m *Modules) error {
		var err error
		decimal, err = m.Points.Decimal()
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"decimal": decimal})
}

func (s *Server) handleGetPoint(w http.ResponseWriter, r *http.Request) {
	holder, err := pathAddress(r, "address")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var score string
	err = s.app.View(func(m *Modules) error {
		v, err := m.Points.GetPoint(holder)
		if err != nil {
			return err
		}
		score = formatAmount(v)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": formatAddress(holder), "point": score})
}

func (s *Server) handleInsertPointToken(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req pointTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var index uint64
	err = s.app.Update(func(m *Modules) error {
		var err error
		index, err = m.Points.InsertToken(caller, req.Token.Address, req.Weight.Value())
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"index": index})
}

func (s *Server) handleRemovePointToken(w http.ResponseWriter, r *http.Request) {
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
	if err := s.app.Update(func(m *Modules) error { return m.Points.RemoveToken(caller, index) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDecimal(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Decimal *uint64 `json:"decimal"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Decimal == nil {
		s.writeError(w, r, badRequest("decimal required"))
		return
	}
	if err := s.app.Update(func(m *Modules) error { return m.Points.SetDecimal(caller, *req.Decimal) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"decimal": *req.Decimal})
}

type tierRequest struct {
	Name       string `json:"name"`
	Threshold  Amount `json:"threshold"`
	Multiplier uint64 `json:"multiplier"`
}

func (s *Server) handleListTiers(w http.ResponseWriter, r *http.Request) {
	var out []tierView
	err := s.app.View(func(m *Modules) error {
		tiers, err := m.Tiers.Tiers()
		if err != nil {
			return err
		}
		out = make([]tierView, 0, len(tiers))
		for i, t := range tiers {
			out = append(out, newTierView(uint64(i), t))
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tiers": out})
}

func (s *Server) handleGetTier(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var view tierView
	err = s.app.View(func(m *Modules) error {
		t, err := m.Tiers.GetTier(index)
		if err != nil {
			return err
		}
		view = newTierView(index, t)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetMultiplier(w http.ResponseWriter, r *http.Request) {
	holder, err := pathAddress(r, "address")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var multiplier uint64
	err = s.app.View(func(m *Modules) error {
		var err error
		multiplier, err = m.Registry.GetMultiplier(holder)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"address": formatAddress(holder), "multiplier": multiplier})
}

func (s *Server) handleInsertTier(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req tierRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var index uint64
	err = s.app.Update(func(m *Modules) error {
		var err error
		index, err = m.Tiers.InsertTier(caller, req.Name, req.Threshold.Value(), req.Multiplier)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"index": index})
}

func (s *Server) handleUpdateTier(w http.ResponseWriter, r *http.Request) {
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
	var req tierRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var view tierView
	err = s.app.Update(func(m *Modules) error {
		if err := m.Tiers.UpdateTier(caller, index, req.Name, req.Threshold.Value(), req.Multiplier); err != nil {
			return err
		}
		t, err := m.Tiers.GetTier(index)
		if err != nil {
			return err
		}
		view = newTierView(index, t)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRemoveTier(w http.ResponseWriter, r *http.Request) {
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
	if err := s.app.Update(func(m *Modules) error { return m.Tiers.RemoveTier(caller, index) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOperators(w http.ResponseWriter, r *http.Request) {
	var out []string
	err := s.app.View(func(m *Modules) error {
		ops, err := m.Registry.Operators()
		if err != nil {
			return err
		}
		out = make([]string, 0, len(ops))
		for _, op := range ops {
			out = append(out, formatAddress(op))
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"operators": out})
}

func (s *Server) handleInsertOperator(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Operator Address `json:"operator"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var index uint64
	err = s.app.Update(func(m *Modules) error {
		var err error
		index, err = m.Registry.InsertOperator(caller, req.Operator.Address)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"index": index, "operator": formatAddress(req.Operator.Address)})
}

func (s *Server) handleRemoveOperator(w http.ResponseWriter, r *http.Request) {
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
	if err := s.app.Update(func(m *Modules) error { return m.Registry.RemoveOperator(caller, index) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetFees(w http.ResponseWriter, r *http.Request) {
	var view feeView
	err := s.app.View(func(m *Modules) error {
		cfg, err := m.Registry.FeeConfig()
		if err != nil {
			return err
		}
		view = newFeeView(cfg)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetFees(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Percent   *uint64  `json:"percent"`
		Recipient *Address `json:"recipient"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Percent == nil && req.Recipient == nil {
		s.writeError(w, r, badRequest("percent or recipient required"))
		return
	}
	var view feeView
	err = s.app.Update(func(m *Modules) error {
		if req.Percent != nil {
			if err := m.Registry.SetFeePercent(caller, *req.Percent); err != nil {
				return err
			}
		}
		if req.Recipient != nil {
			if err := m.Registry.SetFeeRecipient(caller, req.Recipient.Address); err != nil {
				return err
			}
		}
		cfg, err := m.Registry.FeeConfig()
		if err != nil {
			return err
		}
		view = newFeeView(cfg)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	var out []tokenView
	err := s.app.View(func(m *Modules) error {
		addrs, err := m.Tokens.Tokens()
		if err != nil {
			return err
		}
		out = make([]tokenView, 0, len(addrs))
		for _, addr := range addrs {
			meta, err := m.Tokens.Metadata(addr)
			if err != nil {
				return err
			}
			out = append(out, newTokenView(meta))
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tokens": out})
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	addr := pathToken(r, "token")
	var view tokenView
	err := s.app.View(func(m *Modules) error {
		meta, err := m.Tokens.Metadata(addr)
		if err != nil {
			return err
		}
		view = newTokenView(meta)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	addr := pathToken(r, "token")
	holder, err := pathAddress(r, "address")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var balance string
	err = s.app.View(func(m *Modules) error {
		if _, err := m.Tokens.Metadata(addr); err != nil {
			return err
		}
		v, err := m.Tokens.BalanceOf(addr, holder)
		if err != nil {
			return err
		}
		balance = formatAmount(v)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":   formatAddress(addr),
		"address": formatAddress(holder),
		"balance": balance,
	})
}

// approveRequest names the spender by address or by offering index, the
// latter resolving to the offering's custody account.
type approveRequest struct {
	Spender  *Address `json:"spender"`
	Offering *uint64  `json:"offering"`
	Amount   Amount   `json:"amount"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	addr := pathToken(r, "token")
	var req approveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if (req.Spender == nil) == (req.Offering == nil) {
		s.writeError(w, r, badRequest("exactly one of spender or offering required"))
		return
	}
	var spender common.Address
	if req.Spender != nil {
		spender = req.Spender.Address
	} else {
		spender = ido.CustodyAddress(*req.Offering)
	}
	err = s.app.Update(func(m *Modules) error {
		return m.Tokens.Approve(addr, caller, spender, req.Amount.Value())
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":   formatAddress(addr),
		"owner":   formatAddress(caller),
		"spender": formatAddress(spender),
		"amount":  formatAmount(req.Amount.Value()),
	})
}

func (s *Server) handleQueryEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := EventFilter{Type: q.Get("type")}
	if raw := q.Get("offering"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, badRequest("invalid offering"))
			return
		}
		filter.Offering = &v
	}
	if raw := q.Get("after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, badRequest("invalid after"))
			return
		}
		filter.AfterSeq = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			s.writeError(w, r, badRequest("invalid limit"))
			return
		}
		filter.Limit = v
	}
	records, err := s.index.Query(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]eventView, 0, len(records))
	for _, rec := range records {
		view, err := newEventView(rec)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": out})
}
