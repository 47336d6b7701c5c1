package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"

	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/types"
)

type AmountRequest struct {
	Amount string `json:"amount"`
}

type RedeemRequest struct {
	Shares string `json:"shares"`
	// Unstake runs the redeem batch right away when nothing blocks it.
	Unstake bool `json:"unstake"`
}

func accountID(r *http.Request) (ledger.AccountID, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return "", types.NewValidationFailedError(errors.New("missing account id"))
	}
	return ledger.AccountID(id), nil
}

func batchID(r *http.Request) (ledger.BatchID, error) {
	raw := chi.URLParam(r, "batchId")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, types.NewValidationFailedError(fmt.Errorf("invalid batch id %q", raw))
	}
	return ledger.BatchID(id), nil
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return types.NewValidationFailedError(fmt.Errorf("invalid request body: %w", err))
}

func parseAmount(field, value string, required bool) (sdkmath.Uint, error) {
	if value == "" && required {
		return sdkmath.Uint{}, types.NewValidationFailedError(fmt.Errorf("missing %s", field))
	}
	amount, err := ledger.ParseAmount(value)
	if err != nil {
		return sdkmath.Uint{}, types.NewValidationFailedError(fmt.Errorf("invalid %s %q", field, value))
	}
	return amount, nil
}

// accountAmount extracts the account id and the request amount.
func accountAmount(r *http.Request, required bool) (ledger.AccountID, sdkmath.Uint, error) {
	id, err := accountID(r)
	if err != nil {
		return "", sdkmath.Uint{}, err
	}
	var req AmountRequest
	if err := decodeBody(r, &req); err != nil {
		return "", sdkmath.Uint{}, err
	}
	amount, err := parseAmount("amount", req.Amount, required)
	if err != nil {
		return "", sdkmath.Uint{}, err
	}
	return id, amount, nil
}

func (s *Server) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	id, attached, err := accountAmount(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	refund, err := s.service.RegisterAccount(r.Context(), id, attached)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, AmountResponse{Amount: refund.String()})
}

func (s *Server) UnregisterAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	escrow, err := s.service.UnregisterAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AmountResponse{Amount: escrow.String()})
}

func (s *Server) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	acc, err := s.service.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, accountView(acc))
}

func (s *Server) ClaimReceipts(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	claimed, err := s.service.ClaimReceipts(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, BoolResponse{Result: claimed})
}

func (s *Server) Deposit(w http.ResponseWriter, r *http.Request) {
	id, amount, err := accountAmount(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	batch, err := s.service.Deposit(r.Context(), id, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, BatchResponse{BatchID: uint64(batch)})
}

func (s *Server) DepositAndStake(w http.ResponseWriter, r *http.Request) {
	id, amount, err := accountAmount(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := s.service.DepositAndStake(r.Context(), id, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, BatchResponse{
		BatchID: uint64(result.BatchID),
		Staked:  stakeResultView(result.Staked),
	})
}

// WithdrawFromStakeBatch withdraws the given amount, or everything that can be
// withdrawn when no amount is sent.
func (s *Server) WithdrawFromStakeBatch(w http.ResponseWriter, r *http.Request) {
	id, amount, err := accountAmount(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if amount.IsZero() {
		amount, err = s.service.WithdrawAllFromStakeBatch(r.Context(), id)
	} else {
		err = s.service.WithdrawFromStakeBatch(r.Context(), id, amount)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AmountResponse{Amount: amount.String()})
}

func (s *Server) Redeem(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req RedeemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	shares, err := parseAmount("shares", req.Shares, true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !req.Unstake {
		batch, err := s.service.Redeem(r.Context(), id, shares)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, BatchResponse{BatchID: uint64(batch)})
		return
	}
	result, err := s.service.RedeemAndUnstake(r.Context(), id, shares)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, BatchResponse{
		BatchID:  uint64(result.BatchID),
		Unstaked: redeemResultView(result.Unstaked),
	})
}

func (s *Server) RedeemAll(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req RedeemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if !req.Unstake {
		batch, err := s.service.RedeemAll(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, BatchResponse{BatchID: uint64(batch)})
		return
	}
	result, err := s.service.RedeemAllAndUnstake(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, BatchResponse{
		BatchID:  uint64(result.BatchID),
		Unstaked: redeemResultView(result.Unstaked),
	})
}

func (s *Server) CancelPendingRedeem(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shares, err := s.service.CancelPendingRedeem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AmountResponse{Amount: shares.String()})
}

// WithdrawReserve pays out the given amount of available reserve, or all of
// it when no amount is sent.
func (s *Server) WithdrawReserve(w http.ResponseWriter, r *http.Request) {
	id, amount, err := accountAmount(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if amount.IsZero() {
		amount, err = s.service.WithdrawAllReserve(r.Context(), id)
	} else {
		err = s.service.WithdrawReserve(r.Context(), id, amount)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AmountResponse{Amount: amount.String()})
}

func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetState(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stateView(view))
}

func (s *Server) GetPendingWithdrawal(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetPendingWithdrawal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if view == nil {
		writeError(w, r, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "no withdrawal is pending"))
		return
	}
	writeJSON(w, r, http.StatusOK, PendingWithdrawalView{
		Receipt:           redeemReceiptView(view.BatchID, view.Receipt),
		WithdrawableEpoch: view.WithdrawableEpoch,
		Available:         view.Available,
	})
}

func (s *Server) GetStakeReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	receipt, err := s.service.GetStakeReceipt(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, StakeReceiptView{
		BatchID:         uint64(id),
		StakedReserve:   receipt.StakedReserve.String(),
		UnclaimedShares: receipt.UnclaimedShares.String(),
		ShareValue:      shareValueView(receipt.ShareValue),
	})
}

func (s *Server) GetRedeemReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := batchID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	receipt, err := s.service.GetRedeemReceipt(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, redeemReceiptView(id, receipt))
}

func (s *Server) RunStakeBatch(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.RunStakeBatch(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stakeResultView(result))
}

// RunRedeemBatch answers with an empty body when the run only processed a
// pending withdrawal.
func (s *Server) RunRedeemBatch(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.RunRedeemBatch(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, r, http.StatusOK, redeemResultView(result))
}

func (s *Server) ProcessPendingWithdrawal(w http.ResponseWriter, r *http.Request) {
	amount, err := s.service.ProcessPendingWithdrawal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AmountResponse{Amount: amount.String()})
}

func (s *Server) WithdrawAllFromVenue(w http.ResponseWriter, r *http.Request) {
	amount, err := s.service.WithdrawAllFromVenue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, AmountResponse{Amount: amount.String()})
}

func (s *Server) ReleaseStakeLock(w http.ResponseWriter, r *http.Request) {
	released, err := s.service.ReleaseStakeLock(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, BoolResponse{Result: released})
}

func (s *Server) ReleaseUnstakingLock(w http.ResponseWriter, r *http.Request) {
	released, err := s.service.ReleaseUnstakingLock(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, BoolResponse{Result: released})
}
