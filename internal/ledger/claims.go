package ledger

// claimReceipts settles the account's contributions against existing receipts
// and promotes its next batches once they have become current.
func (l *Ledger) claimReceipts(acc *Account) bool {
	changed := l.claimStakeReceipts(acc)
	if l.claimRedeemReceipts(acc) {
		changed = true
	}
	if changed {
		l.touchAccount(acc)
	}
	return changed
}

func (l *Ledger) claimStakeReceipts(acc *Account) bool {
	changed := false
	cp := l.clock.Now()
	for _, slot := range []**Batch{&acc.StakeBatch, &acc.NextStakeBatch} {
		batch := *slot
		if batch == nil {
			continue
		}
		receipt, ok := l.stakeReceipts[batch.ID]
		if !ok {
			continue
		}
		acc.CreditShares(receipt.Claim(batch.Amount()), cp)
		*slot = nil
		if receipt.AllClaimed() {
			delete(l.stakeReceipts, batch.ID)
		}
		l.touchStakeReceipt(batch.ID)
		changed = true
	}

	if acc.StakeBatch == nil && acc.NextStakeBatch != nil &&
		l.state.StakeBatch != nil && l.state.StakeBatch.ID == acc.NextStakeBatch.ID {
		acc.StakeBatch, acc.NextStakeBatch = acc.NextStakeBatch, nil
		changed = true
	}
	return changed
}

func (l *Ledger) claimRedeemReceipts(acc *Account) bool {
	changed := false
	cp := l.clock.Now()
	for _, slot := range []**Batch{&acc.RedeemBatch, &acc.NextRedeemBatch} {
		batch := *slot
		if batch == nil {
			continue
		}
		receipt, ok := l.redeemReceipts[batch.ID]
		if !ok {
			continue
		}

		if l.isPendingWithdrawal(batch.ID) {
			if l.claimFromLiquidity(acc, slot, receipt) {
				changed = true
			}
			continue
		}

		acc.CreditReserve(receipt.Claim(batch.Amount()), cp)
		*slot = nil
		if receipt.AllClaimed() {
			delete(l.redeemReceipts, batch.ID)
		}
		l.touchRedeemReceipt(batch.ID)
		changed = true
	}

	if acc.RedeemBatch == nil && acc.NextRedeemBatch != nil &&
		l.state.RedeemBatch != nil && l.state.RedeemBatch.ID == acc.NextRedeemBatch.ID {
		acc.RedeemBatch, acc.NextRedeemBatch = acc.NextRedeemBatch, nil
		changed = true
	}
	return changed
}

// previewClaims applies claims to view against copies of the ledger state.
func (l *Ledger) previewClaims(view *Account) {
	s := &Ledger{
		cfg:            l.cfg,
		clock:          l.clock,
		state:          l.state.clone(),
		accounts:       l.accounts,
		stakeReceipts:  make(map[BatchID]*StakeBatchReceipt, len(l.stakeReceipts)),
		redeemReceipts: make(map[BatchID]*RedeemBatchReceipt, len(l.redeemReceipts)),
		dirty:          newDirtySet(),
	}
	for id, r := range l.stakeReceipts {
		s.stakeReceipts[id] = r.clone()
	}
	for id, r := range l.redeemReceipts {
		s.redeemReceipts[id] = r.clone()
	}
	s.claimReceipts(view)
}
