package ledger

// Changes is the set of records modified since the last commit.
type Changes struct {
	State ContractState

	Accounts        []*Account
	DeletedAccounts []AccountHash

	StakeReceipts        map[BatchID]*StakeBatchReceipt
	DeletedStakeReceipts []BatchID

	RedeemReceipts        map[BatchID]*RedeemBatchReceipt
	DeletedRedeemReceipts []BatchID
}

func (c *Changes) Empty() bool {
	return c == nil
}

type dirtySet struct {
	state          bool
	accounts       map[AccountHash]struct{}
	stakeReceipts  map[BatchID]struct{}
	redeemReceipts map[BatchID]struct{}
}

func newDirtySet() dirtySet {
	return dirtySet{
		accounts:       make(map[AccountHash]struct{}),
		stakeReceipts:  make(map[BatchID]struct{}),
		redeemReceipts: make(map[BatchID]struct{}),
	}
}

func (d *dirtySet) empty() bool {
	return !d.state && len(d.accounts) == 0 && len(d.stakeReceipts) == 0 && len(d.redeemReceipts) == 0
}

func (l *Ledger) touchAccount(acc *Account) {
	l.dirty.accounts[acc.Hash()] = struct{}{}
}

func (l *Ledger) touchStakeReceipt(id BatchID) {
	l.dirty.stakeReceipts[id] = struct{}{}
}

func (l *Ledger) touchRedeemReceipt(id BatchID) {
	l.dirty.redeemReceipts[id] = struct{}{}
}

// PendingChanges returns copies of everything modified since the last call to
// ClearChanges, or nil when nothing changed. The contract state is always
// included in a non-nil result.
func (l *Ledger) PendingChanges() *Changes {
	if l.dirty.empty() {
		return nil
	}
	c := &Changes{
		State:          l.state.clone(),
		StakeReceipts:  make(map[BatchID]*StakeBatchReceipt),
		RedeemReceipts: make(map[BatchID]*RedeemBatchReceipt),
	}
	for h := range l.dirty.accounts {
		if acc, ok := l.accounts[h]; ok {
			c.Accounts = append(c.Accounts, acc.Clone())
		} else {
			c.DeletedAccounts = append(c.DeletedAccounts, h)
		}
	}
	for id := range l.dirty.stakeReceipts {
		if r, ok := l.stakeReceipts[id]; ok {
			c.StakeReceipts[id] = r.clone()
		} else {
			c.DeletedStakeReceipts = append(c.DeletedStakeReceipts, id)
		}
	}
	for id := range l.dirty.redeemReceipts {
		if r, ok := l.redeemReceipts[id]; ok {
			c.RedeemReceipts[id] = r.clone()
		} else {
			c.DeletedRedeemReceipts = append(c.DeletedRedeemReceipts, id)
		}
	}
	return c
}

// ClearChanges forgets tracked modifications. Call it only once they are stored.
func (l *Ledger) ClearChanges() {
	l.dirty = newDirtySet()
}
