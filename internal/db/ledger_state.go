package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakevault/stake-settlement/internal/db/model"
	"github.com/stakevault/stake-settlement/internal/ledger"
)

// LoadLedger reads every stored record. Snapshot.State is nil on an empty store.
func (db *Database) LoadLedger(ctx context.Context) (*ledger.Snapshot, error) {
	snap := &ledger.Snapshot{
		StakeReceipts:  make(map[ledger.BatchID]*ledger.StakeBatchReceipt),
		RedeemReceipts: make(map[ledger.BatchID]*ledger.RedeemBatchReceipt),
	}

	state, err := db.GetContractState(ctx)
	switch {
	case err == nil:
		snap.State = state
	case IsNotFoundError(err):
	default:
		return nil, err
	}

	var accounts []model.AccountDocument
	if err := findAll(ctx, db.collection(model.AccountsCollection), &accounts); err != nil {
		return nil, err
	}
	for i := range accounts {
		acc, err := accounts[i].ToAccount()
		if err != nil {
			return nil, err
		}
		snap.Accounts = append(snap.Accounts, acc)
	}

	var stakeReceipts []model.StakeReceiptDocument
	if err := findAll(ctx, db.collection(model.StakeReceiptsCollection), &stakeReceipts); err != nil {
		return nil, err
	}
	for i := range stakeReceipts {
		r, err := stakeReceipts[i].ToReceipt()
		if err != nil {
			return nil, err
		}
		snap.StakeReceipts[ledger.BatchID(stakeReceipts[i].BatchID)] = r
	}

	var redeemReceipts []model.RedeemReceiptDocument
	if err := findAll(ctx, db.collection(model.RedeemReceiptsCollection), &redeemReceipts); err != nil {
		return nil, err
	}
	for i := range redeemReceipts {
		r, err := redeemReceipts[i].ToReceipt()
		if err != nil {
			return nil, err
		}
		snap.RedeemReceipts[ledger.BatchID(redeemReceipts[i].BatchID)] = r
	}

	return snap, nil
}

func (db *Database) GetContractState(ctx context.Context) (*ledger.ContractState, error) {
	var doc model.ContractStateDocument
	err := db.collection(model.ContractStateCollection).
		FindOne(ctx, bson.M{"_id": model.ContractStateID}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.ContractStateID,
				Message: "contract state has not been stored yet",
			}
		}
		return nil, err
	}
	return doc.ToContractState()
}

func (db *Database) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	var doc model.AccountDocument
	err := db.collection(model.AccountsCollection).
		FindOne(ctx, bson.M{"account_id": string(id)}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     string(id),
				Message: "account not found",
			}
		}
		return nil, err
	}
	return doc.ToAccount()
}

// SaveLedgerChanges writes accounts and receipts first and the contract state
// last, so a partially applied save is superseded by the next one.
func (db *Database) SaveLedgerChanges(ctx context.Context, changes *ledger.Changes) error {
	if changes.Empty() {
		return nil
	}

	var accountWrites []mongo.WriteModel
	for _, acc := range changes.Accounts {
		doc := model.NewAccountDocument(acc)
		accountWrites = append(accountWrites, replaceByID(doc.ID, doc))
	}
	for _, h := range changes.DeletedAccounts {
		accountWrites = append(accountWrites, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": h.String()}))
	}
	if err := bulkWrite(ctx, db.collection(model.AccountsCollection), accountWrites); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	var stakeWrites []mongo.WriteModel
	for id, r := range changes.StakeReceipts {
		stakeWrites = append(stakeWrites, replaceByID(uint64(id), model.NewStakeReceiptDocument(id, r)))
	}
	for _, id := range changes.DeletedStakeReceipts {
		stakeWrites = append(stakeWrites, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": uint64(id)}))
	}
	if err := bulkWrite(ctx, db.collection(model.StakeReceiptsCollection), stakeWrites); err != nil {
		return fmt.Errorf("failed to save stake batch receipts: %w", err)
	}

	var redeemWrites []mongo.WriteModel
	for id, r := range changes.RedeemReceipts {
		redeemWrites = append(redeemWrites, replaceByID(uint64(id), model.NewRedeemReceiptDocument(id, r)))
	}
	for _, id := range changes.DeletedRedeemReceipts {
		redeemWrites = append(redeemWrites, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": uint64(id)}))
	}
	if err := bulkWrite(ctx, db.collection(model.RedeemReceiptsCollection), redeemWrites); err != nil {
		return fmt.Errorf("failed to save redeem batch receipts: %w", err)
	}

	stateDoc := model.NewContractStateDocument(changes.State)
	opts := options.Replace().SetUpsert(true)
	_, err := db.collection(model.ContractStateCollection).
		ReplaceOne(ctx, bson.M{"_id": stateDoc.ID}, stateDoc, opts)
	if err != nil {
		return fmt.Errorf("failed to save contract state: %w", err)
	}
	return nil
}

func replaceByID(id any, doc any) mongo.WriteModel {
	return mongo.NewReplaceOneModel().
		SetFilter(bson.M{"_id": id}).
		SetReplacement(doc).
		SetUpsert(true)
}

func bulkWrite(ctx context.Context, coll *mongo.Collection, writes []mongo.WriteModel) error {
	if len(writes) == 0 {
		return nil
	}
	_, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func findAll(ctx context.Context, coll *mongo.Collection, results any) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, results)
}
