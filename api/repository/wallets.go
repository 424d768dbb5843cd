package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"legend/api/types"
)

const walletsCollection = "wallets"

type walletDocument struct {
	Address       string          `bson:"address"`
	NativeBalance bson.Decimal128 `bson:"native_balance"`
	TokenBalance  bson.Decimal128 `bson:"token_balance"`
	Primary       bool            `bson:"primary"`
	UpdatedAt     time.Time       `bson:"updated_at"`
}

// WalletRepository stores one document per address, replaced on every scan.
type WalletRepository struct {
	collection *mongo.Collection
}

func NewWalletRepository(db *types.Database) *WalletRepository {
	return &WalletRepository{
		collection: db.MongoDB.Database(db.Name).Collection(walletsCollection),
	}
}

func (r *WalletRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "address", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create wallet index: %w", err)
	}
	return nil
}

func (r *WalletRepository) Upsert(ctx context.Context, record types.WalletRecord) error {
	doc, err := toDocument(record)
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"address": record.Address},
		bson.M{"$set": doc},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert wallet %s: %w", record.Address, err)
	}
	return nil
}

// List returns every record, primary group first, largest token holders first.
func (r *WalletRepository) List(ctx context.Context) ([]types.WalletRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "primary", Value: -1}, {Key: "token_balance", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	var docs []walletDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode wallets: %w", err)
	}

	records := make([]types.WalletRecord, 0, len(docs))
	for _, doc := range docs {
		record, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func toDocument(record types.WalletRecord) (walletDocument, error) {
	native, err := bson.ParseDecimal128(record.NativeBalance.String())
	if err != nil {
		return walletDocument{}, fmt.Errorf("invalid native balance for %s: %w", record.Address, err)
	}
	token, err := bson.ParseDecimal128(record.TokenBalance.String())
	if err != nil {
		return walletDocument{}, fmt.Errorf("invalid token balance for %s: %w", record.Address, err)
	}

	return walletDocument{
		Address:       record.Address,
		NativeBalance: native,
		TokenBalance:  token,
		Primary:       record.Primary,
		UpdatedAt:     record.UpdatedAt.UTC(),
	}, nil
}

func fromDocument(doc walletDocument) (types.WalletRecord, error) {
	native, err := decimal.NewFromString(doc.NativeBalance.String())
	if err != nil {
		return types.WalletRecord{}, fmt.Errorf("invalid stored native balance for %s: %w", doc.Address, err)
	}
	token, err := decimal.NewFromString(doc.TokenBalance.String())
	if err != nil {
		return types.WalletRecord{}, fmt.Errorf("invalid stored token balance for %s: %w", doc.Address, err)
	}

	return types.WalletRecord{
		Address:       doc.Address,
		NativeBalance: native,
		TokenBalance:  token,
		Primary:       doc.Primary,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}
