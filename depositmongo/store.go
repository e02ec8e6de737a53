/*
Package depositmongo is the mongodb-backed implementation of deposit.Store,
for deployments that already run mongo instead of a local sqlite file.
*/
package depositmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitbridge-io/relay-go/deposit"
)

const (
	depositsCollection = "deposits"
	connectTimeout     = 10 * time.Second
)

type MongoStore struct {
	client       *mongo.Client
	databaseName string
}

type MongoStoreOpts struct {
	URI          string
	DatabaseName string
}

func NewMongoStore(ctx context.Context, opts MongoStoreOpts) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	store := &MongoStore{
		client:       client,
		databaseName: opts.DatabaseName,
	}
	if err := store.createIndexes(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	coll := s.collection()
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "chainId", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create deposit indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) collection() *mongo.Collection {
	return s.client.Database(s.databaseName).Collection(depositsCollection)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mongoDeposit mirrors deposit.Deposit with bson tags.
type mongoDeposit struct {
	Id            string                 `bson:"id"`
	ChainId       uint64                 `bson:"chainId"`
	ChainName     string                 `bson:"chainName"`
	FundingTxHash string                 `bson:"fundingTxHash"`
	OutputIndex   uint32                 `bson:"outputIndex"`
	Receipt       deposit.DepositReceipt `bson:"receipt"`
	L1OutputEvent deposit.L1OutputEvent  `bson:"l1OutputEvent"`
	Status        string                 `bson:"status"`
	Hashes        deposit.TxHashes       `bson:"hashes"`
	WormholeInfo  deposit.WormholeInfo   `bson:"wormholeInfo"`
	Dates         deposit.DepositDates   `bson:"dates"`
	Error         string                 `bson:"error,omitempty"`
}

func encode(d *deposit.Deposit) *mongoDeposit {
	return &mongoDeposit{
		Id:            d.Id,
		ChainId:       d.ChainId,
		ChainName:     d.ChainName,
		FundingTxHash: d.FundingTxHash,
		OutputIndex:   d.OutputIndex,
		Receipt:       d.Receipt,
		L1OutputEvent: d.L1OutputEvent,
		Status:        string(d.Status),
		Hashes:        d.Hashes,
		WormholeInfo:  d.WormholeInfo,
		Dates:         d.Dates,
		Error:         d.Error,
	}
}

func (m *mongoDeposit) decode() *deposit.Deposit {
	return &deposit.Deposit{
		Id:            m.Id,
		ChainId:       m.ChainId,
		ChainName:     m.ChainName,
		FundingTxHash: m.FundingTxHash,
		OutputIndex:   m.OutputIndex,
		Receipt:       m.Receipt,
		L1OutputEvent: m.L1OutputEvent,
		Status:        deposit.DepositStatus(m.Status),
		Hashes:        m.Hashes,
		WormholeInfo:  m.WormholeInfo,
		Dates:         m.Dates,
		Error:         m.Error,
	}
}

func (s *MongoStore) GetById(ctx context.Context, id string) (*deposit.Deposit, error) {
	var m mongoDeposit
	err := s.collection().FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit by id: %w", err)
	}
	return m.decode(), nil
}

func (s *MongoStore) GetByStatus(ctx context.Context, status deposit.DepositStatus, chainId uint64) ([]*deposit.Deposit, error) {
	filter := bson.D{
		{Key: "status", Value: string(status)},
		{Key: "chainId", Value: chainId},
	}
	cursor, err := s.collection().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposits by status: %w", err)
	}
	defer cursor.Close(ctx)

	var deposits []*deposit.Deposit
	for cursor.Next(ctx) {
		var m mongoDeposit
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode deposit: %w", err)
		}
		deposits = append(deposits, m.decode())
	}
	return deposits, cursor.Err()
}

func (s *MongoStore) Create(ctx context.Context, d *deposit.Deposit) error {
	_, err := s.collection().InsertOne(ctx, encode(d))
	if err != nil {
		return fmt.Errorf("failed to insert deposit: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, d *deposit.Deposit) error {
	res, err := s.collection().ReplaceOne(ctx, bson.D{{Key: "id", Value: d.Id}}, encode(d))
	if err != nil {
		return fmt.Errorf("failed to update deposit: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("deposit %s not found", d.Id)
	}
	return nil
}
