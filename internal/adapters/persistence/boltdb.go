// Package persistence journals completed operations to an embedded bolt
// database for off-chain auditing.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/swap-deploy-engine/internal/domain"
)

const (
	OperationsBucket = "operations"

	DefaultDBPath = "./data/swap-deploy-engine.db"
)

// StoredOperation is the on-disk form of an operation receipt. Amounts are
// decimal strings so the journal stays readable with plain tooling.
type StoredOperation struct {
	ID             uint64 `json:"id"`
	Timestamp      string `json:"timestamp"`
	State          string `json:"state"`
	Strategy       string `json:"strategy"`
	TokenIn        string `json:"tokenIn"`
	TokenOut       string `json:"tokenOut"`
	PositionID     uint64 `json:"positionId"`
	AmountIn       string `json:"amountIn"`
	AmountSwapIn   string `json:"amountSwapIn"`
	AmountSwapOut  string `json:"amountSwapOut"`
	LiquidityAdded string `json:"liquidityAdded"`
	SpareIn        string `json:"spareIn"`
	SpareOut       string `json:"spareOut"`
	Error          string `json:"error,omitempty"`
}

type Journal struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewJournal(dbPath string) (*Journal, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[journal] opened database")

	return &Journal{db: db, dbPath: dbPath}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *Journal) Append(rec *domain.OperationReceipt) error {
	stored := receiptToStored(rec)
	data, err := sonic.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	// Zero-padded keys keep bolt's iteration order chronological.
	key := []byte(fmt.Sprintf("%020d", rec.ID))
	return j.db.Set(OperationsBucket, key, data)
}

// AppendBatch journals several receipts in one write.
func (j *Journal) AppendBatch(recs []*domain.OperationReceipt) error {
	if len(recs) == 0 {
		return nil
	}

	batch := j.db.NewBatch()
	for _, rec := range recs {
		data, err := sonic.Marshal(receiptToStored(rec))
		if err != nil {
			return fmt.Errorf("failed to marshal receipt %d: %w", rec.ID, err)
		}
		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(OperationsBucket),
			Key:    []byte(fmt.Sprintf("%020d", rec.ID)),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add receipt %d to batch: %w", rec.ID, err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(recs)).Msg("[journal] FAILED to execute batch")
		return err
	}
	return nil
}

func (j *Journal) LoadAll() ([]*domain.OperationReceipt, error) {
	data, err := j.db.List(OperationsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	receipts := make([]*domain.OperationReceipt, 0, len(data))
	failed := 0
	for key, value := range data {
		var stored StoredOperation
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Error().Str("key", key).Err(err).Msg("[journal] failed to unmarshal receipt, skipping")
			failed++
			continue
		}
		rec, err := storedToReceipt(&stored)
		if err != nil {
			log.Error().Str("key", key).Err(err).Msg("[journal] failed to convert receipt, skipping")
			failed++
			continue
		}
		receipts = append(receipts, rec)
	}
	sort.Slice(receipts, func(a, b int) bool { return receipts[a].ID < receipts[b].ID })

	if failed > 0 {
		log.Error().
			Int("total_in_db", len(data)).
			Int("loaded", len(receipts)).
			Int("failed", failed).
			Msg("[journal] receipt loading completed with errors")
	}
	return receipts, nil
}

// LastID returns the highest journaled operation ID, for sequence resume.
func (j *Journal) LastID() (uint64, error) {
	receipts, err := j.LoadAll()
	if err != nil {
		return 0, err
	}
	if len(receipts) == 0 {
		return 0, nil
	}
	return receipts[len(receipts)-1].ID, nil
}

func (j *Journal) Count() (int, error) {
	data, err := j.db.List(OperationsBucket)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func receiptToStored(rec *domain.OperationReceipt) *StoredOperation {
	return &StoredOperation{
		ID:             rec.ID,
		Timestamp:      rec.Timestamp.Format(time.RFC3339Nano),
		State:          rec.State,
		Strategy:       rec.Strategy,
		TokenIn:        rec.TokenIn.Hex(),
		TokenOut:       rec.TokenOut.Hex(),
		PositionID:     rec.PositionID,
		AmountIn:       decOrZero(rec.AmountIn),
		AmountSwapIn:   decOrZero(rec.AmountSwapIn),
		AmountSwapOut:  decOrZero(rec.AmountSwapOut),
		LiquidityAdded: decOrZero(rec.LiquidityAdded),
		SpareIn:        decOrZero(rec.SpareIn),
		SpareOut:       decOrZero(rec.SpareOut),
		Error:          rec.Error,
	}
}

func storedToReceipt(stored *StoredOperation) (*domain.OperationReceipt, error) {
	ts, err := time.Parse(time.RFC3339Nano, stored.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}

	rec := &domain.OperationReceipt{
		ID:         stored.ID,
		Timestamp:  ts,
		State:      stored.State,
		Strategy:   stored.Strategy,
		TokenIn:    common.HexToAddress(stored.TokenIn),
		TokenOut:   common.HexToAddress(stored.TokenOut),
		PositionID: stored.PositionID,
		Error:      stored.Error,
	}
	for _, field := range []struct {
		dst **uint256.Int
		src string
	}{
		{&rec.AmountIn, stored.AmountIn},
		{&rec.AmountSwapIn, stored.AmountSwapIn},
		{&rec.AmountSwapOut, stored.AmountSwapOut},
		{&rec.LiquidityAdded, stored.LiquidityAdded},
		{&rec.SpareIn, stored.SpareIn},
		{&rec.SpareOut, stored.SpareOut},
	} {
		v, err := uint256.FromDecimal(field.src)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", field.src, err)
		}
		*field.dst = v
	}
	return rec, nil
}

func decOrZero(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
