/*
Package depositstore is the sqlite-backed implementation of deposit.Store.
*/
package depositstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bitbridge-io/relay-go/database"
	"github.com/bitbridge-io/relay-go/deposit"
)

type SqliteStore struct {
	stmtCache *database.StmtCache
}

func NewSqliteStore(db *sql.DB) (*SqliteStore, error) {
	if _, err := db.Exec(depositTable); err != nil {
		return nil, err
	}
	return &SqliteStore{
		stmtCache: database.NewStmtCache(db),
	}, nil
}

func (s *SqliteStore) Close() {
	s.stmtCache.Clear()
}

// sqlDeposit is the row shape. JSON sub-blobs are decoded back onto the
// deposit on read.
type sqlDeposit struct {
	id            string
	chainId       uint64
	chainName     string
	fundingTxHash string
	outputIndex   uint32
	status        string
	receipt       []byte
	l1OutputEvent []byte
	hashes        []byte
	wormholeInfo  []byte
	dates         []byte
	errMsg        sql.NullString
}

func encodeDeposit(d *deposit.Deposit) (*sqlDeposit, error) {
	receipt, err := json.Marshal(d.Receipt)
	if err != nil {
		return nil, err
	}
	l1Ev, err := json.Marshal(d.L1OutputEvent)
	if err != nil {
		return nil, err
	}
	hashes, err := json.Marshal(d.Hashes)
	if err != nil {
		return nil, err
	}
	wh, err := json.Marshal(d.WormholeInfo)
	if err != nil {
		return nil, err
	}
	dates, err := json.Marshal(d.Dates)
	if err != nil {
		return nil, err
	}

	return &sqlDeposit{
		id:            d.Id,
		chainId:       d.ChainId,
		chainName:     d.ChainName,
		fundingTxHash: d.FundingTxHash,
		outputIndex:   d.OutputIndex,
		status:        string(d.Status),
		receipt:       receipt,
		l1OutputEvent: l1Ev,
		hashes:        hashes,
		wormholeInfo:  wh,
		dates:         dates,
		errMsg:        sql.NullString{String: d.Error, Valid: d.Error != ""},
	}, nil
}

func (r *sqlDeposit) decode() (*deposit.Deposit, error) {
	d := &deposit.Deposit{
		Id:            r.id,
		ChainId:       r.chainId,
		ChainName:     r.chainName,
		FundingTxHash: r.fundingTxHash,
		OutputIndex:   r.outputIndex,
		Status:        deposit.DepositStatus(r.status),
	}
	if err := json.Unmarshal(r.receipt, &d.Receipt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.l1OutputEvent, &d.L1OutputEvent); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.hashes, &d.Hashes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.wormholeInfo, &d.WormholeInfo); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.dates, &d.Dates); err != nil {
		return nil, err
	}
	if r.errMsg.Valid {
		d.Error = r.errMsg.String
	}
	return d, nil
}

const depositColumns = ` id, chainId, chainName, fundingTxHash, outputIndex, status, receipt, l1OutputEvent, hashes, wormholeInfo, dates, error `

func (s *SqliteStore) GetById(ctx context.Context, id string) (*deposit.Deposit, error) {
	query := `SELECT` + depositColumns + `FROM deposits WHERE id = ?`
	stmt, err := s.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}

	var r sqlDeposit
	err = stmt.QueryRowContext(ctx, id).Scan(
		&r.id, &r.chainId, &r.chainName, &r.fundingTxHash, &r.outputIndex, &r.status,
		&r.receipt, &r.l1OutputEvent, &r.hashes, &r.wormholeInfo, &r.dates, &r.errMsg,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.decode()
}

func (s *SqliteStore) GetByStatus(ctx context.Context, status deposit.DepositStatus, chainId uint64) ([]*deposit.Deposit, error) {
	query := `SELECT` + depositColumns + `FROM deposits WHERE status = ? AND chainId = ?`
	stmt, err := s.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, string(status), chainId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []*deposit.Deposit
	for rows.Next() {
		var r sqlDeposit
		if err := rows.Scan(
			&r.id, &r.chainId, &r.chainName, &r.fundingTxHash, &r.outputIndex, &r.status,
			&r.receipt, &r.l1OutputEvent, &r.hashes, &r.wormholeInfo, &r.dates, &r.errMsg,
		); err != nil {
			return nil, err
		}
		d, err := r.decode()
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

func (s *SqliteStore) Create(ctx context.Context, d *deposit.Deposit) error {
	query := `INSERT INTO deposits (` + depositColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := s.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	r, err := encodeDeposit(d)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx,
		r.id, r.chainId, r.chainName, r.fundingTxHash, r.outputIndex, r.status,
		r.receipt, r.l1OutputEvent, r.hashes, r.wormholeInfo, r.dates, r.errMsg,
	)
	return err
}

func (s *SqliteStore) Update(ctx context.Context, d *deposit.Deposit) error {
	query := `UPDATE deposits SET status = ?, receipt = ?, l1OutputEvent = ?, hashes = ?, wormholeInfo = ?, dates = ?, error = ? WHERE id = ?`
	stmt, err := s.stmtCache.Prepare(query)
	if err != nil {
		return err
	}

	r, err := encodeDeposit(d)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx,
		r.status, r.receipt, r.l1OutputEvent, r.hashes, r.wormholeInfo, r.dates, r.errMsg, r.id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("deposit %s not found", d.Id)
	}
	return nil
}
