package depositstore

// One row per deposit. The structured sub-objects (receipt, reveal event,
// hashes, wormhole info, dates) are stored as JSON blobs; everything the
// relayer queries by lives in its own column.
var depositTable = `CREATE TABLE IF NOT EXISTS deposits (
	id TEXT PRIMARY KEY NOT NULL,
	chainId BIGINT UNSIGNED NOT NULL,
	chainName VARCHAR(32) NOT NULL,
	fundingTxHash CHAR(66) NOT NULL,
	outputIndex INTEGER UNSIGNED NOT NULL,
	status VARCHAR(24) NOT NULL,
	receipt BLOB NOT NULL,
	l1OutputEvent BLOB NOT NULL,
	hashes BLOB NOT NULL,
	wormholeInfo BLOB NOT NULL,
	dates BLOB NOT NULL,
	error TEXT,
	CONSTRAINT chk_status CHECK (status IN ('QUEUED', 'INITIALIZED', 'FINALIZED', 'AWAITING_WORMHOLE_VAA', 'BRIDGED'))
);
CREATE INDEX IF NOT EXISTS idx_deposits_status_chain ON deposits(status, chainId);
`
