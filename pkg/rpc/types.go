package rpc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// Primitives
// ============================================================================

// AccountID is a NEAR account name such as "alice.testnet".
type AccountID string

// CryptoHash is a base58-encoded 32-byte hash.
type CryptoHash string

// PublicKey is a NEAR public key in "ed25519:<base58>" form.
type PublicKey string

// Finality selects how final the block a request reads from must be.
type Finality string

const (
	FinalityOptimistic Finality = "optimistic"
	FinalityNearFinal  Finality = "near-final"
	FinalityFinal      Finality = "final"
)

// BlockID is either a block height or a block hash. It encodes as a JSON
// number or string respectively.
type BlockID struct {
	height uint64
	hash   CryptoHash
	isHash bool
}

// BlockHeight refers to a block by height.
func BlockHeight(h uint64) BlockID { return BlockID{height: h} }

// BlockHash refers to a block by hash.
func BlockHash(h CryptoHash) BlockID { return BlockID{hash: h, isHash: true} }

// Height returns the height and true when id refers to a block by height.
func (id BlockID) Height() (uint64, bool) { return id.height, !id.isHash }

// Hash returns the hash and true when id refers to a block by hash.
func (id BlockID) Hash() (CryptoHash, bool) { return id.hash, id.isHash }

func (id BlockID) String() string {
	if id.isHash {
		return string(id.hash)
	}
	return strconv.FormatUint(id.height, 10)
}

func (id BlockID) MarshalJSON() ([]byte, error) {
	if id.isHash {
		return json.Marshal(id.hash)
	}
	return json.Marshal(id.height)
}

func (id *BlockID) UnmarshalJSON(data []byte) error {
	var h uint64
	if err := json.Unmarshal(data, &h); err == nil {
		*id = BlockHeight(h)
		return nil
	}
	var hash CryptoHash
	if err := json.Unmarshal(data, &hash); err != nil {
		return fmt.Errorf("block id must be a height or a hash: %s", data)
	}
	*id = BlockHash(hash)
	return nil
}

// ParseBlockID reads a height when s is numeric and a hash otherwise.
func ParseBlockID(s string) BlockID {
	if h, err := strconv.ParseUint(s, 10, 64); err == nil {
		return BlockHeight(h)
	}
	return BlockHash(CryptoHash(s))
}

// BlockReference picks a block by exactly one of finality, id or sync
// checkpoint ("genesis" or "earliest_available").
type BlockReference struct {
	Finality       Finality `json:"finality,omitempty" validate:"omitempty,oneof=optimistic near-final final"`
	BlockID        *BlockID `json:"block_id,omitempty"`
	SyncCheckpoint string   `json:"sync_checkpoint,omitempty" validate:"omitempty,oneof=genesis earliest_available"`
}

func AtFinality(f Finality) BlockReference { return BlockReference{Finality: f} }

func AtBlock(id BlockID) BlockReference { return BlockReference{BlockID: &id} }

func AtCheckpoint(checkpoint string) BlockReference {
	return BlockReference{SyncCheckpoint: checkpoint}
}

// ============================================================================
// block / chunk
// ============================================================================

type BlockView struct {
	Author AccountID         `json:"author"`
	Header BlockHeaderView   `json:"header"`
	Chunks []ChunkHeaderView `json:"chunks"`
}

type BlockHeaderView struct {
	Height                uint64          `json:"height"`
	PrevHeight            *uint64         `json:"prev_height,omitempty"`
	EpochID               CryptoHash      `json:"epoch_id"`
	NextEpochID           CryptoHash      `json:"next_epoch_id"`
	Hash                  CryptoHash      `json:"hash"`
	PrevHash              CryptoHash      `json:"prev_hash"`
	PrevStateRoot         CryptoHash      `json:"prev_state_root"`
	OutcomeRoot           CryptoHash      `json:"outcome_root"`
	Timestamp             uint64          `json:"timestamp"`
	TimestampNanosec      string          `json:"timestamp_nanosec"`
	ChunksIncluded        uint64          `json:"chunks_included"`
	GasPrice              decimal.Decimal `json:"gas_price"`
	TotalSupply           decimal.Decimal `json:"total_supply"`
	LatestProtocolVersion uint32          `json:"latest_protocol_version"`
}

// Time converts the nanosecond timestamp.
func (h BlockHeaderView) Time() time.Time {
	return time.Unix(0, int64(h.Timestamp)).UTC()
}

type ChunkHeaderView struct {
	ChunkHash      CryptoHash      `json:"chunk_hash"`
	PrevBlockHash  CryptoHash      `json:"prev_block_hash"`
	OutcomeRoot    CryptoHash      `json:"outcome_root"`
	PrevStateRoot  CryptoHash      `json:"prev_state_root"`
	HeightCreated  uint64          `json:"height_created"`
	HeightIncluded uint64          `json:"height_included"`
	ShardID        uint64          `json:"shard_id"`
	GasUsed        uint64          `json:"gas_used"`
	GasLimit       uint64          `json:"gas_limit"`
	BalanceBurnt   decimal.Decimal `json:"balance_burnt"`
}

// ChunkRequest selects a chunk by hash, or by block id and shard id.
type ChunkRequest struct {
	ChunkID CryptoHash `json:"chunk_id,omitempty" validate:"required_without=BlockID,excluded_with=BlockID"`
	BlockID *BlockID   `json:"block_id,omitempty" validate:"required_without=ChunkID"`
	ShardID *uint64    `json:"shard_id,omitempty" validate:"required_with=BlockID,excluded_with=ChunkID"`
}

type ChunkView struct {
	Author       AccountID         `json:"author"`
	Header       ChunkHeaderView   `json:"header"`
	Transactions []TransactionView `json:"transactions"`
	Receipts     []ReceiptView     `json:"receipts"`
}

// ============================================================================
// gas_price / status / network_info
// ============================================================================

type GasPriceView struct {
	GasPrice decimal.Decimal `json:"gas_price"`
}

type StatusResponse struct {
	ChainID               string          `json:"chain_id"`
	Version               NodeVersion     `json:"version"`
	ProtocolVersion       uint32          `json:"protocol_version"`
	LatestProtocolVersion uint32          `json:"latest_protocol_version"`
	RPCAddr               string          `json:"rpc_addr,omitempty"`
	GenesisHash           CryptoHash      `json:"genesis_hash"`
	NodePublicKey         PublicKey       `json:"node_public_key"`
	ValidatorAccountID    *AccountID      `json:"validator_account_id"`
	Validators            []ValidatorInfo `json:"validators"`
	SyncInfo              SyncInfo        `json:"sync_info"`
	UptimeSec             int64           `json:"uptime_sec"`
}

type NodeVersion struct {
	Version      string `json:"version"`
	Build        string `json:"build"`
	RustcVersion string `json:"rustc_version,omitempty"`
}

type ValidatorInfo struct {
	AccountID AccountID `json:"account_id"`
	IsSlashed bool      `json:"is_slashed,omitempty"`
}

type SyncInfo struct {
	LatestBlockHash     CryptoHash `json:"latest_block_hash"`
	LatestBlockHeight   uint64     `json:"latest_block_height"`
	LatestStateRoot     CryptoHash `json:"latest_state_root"`
	LatestBlockTime     time.Time  `json:"latest_block_time"`
	Syncing             bool       `json:"syncing"`
	EarliestBlockHash   CryptoHash `json:"earliest_block_hash,omitempty"`
	EarliestBlockHeight uint64     `json:"earliest_block_height,omitempty"`
}

type NetworkInfoView struct {
	ActivePeers         []PeerInfo      `json:"active_peers"`
	NumActivePeers      uint64          `json:"num_active_peers"`
	PeerMaxCount        uint32          `json:"peer_max_count"`
	SentBytesPerSec     uint64          `json:"sent_bytes_per_sec"`
	ReceivedBytesPerSec uint64          `json:"received_bytes_per_sec"`
	KnownProducers      []KnownProducer `json:"known_producers"`
}

type PeerInfo struct {
	ID        PublicKey  `json:"id"`
	Addr      *string    `json:"addr"`
	AccountID *AccountID `json:"account_id"`
}

type KnownProducer struct {
	AccountID AccountID `json:"account_id"`
	Addr      *string   `json:"addr"`
	PeerID    PublicKey `json:"peer_id"`
}

// ============================================================================
// query
// ============================================================================

// Query request types.
const (
	ViewAccount       = "view_account"
	ViewCode          = "view_code"
	ViewState         = "view_state"
	ViewAccessKey     = "view_access_key"
	ViewAccessKeyList = "view_access_key_list"
	CallFunction      = "call_function"
)

// QueryRequest is the params object of the query method.
type QueryRequest struct {
	BlockReference

	RequestType  string    `json:"request_type" validate:"required,oneof=view_account view_code view_state view_access_key view_access_key_list call_function"`
	AccountID    AccountID `json:"account_id" validate:"required,near_account"`
	PublicKey    PublicKey `json:"public_key,omitempty" validate:"required_if=RequestType view_access_key"`
	PrefixBase64 *string   `json:"prefix_base64,omitempty" validate:"required_if=RequestType view_state"`
	IncludeProof bool      `json:"include_proof,omitempty"`
	MethodName   string    `json:"method_name,omitempty" validate:"required_if=RequestType call_function"`
	ArgsBase64   *string   `json:"args_base64,omitempty" validate:"required_if=RequestType call_function"`
}

// QueryResponse is the common part of every query result. The kind-specific
// body is decoded with the accessor matching the request type.
type QueryResponse struct {
	BlockHeight uint64     `json:"block_height"`
	BlockHash   CryptoHash `json:"block_hash"`

	raw json.RawMessage
}

func (q *QueryResponse) UnmarshalJSON(data []byte) error {
	type header QueryResponse
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	*q = QueryResponse(h)
	q.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the result object as received.
func (q QueryResponse) Raw() json.RawMessage { return q.raw }

func (q QueryResponse) Account() (AccountView, error) {
	var v AccountView
	return v, json.Unmarshal(q.raw, &v)
}

func (q QueryResponse) AccessKey() (AccessKeyView, error) {
	var v AccessKeyView
	return v, json.Unmarshal(q.raw, &v)
}

func (q QueryResponse) AccessKeyList() (AccessKeyList, error) {
	var v AccessKeyList
	return v, json.Unmarshal(q.raw, &v)
}

func (q QueryResponse) CallResult() (CallResult, error) {
	var v CallResult
	return v, json.Unmarshal(q.raw, &v)
}

func (q QueryResponse) State() (ViewStateResult, error) {
	var v ViewStateResult
	return v, json.Unmarshal(q.raw, &v)
}

func (q QueryResponse) Code() (ContractCodeView, error) {
	var v ContractCodeView
	return v, json.Unmarshal(q.raw, &v)
}

type AccountView struct {
	Amount        decimal.Decimal `json:"amount"`
	Locked        decimal.Decimal `json:"locked"`
	CodeHash      CryptoHash      `json:"code_hash"`
	StorageUsage  uint64          `json:"storage_usage"`
	StoragePaidAt uint64          `json:"storage_paid_at"`
	BlockHeight   uint64          `json:"block_height"`
	BlockHash     CryptoHash      `json:"block_hash"`
}

type AccessKeyView struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   CryptoHash      `json:"block_hash"`
}

// IsFullAccess reports whether the key carries the FullAccess permission.
func (k AccessKeyView) IsFullAccess() bool {
	var s string
	return json.Unmarshal(k.Permission, &s) == nil && s == "FullAccess"
}

type AccessKeyList struct {
	Keys []AccessKeyInfo `json:"keys"`
}

type AccessKeyInfo struct {
	PublicKey PublicKey     `json:"public_key"`
	AccessKey AccessKeyView `json:"access_key"`
}

type CallResult struct {
	// Result is sent as an array of byte values.
	Result      []byte     `json:"result"`
	Logs        []string   `json:"logs"`
	BlockHeight uint64     `json:"block_height"`
	BlockHash   CryptoHash `json:"block_hash"`
}

type ViewStateResult struct {
	Values []StateItem `json:"values"`
	Proof  []string    `json:"proof,omitempty"`
}

type StateItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ContractCodeView struct {
	CodeBase64 string     `json:"code_base64"`
	Hash       CryptoHash `json:"hash"`
}

// ============================================================================
// Transactions
// ============================================================================

// TransactionInfo identifies a transaction either by hash and signer, or by
// its full Borsh-encoded signed form. Setting both is invalid.
type TransactionInfo struct {
	Hash              CryptoHash `validate:"required_without=SignedTransaction,excluded_with=SignedTransaction"`
	SenderAccountID   AccountID  `validate:"required_with=Hash,omitempty,near_account"`
	SignedTransaction []byte     `validate:"required_without=Hash"`
}

// TxByHash identifies a transaction by hash and signer account.
func TxByHash(hash CryptoHash, sender AccountID) TransactionInfo {
	return TransactionInfo{Hash: hash, SenderAccountID: sender}
}

// TxBySigned identifies a transaction by its Borsh-encoded signed form.
func TxBySigned(signedTx []byte) TransactionInfo {
	return TransactionInfo{SignedTransaction: signedTx}
}

type TransactionView struct {
	SignerID   AccountID       `json:"signer_id"`
	PublicKey  PublicKey       `json:"public_key"`
	Nonce      uint64          `json:"nonce"`
	ReceiverID AccountID       `json:"receiver_id"`
	Actions    json.RawMessage `json:"actions"`
	Signature  string          `json:"signature"`
	Hash       CryptoHash      `json:"hash"`
}

// ExecutionStatus is a transaction or receipt status: "NotStarted",
// "Started", {"SuccessValue": base64}, {"SuccessReceiptId": hash} or
// {"Failure": {...}}.
type ExecutionStatus struct {
	raw json.RawMessage
}

func (s ExecutionStatus) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (s ExecutionStatus) member(key string) (json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(s.raw, &m); err != nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// SuccessValue returns the base64 value of a successful execution.
func (s ExecutionStatus) SuccessValue() (string, bool) {
	raw, ok := s.member("SuccessValue")
	if !ok {
		return "", false
	}
	var v string
	return v, json.Unmarshal(raw, &v) == nil
}

// Failure returns the failure payload of a failed execution.
func (s ExecutionStatus) Failure() (json.RawMessage, bool) {
	return s.member("Failure")
}

// IsSuccess reports a SuccessValue or SuccessReceiptId status.
func (s ExecutionStatus) IsSuccess() bool {
	if _, ok := s.member("SuccessValue"); ok {
		return true
	}
	_, ok := s.member("SuccessReceiptId")
	return ok
}

type ExecutionOutcome struct {
	Logs        []string        `json:"logs"`
	ReceiptIDs  []CryptoHash    `json:"receipt_ids"`
	GasBurnt    uint64          `json:"gas_burnt"`
	TokensBurnt decimal.Decimal `json:"tokens_burnt"`
	ExecutorID  AccountID       `json:"executor_id"`
	Status      ExecutionStatus `json:"status"`
}

type ExecutionOutcomeWithID struct {
	ID        CryptoHash       `json:"id"`
	BlockHash CryptoHash       `json:"block_hash"`
	Proof     json.RawMessage  `json:"proof,omitempty"`
	Outcome   ExecutionOutcome `json:"outcome"`
}

// FinalExecutionOutcome is the result of tx and broadcast_tx_commit.
type FinalExecutionOutcome struct {
	Status             ExecutionStatus          `json:"status"`
	Transaction        TransactionView          `json:"transaction"`
	TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

// FinalExecutionOutcomeWithReceipts is the result of EXPERIMENTAL_tx_status.
type FinalExecutionOutcomeWithReceipts struct {
	FinalExecutionOutcome

	Receipts []ReceiptView `json:"receipts"`
}

type BroadcastTxSyncResponse struct {
	TransactionHash CryptoHash `json:"transaction_hash"`
	IsRouted        bool       `json:"is_routed"`
}

type ReceiptView struct {
	PredecessorID AccountID       `json:"predecessor_id"`
	ReceiverID    AccountID       `json:"receiver_id"`
	ReceiptID     CryptoHash      `json:"receipt_id"`
	Receipt       json.RawMessage `json:"receipt"`
}

type ReceiptRequest struct {
	ReceiptID CryptoHash `json:"receipt_id" validate:"required"`
}

// ============================================================================
// Validators
// ============================================================================

// EpochReference selects an epoch by id or by a block in it. The zero value
// means the latest epoch.
type EpochReference struct {
	EpochID CryptoHash `json:"epoch_id,omitempty" validate:"excluded_with=BlockID"`
	BlockID *BlockID   `json:"block_id,omitempty"`
}

type ValidatorStakeView struct {
	AccountID AccountID       `json:"account_id"`
	PublicKey PublicKey       `json:"public_key"`
	Stake     decimal.Decimal `json:"stake"`
}

type CurrentEpochValidatorInfo struct {
	AccountID         AccountID       `json:"account_id"`
	PublicKey         PublicKey       `json:"public_key"`
	IsSlashed         bool            `json:"is_slashed"`
	Stake             decimal.Decimal `json:"stake"`
	Shards            []uint64        `json:"shards"`
	NumProducedBlocks uint64          `json:"num_produced_blocks"`
	NumExpectedBlocks uint64          `json:"num_expected_blocks"`
}

type EpochValidatorInfo struct {
	CurrentValidators []CurrentEpochValidatorInfo `json:"current_validators"`
	NextValidators    []ValidatorStakeView        `json:"next_validators"`
	CurrentFishermen  []ValidatorStakeView        `json:"current_fishermen"`
	NextFishermen     []ValidatorStakeView        `json:"next_fishermen"`
	CurrentProposals  []ValidatorStakeView        `json:"current_proposals"`
	PrevEpochKickout  json.RawMessage             `json:"prev_epoch_kickout"`
	EpochStartHeight  uint64                      `json:"epoch_start_height"`
	EpochHeight       uint64                      `json:"epoch_height"`
}

// ============================================================================
// Light client
// ============================================================================

type LightClientProofRequest struct {
	Type            string     `json:"type" validate:"required,oneof=transaction receipt"`
	TransactionHash CryptoHash `json:"transaction_hash,omitempty" validate:"required_if=Type transaction"`
	SenderID        AccountID  `json:"sender_id,omitempty" validate:"required_if=Type transaction"`
	ReceiptID       CryptoHash `json:"receipt_id,omitempty" validate:"required_if=Type receipt"`
	ReceiverID      AccountID  `json:"receiver_id,omitempty" validate:"required_if=Type receipt"`
	LightClientHead CryptoHash `json:"light_client_head" validate:"required"`
}

type LightClientProofResponse struct {
	OutcomeProof     ExecutionOutcomeWithID `json:"outcome_proof"`
	OutcomeRootProof json.RawMessage        `json:"outcome_root_proof"`
	BlockHeaderLite  json.RawMessage        `json:"block_header_lite"`
	BlockProof       json.RawMessage        `json:"block_proof"`
}

type NextLightClientBlockRequest struct {
	LastBlockHash CryptoHash `json:"last_block_hash" validate:"required"`
}

type LightClientBlockView struct {
	PrevBlockHash      CryptoHash           `json:"prev_block_hash"`
	NextBlockInnerHash CryptoHash           `json:"next_block_inner_hash"`
	InnerLite          BlockHeaderInnerLite `json:"inner_lite"`
	InnerRestHash      CryptoHash           `json:"inner_rest_hash"`
	NextBps            []ValidatorStakeView `json:"next_bps,omitempty"`
	ApprovalsAfterNext []*string            `json:"approvals_after_next"`
}

type BlockHeaderInnerLite struct {
	Height           uint64     `json:"height"`
	EpochID          CryptoHash `json:"epoch_id"`
	NextEpochID      CryptoHash `json:"next_epoch_id"`
	PrevStateRoot    CryptoHash `json:"prev_state_root"`
	OutcomeRoot      CryptoHash `json:"outcome_root"`
	Timestamp        uint64     `json:"timestamp"`
	TimestampNanosec string     `json:"timestamp_nanosec"`
	NextBpHash       CryptoHash `json:"next_bp_hash"`
	BlockMerkleRoot  CryptoHash `json:"block_merkle_root"`
}

// ============================================================================
// State changes
// ============================================================================

// State change kinds for ChangesRequest.
const (
	AccountChanges         = "account_changes"
	SingleAccessKeyChanges = "single_access_key_changes"
	AllAccessKeyChanges    = "all_access_key_changes"
	ContractCodeChanges    = "contract_code_changes"
	DataChanges            = "data_changes"
)

type ChangesRequest struct {
	BlockReference

	ChangesType     string         `json:"changes_type" validate:"required,oneof=account_changes single_access_key_changes all_access_key_changes contract_code_changes data_changes"`
	AccountIDs      []AccountID    `json:"account_ids,omitempty" validate:"required_unless=ChangesType single_access_key_changes,dive,near_account"`
	Keys            []AccessKeyRef `json:"keys,omitempty" validate:"required_if=ChangesType single_access_key_changes"`
	KeyPrefixBase64 *string        `json:"key_prefix_base64,omitempty" validate:"required_if=ChangesType data_changes"`
}

type AccessKeyRef struct {
	AccountID AccountID `json:"account_id" validate:"required,near_account"`
	PublicKey PublicKey `json:"public_key" validate:"required"`
}

type StateChangesView struct {
	BlockHash CryptoHash        `json:"block_hash"`
	Changes   []StateChangeView `json:"changes"`
}

type StateChangeView struct {
	Cause  json.RawMessage `json:"cause"`
	Type   string          `json:"type"`
	Change json.RawMessage `json:"change"`
}

type StateChangesKindsView struct {
	BlockHash CryptoHash        `json:"block_hash"`
	Changes   []StateChangeKind `json:"changes"`
}

type StateChangeKind struct {
	Type      string    `json:"type"`
	AccountID AccountID `json:"account_id"`
}

// ============================================================================
// Configuration
// ============================================================================

type ProtocolConfigView struct {
	ProtocolVersion         uint32          `json:"protocol_version"`
	GenesisTime             time.Time       `json:"genesis_time"`
	ChainID                 string          `json:"chain_id"`
	GenesisHeight           uint64          `json:"genesis_height"`
	NumBlockProducerSeats   uint64          `json:"num_block_producer_seats"`
	EpochLength             uint64          `json:"epoch_length"`
	GasLimit                uint64          `json:"gas_limit"`
	MinGasPrice             decimal.Decimal `json:"min_gas_price"`
	MaxGasPrice             decimal.Decimal `json:"max_gas_price"`
	ProtocolTreasuryAccount AccountID       `json:"protocol_treasury_account"`
	RuntimeConfig           json.RawMessage `json:"runtime_config"`
}

type GenesisConfigView struct {
	ProtocolVersion         uint32          `json:"protocol_version"`
	GenesisTime             time.Time       `json:"genesis_time"`
	ChainID                 string          `json:"chain_id"`
	GenesisHeight           uint64          `json:"genesis_height"`
	NumBlockProducerSeats   uint64          `json:"num_block_producer_seats"`
	EpochLength             uint64          `json:"epoch_length"`
	GasLimit                uint64          `json:"gas_limit"`
	MinGasPrice             decimal.Decimal `json:"min_gas_price"`
	MaxGasPrice             decimal.Decimal `json:"max_gas_price"`
	TotalSupply             decimal.Decimal `json:"total_supply"`
	ProtocolTreasuryAccount AccountID       `json:"protocol_treasury_account"`
	Validators              []AccountInfo   `json:"validators"`
}

type AccountInfo struct {
	AccountID AccountID       `json:"account_id"`
	PublicKey PublicKey       `json:"public_key"`
	Amount    decimal.Decimal `json:"amount"`
}

// ============================================================================
// Sandbox
// ============================================================================

type SandboxPatchStateRequest struct {
	Records []json.RawMessage `json:"records" validate:"required,min=1"`
}
