package rpc

import (
	"encoding/base64"
	"errors"
)

var errEmptySignedTransaction = errors.New("signed transaction is empty")

// signedTxParams sends a Borsh-encoded signed transaction as [base64].
func signedTxParams(signedTx []byte) func() (any, error) {
	return func() (any, error) {
		if len(signedTx) == 0 {
			return nil, errEmptySignedTransaction
		}
		return []any{base64.StdEncoding.EncodeToString(signedTx)}, nil
	}
}

// txInfoParams sends [hash, sender] or [base64] depending on how the
// transaction is identified.
func txInfoParams(info TransactionInfo) func() (any, error) {
	return validated(info, func(info TransactionInfo) any {
		if len(info.SignedTransaction) > 0 {
			return []any{base64.StdEncoding.EncodeToString(info.SignedTransaction)}
		}
		return []any{info.Hash, info.SenderAccountID}
	})
}

// ============================================================================
// Stable methods
// ============================================================================

// Block returns the block selected by ref.
//
// Example:
//
//	block, err := rpc.Call(ctx, client, rpc.Block(rpc.AtFinality(rpc.FinalityFinal)))
func Block(ref BlockReference) Method[BlockView, BlockError] {
	return newMethod[BlockView, BlockError](BlockMethod, validated(ref, nil))
}

// BroadcastTxAsync submits a signed transaction and returns its hash without
// waiting for execution.
func BroadcastTxAsync(signedTx []byte) Method[CryptoHash, NoError] {
	return newMethod[CryptoHash, NoError](BroadcastTxAsyncMethod, signedTxParams(signedTx))
}

// BroadcastTxCommit submits a signed transaction and waits until it is
// executed.
func BroadcastTxCommit(signedTx []byte) Method[FinalExecutionOutcome, TransactionError] {
	m := newMethod[FinalExecutionOutcome, TransactionError](BroadcastTxCommitMethod, signedTxParams(signedTx))
	m.fallback = transactionErrorFromData
	return m
}

func Chunk(req ChunkRequest) Method[ChunkView, ChunkError] {
	return newMethod[ChunkView, ChunkError](ChunkMethod, validated(req, nil))
}

// GasPrice returns the gas price at blockID, or at the latest block when
// blockID is nil.
func GasPrice(blockID *BlockID) Method[GasPriceView, GasPriceError] {
	return newMethod[GasPriceView, GasPriceError](GasPriceMethod, positional(blockID))
}

// Health succeeds while the node is healthy.
func Health() Method[Empty, StatusError] {
	return newMethod[Empty, StatusError](HealthMethod, nil)
}

func LightClientProof(req LightClientProofRequest) Method[LightClientProofResponse, LightClientProofError] {
	return newMethod[LightClientProofResponse, LightClientProofError](LightClientProofMethod, validated(req, nil))
}

// NextLightClientBlock returns nil when the node has no newer block.
func NextLightClientBlock(req NextLightClientBlockRequest) Method[*LightClientBlockView, LightClientNextBlockError] {
	return newMethod[*LightClientBlockView, LightClientNextBlockError](NextLightClientBlockMethod, validated(req, nil))
}

func NetworkInfo() Method[NetworkInfoView, NetworkInfoError] {
	return newMethod[NetworkInfoView, NetworkInfoError](NetworkInfoMethod, nil)
}

// Query runs one of the query request types. Decode the result with the
// QueryResponse accessor matching req.RequestType.
func Query(req QueryRequest) Method[QueryResponse, QueryError] {
	return newMethod[QueryResponse, QueryError](QueryMethod, validated(req, nil))
}

// Status returns the node status.
//
// Example:
//
//	status, err := rpc.Call(ctx, client, rpc.Status())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(status.ChainID)
func Status() Method[StatusResponse, StatusError] {
	return newMethod[StatusResponse, StatusError](StatusMethod, nil)
}

// Tx returns the final outcome of a transaction.
//
// Nodes that predate structured errors report invalid transactions as
// {"TxExecutionError":{"InvalidTxError":...}}; those still surface as a
// TransactionError named INVALID_TRANSACTION.
func Tx(info TransactionInfo) Method[FinalExecutionOutcome, TransactionError] {
	m := newMethod[FinalExecutionOutcome, TransactionError](TxMethod, txInfoParams(info))
	m.fallback = transactionErrorFromData
	return m
}

// Validators returns validator info for the epoch selected by ref. The zero
// EpochReference selects the latest epoch.
func Validators(ref EpochReference) Method[EpochValidatorInfo, ValidatorError] {
	if ref.EpochID == "" && ref.BlockID == nil {
		return newMethod[EpochValidatorInfo, ValidatorError](ValidatorsMethod, positional(nil))
	}
	return newMethod[EpochValidatorInfo, ValidatorError](ValidatorsMethod, validated(ref, nil))
}

// ============================================================================
// Experimental methods
// ============================================================================

func BroadcastTxSync(signedTx []byte) Method[BroadcastTxSyncResponse, TransactionError] {
	return newMethod[BroadcastTxSyncResponse, TransactionError](BroadcastTxSyncMethod, signedTxParams(signedTx))
}

func Changes(req ChangesRequest) Method[StateChangesView, StateChangesError] {
	return newMethod[StateChangesView, StateChangesError](ChangesMethod, validated(req, nil))
}

func ChangesInBlock(ref BlockReference) Method[StateChangesKindsView, StateChangesError] {
	return newMethod[StateChangesKindsView, StateChangesError](ChangesInBlockMethod, validated(ref, nil))
}

// CheckTx validates a signed transaction without submitting it.
func CheckTx(signedTx []byte) Method[BroadcastTxSyncResponse, TransactionError] {
	return newMethod[BroadcastTxSyncResponse, TransactionError](CheckTxMethod, signedTxParams(signedTx))
}

func GenesisConfig() Method[GenesisConfigView, NoError] {
	return newMethod[GenesisConfigView, NoError](GenesisConfigMethod, nil)
}

func ProtocolConfig(ref BlockReference) Method[ProtocolConfigView, ProtocolConfigError] {
	return newMethod[ProtocolConfigView, ProtocolConfigError](ProtocolConfigMethod, validated(ref, nil))
}

func Receipt(req ReceiptRequest) Method[ReceiptView, ReceiptError] {
	return newMethod[ReceiptView, ReceiptError](ReceiptMethod, validated(req, nil))
}

// TxStatus is Tx with the receipts of the transaction included.
func TxStatus(info TransactionInfo) Method[FinalExecutionOutcomeWithReceipts, TransactionError] {
	m := newMethod[FinalExecutionOutcomeWithReceipts, TransactionError](TxStatusMethod, txInfoParams(info))
	m.fallback = transactionErrorFromData
	return m
}

// ValidatorsOrdered returns the ordered block producers at blockID, or at the
// latest block when blockID is nil.
func ValidatorsOrdered(blockID *BlockID) Method[[]ValidatorStakeView, ValidatorError] {
	params := struct {
		BlockID *BlockID `json:"block_id"`
	}{BlockID: blockID}
	return newMethod[[]ValidatorStakeView, ValidatorError](ValidatorsOrderedMethod, bare(params))
}

// ============================================================================
// Admin methods
// ============================================================================

// SandboxPatchState overwrites state records on a sandbox node.
func SandboxPatchState(req SandboxPatchStateRequest) AdminMethod[Empty, SandboxPatchStateError] {
	return newAdminMethod[Empty, SandboxPatchStateError](SandboxPatchStateMethod, validated(req, nil))
}

func AdvSetWeight(height uint64) AdminMethod[Empty, NoError] {
	return newAdminMethod[Empty, NoError](AdvSetWeightMethod, bare(height))
}

func AdvDisableHeaderSync() AdminMethod[Empty, NoError] {
	return newAdminMethod[Empty, NoError](AdvDisableHeaderSyncMethod, nil)
}

func AdvDisableDoomslug() AdminMethod[Empty, NoError] {
	return newAdminMethod[Empty, NoError](AdvDisableDoomslugMethod, nil)
}

// AdvProduceBlocks asks the node to produce n blocks, only valid ones when
// onlyValid is set.
func AdvProduceBlocks(n uint64, onlyValid bool) AdminMethod[Empty, NoError] {
	return newAdminMethod[Empty, NoError](AdvProduceBlocksMethod, positional(n, onlyValid))
}

func AdvSwitchToHeight(height uint64) AdminMethod[Empty, NoError] {
	return newAdminMethod[Empty, NoError](AdvSwitchToHeightMethod, positional(height))
}

func AdvGetSavedBlocks() AdminMethod[uint64, NoError] {
	return newAdminMethod[uint64, NoError](AdvGetSavedBlocksMethod, nil)
}

func AdvCheckStore() AdminMethod[uint64, NoError] {
	return newAdminMethod[uint64, NoError](AdvCheckStoreMethod, nil)
}
