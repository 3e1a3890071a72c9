package rpc

import (
	"encoding/json"
	"fmt"
)

// ErrorInfo holds the details a node attaches to a business error. Which
// fields are set depends on the error name.
type ErrorInfo struct {
	ErrorMessage             string          `json:"error_message,omitempty"`
	RequestedTransactionHash CryptoHash      `json:"requested_transaction_hash,omitempty"`
	TransactionHash          CryptoHash      `json:"transaction_hash,omitempty"`
	ReceiptID                CryptoHash      `json:"receipt_id,omitempty"`
	ChunkHash                CryptoHash      `json:"chunk_hash,omitempty"`
	ShardID                  *uint64         `json:"shard_id,omitempty"`
	BlockReference           json.RawMessage `json:"block_reference,omitempty"`
	BlockHeight              uint64          `json:"block_height,omitempty"`
	BlockHash                CryptoHash      `json:"block_hash,omitempty"`
	EpochID                  json.RawMessage `json:"epoch_id,omitempty"`
	RequestedAccountID       AccountID       `json:"requested_account_id,omitempty"`
	ContractAccountID        AccountID       `json:"contract_account_id,omitempty"`
	PublicKey                PublicKey       `json:"public_key,omitempty"`
	VMError                  string          `json:"vm_error,omitempty"`
	Elapsed                  json.RawMessage `json:"elapsed,omitempty"`
	Context                  json.RawMessage `json:"context,omitempty"`
}

func formatBusinessError(name string, info ErrorInfo) string {
	if info.ErrorMessage != "" {
		return fmt.Sprintf("%s: %s", name, info.ErrorMessage)
	}
	return name
}

type BlockError struct {
	Name string    `json:"name" validate:"required,oneof=UNKNOWN_BLOCK NOT_SYNCED_YET INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e BlockError) Error() string { return formatBusinessError(e.Name, e.Info) }

type ChunkError struct {
	Name string    `json:"name" validate:"required,oneof=INTERNAL_ERROR UNKNOWN_BLOCK INVALID_SHARD_ID UNKNOWN_CHUNK"`
	Info ErrorInfo `json:"info"`
}

func (e ChunkError) Error() string { return formatBusinessError(e.Name, e.Info) }

type GasPriceError struct {
	Name string    `json:"name" validate:"required,oneof=INTERNAL_ERROR UNKNOWN_BLOCK"`
	Info ErrorInfo `json:"info"`
}

func (e GasPriceError) Error() string { return formatBusinessError(e.Name, e.Info) }

type StatusError struct {
	Name string    `json:"name" validate:"required,oneof=NODE_IS_SYNCING NO_NEW_BLOCKS EPOCH_OUT_OF_BOUNDS INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e StatusError) Error() string { return formatBusinessError(e.Name, e.Info) }

type NetworkInfoError struct {
	Name string    `json:"name" validate:"required,oneof=INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e NetworkInfoError) Error() string { return formatBusinessError(e.Name, e.Info) }

type QueryError struct {
	Name string    `json:"name" validate:"required,oneof=NO_SYNCED_BLOCKS UNAVAILABLE_SHARD GARBAGE_COLLECTED_BLOCK UNKNOWN_BLOCK INVALID_ACCOUNT UNKNOWN_ACCOUNT NO_CONTRACT_CODE TOO_LARGE_CONTRACT_STATE UNKNOWN_ACCESS_KEY CONTRACT_EXECUTION_ERROR INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e QueryError) Error() string { return formatBusinessError(e.Name, e.Info) }

// TransactionError is the business error of tx, EXPERIMENTAL_tx_status and
// the broadcast methods.
type TransactionError struct {
	Name string    `json:"name" validate:"required,oneof=INVALID_TRANSACTION DOES_NOT_TRACK_SHARD REQUEST_ROUTED UNKNOWN_TRANSACTION INTERNAL_ERROR TIMEOUT_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e TransactionError) Error() string { return formatBusinessError(e.Name, e.Info) }

// transactionErrorFromData recognises the legacy error data of transaction
// methods, {"TxExecutionError": {"InvalidTxError": ...}}, which predates the
// structured form. Other payloads are left to the caller.
func transactionErrorFromData(data json.RawMessage) (TransactionError, bool, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return TransactionError{}, false, nil
	}
	raw, ok := envelope["TxExecutionError"]
	if !ok {
		return TransactionError{}, false, nil
	}

	var execErr map[string]json.RawMessage
	if err := json.Unmarshal(raw, &execErr); err != nil {
		return TransactionError{}, true, fmt.Errorf("invalid TxExecutionError: %w", err)
	}
	invalidTx, ok := execErr["InvalidTxError"]
	if !ok {
		return TransactionError{}, false, nil
	}

	return TransactionError{
		Name: "INVALID_TRANSACTION",
		Info: ErrorInfo{Context: invalidTx},
	}, true, nil
}

type ValidatorError struct {
	Name string    `json:"name" validate:"required,oneof=UNKNOWN_EPOCH VALIDATOR_INFO_UNAVAILABLE INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e ValidatorError) Error() string { return formatBusinessError(e.Name, e.Info) }

type LightClientProofError struct {
	Name string    `json:"name" validate:"required,oneof=UNKNOWN_BLOCK INCONSISTENT_STATE NOT_CONFIRMED UNKNOWN_TRANSACTION_OR_RECEIPT UNAVAILABLE_SHARD INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e LightClientProofError) Error() string { return formatBusinessError(e.Name, e.Info) }

type LightClientNextBlockError struct {
	Name string    `json:"name" validate:"required,oneof=INTERNAL_ERROR UNKNOWN_BLOCK EPOCH_OUT_OF_BOUNDS"`
	Info ErrorInfo `json:"info"`
}

func (e LightClientNextBlockError) Error() string { return formatBusinessError(e.Name, e.Info) }

type StateChangesError struct {
	Name string    `json:"name" validate:"required,oneof=UNKNOWN_BLOCK NOT_SYNCED_YET UNAVAILABLE_SHARD INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e StateChangesError) Error() string { return formatBusinessError(e.Name, e.Info) }

type ProtocolConfigError struct {
	Name string    `json:"name" validate:"required,oneof=UNKNOWN_BLOCK INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e ProtocolConfigError) Error() string { return formatBusinessError(e.Name, e.Info) }

type ReceiptError struct {
	Name string    `json:"name" validate:"required,oneof=INTERNAL_ERROR UNKNOWN_RECEIPT"`
	Info ErrorInfo `json:"info"`
}

func (e ReceiptError) Error() string { return formatBusinessError(e.Name, e.Info) }

type SandboxPatchStateError struct {
	Name string    `json:"name" validate:"required,oneof=INTERNAL_ERROR"`
	Info ErrorInfo `json:"info"`
}

func (e SandboxPatchStateError) Error() string { return formatBusinessError(e.Name, e.Info) }
