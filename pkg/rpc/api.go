package rpc

// ============================================================================
// Protocol
// ============================================================================

// JSONRPCVersion is the protocol tag carried by every envelope.
const JSONRPCVersion = "2.0"

// ============================================================================
// RPC Method Constants
// ============================================================================

// MethodName is the wire name of a NEAR JSON-RPC method.
type MethodName string

const (
	// BlockMethod returns a block by finality or id.
	BlockMethod MethodName = "block"
	// BroadcastTxAsyncMethod submits a transaction and returns its hash immediately.
	BroadcastTxAsyncMethod MethodName = "broadcast_tx_async"
	// BroadcastTxCommitMethod submits a transaction and waits for its final outcome.
	BroadcastTxCommitMethod MethodName = "broadcast_tx_commit"
	// ChunkMethod returns a chunk by hash or by block and shard.
	ChunkMethod MethodName = "chunk"
	// GasPriceMethod returns the gas price at a block, or the latest one.
	GasPriceMethod MethodName = "gas_price"
	// HealthMethod returns null while the node is healthy.
	HealthMethod MethodName = "health"
	// LightClientProofMethod returns an execution outcome proof for light clients.
	LightClientProofMethod MethodName = "light_client_proof"
	// NextLightClientBlockMethod returns the next light client block after a given hash.
	NextLightClientBlockMethod MethodName = "next_light_client_block"
	// NetworkInfoMethod returns peer and producer connectivity.
	NetworkInfoMethod MethodName = "network_info"
	// QueryMethod reads accounts, access keys, contract state and view calls.
	QueryMethod MethodName = "query"
	// StatusMethod returns node version, chain id and sync state.
	StatusMethod MethodName = "status"
	// TxMethod returns the final outcome of a transaction.
	TxMethod MethodName = "tx"
	// ValidatorsMethod returns validator info for an epoch.
	ValidatorsMethod MethodName = "validators"

	// BroadcastTxSyncMethod submits a transaction and waits for it to be routed.
	BroadcastTxSyncMethod MethodName = "EXPERIMENTAL_broadcast_tx_sync"
	// ChangesMethod returns state changes of a given kind in a block.
	ChangesMethod MethodName = "EXPERIMENTAL_changes"
	// ChangesInBlockMethod returns the kinds of state changes in a block.
	ChangesInBlockMethod MethodName = "EXPERIMENTAL_changes_in_block"
	// CheckTxMethod validates a transaction without submitting it.
	CheckTxMethod MethodName = "EXPERIMENTAL_check_tx"
	// GenesisConfigMethod returns the genesis configuration.
	GenesisConfigMethod MethodName = "EXPERIMENTAL_genesis_config"
	// ProtocolConfigMethod returns the protocol configuration at a block.
	ProtocolConfigMethod MethodName = "EXPERIMENTAL_protocol_config"
	// ReceiptMethod returns a receipt by id.
	ReceiptMethod MethodName = "EXPERIMENTAL_receipt"
	// TxStatusMethod returns a transaction outcome together with its receipts.
	TxStatusMethod MethodName = "EXPERIMENTAL_tx_status"
	// ValidatorsOrderedMethod returns block producers in order.
	ValidatorsOrderedMethod MethodName = "EXPERIMENTAL_validators_ordered"

	// SandboxPatchStateMethod overwrites state records on a sandbox node (auth required).
	SandboxPatchStateMethod MethodName = "sandbox_patch_state"

	// AdvSetWeightMethod sets the block weight on an adversarial node (auth required).
	AdvSetWeightMethod MethodName = "adv_set_weight"
	// AdvDisableHeaderSyncMethod disables header sync (auth required).
	AdvDisableHeaderSyncMethod MethodName = "adv_disable_header_sync"
	// AdvDisableDoomslugMethod disables doomslug finality (auth required).
	AdvDisableDoomslugMethod MethodName = "adv_disable_doomslug"
	// AdvProduceBlocksMethod produces blocks on demand (auth required).
	AdvProduceBlocksMethod MethodName = "adv_produce_blocks"
	// AdvSwitchToHeightMethod rewinds the chain head (auth required).
	AdvSwitchToHeightMethod MethodName = "adv_switch_to_height"
	// AdvGetSavedBlocksMethod returns the number of saved blocks (auth required).
	AdvGetSavedBlocksMethod MethodName = "adv_get_saved_blocks"
	// AdvCheckStoreMethod runs a store consistency check (auth required).
	AdvCheckStoreMethod MethodName = "adv_check_store"
)

// String returns the wire name.
func (m MethodName) String() string {
	return string(m)
}

// ============================================================================
// Plain HTTP Endpoints
// ============================================================================

// Endpoint is a path served by a NEAR node outside of JSON-RPC.
type Endpoint string

const (
	StatusEndpoint      Endpoint = "status"
	HealthEndpoint      Endpoint = "health"
	NetworkInfoEndpoint Endpoint = "network_info"
	MetricsEndpoint     Endpoint = "metrics"
)
