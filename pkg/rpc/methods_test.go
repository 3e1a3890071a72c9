package rpc_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erc7824/nitrolite/nearrpc/pkg/rpc"
)

type describedMethod interface {
	Name() rpc.MethodName
	Params() (json.RawMessage, error)
}

func TestMethods_Params(t *testing.T) {
	t.Parallel()

	shard := uint64(0)
	prefix := ""
	args := "e30="

	tests := []struct {
		name       string
		method     describedMethod
		wantName   rpc.MethodName
		wantParams string
	}{
		{name: "status", method: rpc.Status(), wantName: "status", wantParams: `[]`},
		{name: "health", method: rpc.Health(), wantName: "health", wantParams: `[]`},
		{name: "network info", method: rpc.NetworkInfo(), wantName: "network_info", wantParams: `[]`},
		{name: "genesis config", method: rpc.GenesisConfig(), wantName: "EXPERIMENTAL_genesis_config", wantParams: `[]`},
		{
			name:       "block by finality",
			method:     rpc.Block(rpc.AtFinality(rpc.FinalityFinal)),
			wantName:   "block",
			wantParams: `{"finality":"final"}`,
		},
		{
			name:       "block by hash",
			method:     rpc.Block(rpc.AtBlock(rpc.BlockHash("7nsuuitwS7xcdGnD9JgrE22cRB2vf2VS4yh1N9S71F4d"))),
			wantName:   "block",
			wantParams: `{"block_id":"7nsuuitwS7xcdGnD9JgrE22cRB2vf2VS4yh1N9S71F4d"}`,
		},
		{
			name:       "block at genesis",
			method:     rpc.Block(rpc.AtCheckpoint("genesis")),
			wantName:   "block",
			wantParams: `{"sync_checkpoint":"genesis"}`,
		},
		{
			name:       "chunk by id",
			method:     rpc.Chunk(rpc.ChunkRequest{ChunkID: "EBM2qg5cGr47EjMPtH88uvmXHDHqmWPzKaQadbWhdw22"}),
			wantName:   "chunk",
			wantParams: `{"chunk_id":"EBM2qg5cGr47EjMPtH88uvmXHDHqmWPzKaQadbWhdw22"}`,
		},
		{
			name:       "chunk by block and shard",
			method:     rpc.Chunk(rpc.ChunkRequest{BlockID: ptr(rpc.BlockHeight(58934027)), ShardID: &shard}),
			wantName:   "chunk",
			wantParams: `{"block_id":58934027,"shard_id":0}`,
		},
		{name: "latest gas price", method: rpc.GasPrice(nil), wantName: "gas_price", wantParams: `[null]`},
		{
			name:       "gas price at height",
			method:     rpc.GasPrice(ptr(rpc.BlockHeight(17824600))),
			wantName:   "gas_price",
			wantParams: `[17824600]`,
		},
		{
			name:       "tx by hash",
			method:     rpc.Tx(rpc.TxByHash(testTxHash, testSender)),
			wantName:   "tx",
			wantParams: `["9FtHUFBQsZ2MG77K3x3MJ9wjX3UT8zE1TczCrhZEcG8U","miraclx.testnet"]`,
		},
		{
			name:       "tx by signed transaction",
			method:     rpc.Tx(rpc.TxBySigned([]byte("signed"))),
			wantName:   "tx",
			wantParams: `["c2lnbmVk"]`,
		},
		{
			name:       "tx status",
			method:     rpc.TxStatus(rpc.TxByHash(testTxHash, testSender)),
			wantName:   "EXPERIMENTAL_tx_status",
			wantParams: `["9FtHUFBQsZ2MG77K3x3MJ9wjX3UT8zE1TczCrhZEcG8U","miraclx.testnet"]`,
		},
		{name: "broadcast async", method: rpc.BroadcastTxAsync([]byte{0xff}), wantName: "broadcast_tx_async", wantParams: `["/w=="]`},
		{name: "broadcast commit", method: rpc.BroadcastTxCommit([]byte{0xff}), wantName: "broadcast_tx_commit", wantParams: `["/w=="]`},
		{name: "broadcast sync", method: rpc.BroadcastTxSync([]byte{0xff}), wantName: "EXPERIMENTAL_broadcast_tx_sync", wantParams: `["/w=="]`},
		{name: "check tx", method: rpc.CheckTx([]byte{0xff}), wantName: "EXPERIMENTAL_check_tx", wantParams: `["/w=="]`},
		{
			name: "query call function",
			method: rpc.Query(rpc.QueryRequest{
				BlockReference: rpc.AtFinality(rpc.FinalityOptimistic),
				RequestType:    rpc.CallFunction,
				AccountID:      "guest-book.testnet",
				MethodName:     "getMessages",
				ArgsBase64:     &args,
			}),
			wantName:   "query",
			wantParams: `{"finality":"optimistic","request_type":"call_function","account_id":"guest-book.testnet","method_name":"getMessages","args_base64":"e30="}`,
		},
		{
			name: "query view state with empty prefix",
			method: rpc.Query(rpc.QueryRequest{
				BlockReference: rpc.AtFinality(rpc.FinalityFinal),
				RequestType:    rpc.ViewState,
				AccountID:      "guest-book.testnet",
				PrefixBase64:   &prefix,
			}),
			wantName:   "query",
			wantParams: `{"finality":"final","request_type":"view_state","account_id":"guest-book.testnet","prefix_base64":""}`,
		},
		{name: "latest validators", method: rpc.Validators(rpc.EpochReference{}), wantName: "validators", wantParams: `[null]`},
		{
			name:       "validators by epoch",
			method:     rpc.Validators(rpc.EpochReference{EpochID: "8hJ3Kx8pY9ZWKCmm1LHJpRbzzYbRBaWCHFRHfKrjt1xf"}),
			wantName:   "validators",
			wantParams: `{"epoch_id":"8hJ3Kx8pY9ZWKCmm1LHJpRbzzYbRBaWCHFRHfKrjt1xf"}`,
		},
		{name: "validators ordered", method: rpc.ValidatorsOrdered(nil), wantName: "EXPERIMENTAL_validators_ordered", wantParams: `{"block_id":null}`},
		{
			name: "changes",
			method: rpc.Changes(rpc.ChangesRequest{
				BlockReference: rpc.AtFinality(rpc.FinalityFinal),
				ChangesType:    rpc.AccountChanges,
				AccountIDs:     []rpc.AccountID{"alice.testnet"},
			}),
			wantName:   "EXPERIMENTAL_changes",
			wantParams: `{"finality":"final","changes_type":"account_changes","account_ids":["alice.testnet"]}`,
		},
		{
			name:       "changes in block",
			method:     rpc.ChangesInBlock(rpc.AtBlock(rpc.BlockHeight(1))),
			wantName:   "EXPERIMENTAL_changes_in_block",
			wantParams: `{"block_id":1}`,
		},
		{
			name:       "protocol config",
			method:     rpc.ProtocolConfig(rpc.AtFinality(rpc.FinalityFinal)),
			wantName:   "EXPERIMENTAL_protocol_config",
			wantParams: `{"finality":"final"}`,
		},
		{
			name:       "receipt",
			method:     rpc.Receipt(rpc.ReceiptRequest{ReceiptID: "2EbembRPJhREPtmHCrGv3Xtdm3xoc5BMVYHm3b2kjvMY"}),
			wantName:   "EXPERIMENTAL_receipt",
			wantParams: `{"receipt_id":"2EbembRPJhREPtmHCrGv3Xtdm3xoc5BMVYHm3b2kjvMY"}`,
		},
		{
			name: "light client proof",
			method: rpc.LightClientProof(rpc.LightClientProofRequest{
				Type:            "transaction",
				TransactionHash: testTxHash,
				SenderID:        testSender,
				LightClientHead: "14gQvvYkY2MrKxikmSoEF5nmgwnrQZqU6kmfxdQSSSDq",
			}),
			wantName:   "light_client_proof",
			wantParams: `{"type":"transaction","transaction_hash":"9FtHUFBQsZ2MG77K3x3MJ9wjX3UT8zE1TczCrhZEcG8U","sender_id":"miraclx.testnet","light_client_head":"14gQvvYkY2MrKxikmSoEF5nmgwnrQZqU6kmfxdQSSSDq"}`,
		},
		{
			name:       "next light client block",
			method:     rpc.NextLightClientBlock(rpc.NextLightClientBlockRequest{LastBlockHash: "2Cs5bqMeyGE2ThrzTUu4yGTG3ajrkaw9CDXZPg6xFnFD"}),
			wantName:   "next_light_client_block",
			wantParams: `{"last_block_hash":"2Cs5bqMeyGE2ThrzTUu4yGTG3ajrkaw9CDXZPg6xFnFD"}`,
		},
		{
			name:       "sandbox patch state",
			method:     rpc.SandboxPatchState(rpc.SandboxPatchStateRequest{Records: []json.RawMessage{json.RawMessage(`{"Account":{}}`)}}),
			wantName:   "sandbox_patch_state",
			wantParams: `{"records":[{"Account":{}}]}`,
		},
		{name: "adv set weight", method: rpc.AdvSetWeight(10), wantName: "adv_set_weight", wantParams: `10`},
		{name: "adv disable header sync", method: rpc.AdvDisableHeaderSync(), wantName: "adv_disable_header_sync", wantParams: `[]`},
		{name: "adv disable doomslug", method: rpc.AdvDisableDoomslug(), wantName: "adv_disable_doomslug", wantParams: `[]`},
		{name: "adv produce blocks", method: rpc.AdvProduceBlocks(3, false), wantName: "adv_produce_blocks", wantParams: `[3,false]`},
		{name: "adv switch to height", method: rpc.AdvSwitchToHeight(99), wantName: "adv_switch_to_height", wantParams: `[99]`},
		{name: "adv get saved blocks", method: rpc.AdvGetSavedBlocks(), wantName: "adv_get_saved_blocks", wantParams: `[]`},
		{name: "adv check store", method: rpc.AdvCheckStore(), wantName: "adv_check_store", wantParams: `[]`},
	}

	seen := make(map[rpc.MethodName]struct{})
	for _, tc := range tests {
		seen[tc.method.Name()] = struct{}{}

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.wantName, tc.method.Name())
			params, err := tc.method.Params()
			require.NoError(t, err)
			assert.JSONEq(t, tc.wantParams, string(params))
		})
	}
	assert.Len(t, seen, 30, "every wire name is covered")
}

func TestMethods_InvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method describedMethod
	}{
		{name: "block without reference", method: rpc.Block(rpc.BlockReference{})},
		{
			name: "block with two references",
			method: rpc.Block(rpc.BlockReference{
				Finality: rpc.FinalityFinal,
				BlockID:  ptr(rpc.BlockHeight(1)),
			}),
		},
		{name: "unknown finality", method: rpc.Block(rpc.AtFinality("soon"))},
		{name: "unknown checkpoint", method: rpc.Block(rpc.AtCheckpoint("latest"))},
		{name: "chunk without selector", method: rpc.Chunk(rpc.ChunkRequest{})},
		{name: "chunk block without shard", method: rpc.Chunk(rpc.ChunkRequest{BlockID: ptr(rpc.BlockHeight(1))})},
		{name: "tx without identity", method: rpc.Tx(rpc.TransactionInfo{})},
		{name: "tx hash without sender", method: rpc.Tx(rpc.TransactionInfo{Hash: testTxHash})},
		{
			name: "tx hash and signed form",
			method: rpc.Tx(rpc.TransactionInfo{
				Hash:              testTxHash,
				SenderAccountID:   testSender,
				SignedTransaction: []byte("signed"),
			}),
		},
		{name: "tx bad sender", method: rpc.TxStatus(rpc.TxByHash(testTxHash, "Not A Valid Account"))},
		{name: "empty signed transaction", method: rpc.BroadcastTxCommit(nil)},
		{
			name: "query bad account",
			method: rpc.Query(rpc.QueryRequest{
				BlockReference: rpc.AtFinality(rpc.FinalityFinal),
				RequestType:    rpc.ViewAccount,
				AccountID:      "Not A Valid Account",
			}),
		},
		{
			name: "query call function without method",
			method: rpc.Query(rpc.QueryRequest{
				BlockReference: rpc.AtFinality(rpc.FinalityFinal),
				RequestType:    rpc.CallFunction,
				AccountID:      "guest-book.testnet",
			}),
		},
		{
			name: "query unknown type",
			method: rpc.Query(rpc.QueryRequest{
				BlockReference: rpc.AtFinality(rpc.FinalityFinal),
				RequestType:    "view_everything",
				AccountID:      "guest-book.testnet",
			}),
		},
		{
			name:   "validators with epoch and block",
			method: rpc.Validators(rpc.EpochReference{EpochID: "e", BlockID: ptr(rpc.BlockHeight(1))}),
		},
		{name: "receipt without id", method: rpc.Receipt(rpc.ReceiptRequest{})},
		{name: "light client proof without head", method: rpc.LightClientProof(rpc.LightClientProofRequest{Type: "receipt", ReceiptID: "r", ReceiverID: "bob.testnet"})},
		{name: "sandbox patch without records", method: rpc.SandboxPatchState(rpc.SandboxPatchStateRequest{})},
		{
			name: "changes without accounts",
			method: rpc.Changes(rpc.ChangesRequest{
				BlockReference: rpc.AtFinality(rpc.FinalityFinal),
				ChangesType:    rpc.AccountChanges,
			}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.method.Params()
			assert.Error(t, err)
		})
	}
}

func TestMethod_ZeroValue(t *testing.T) {
	t.Parallel()

	var m rpc.Method[rpc.StatusResponse, rpc.StatusError]
	assert.Empty(t, m.Name())
}
