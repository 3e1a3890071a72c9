// Package rpc is a typed client for the JSON-RPC API of NEAR nodes.
//
// Every remote method is described by a Method value built by this package,
// carrying the wire name, the parameter encoding and the result and error
// types. Call sends it and returns either the typed result or one error from
// a fixed set:
//
//   - *TransportError: the request was not delivered, or the response could
//     not be read or was not a JSON-RPC envelope. Safe to retry.
//   - *ServerError: the node answered with a non-200 status (401 and 429
//     match ErrUnauthorized and ErrTooManyRequests).
//   - *HandlerError[E]: the method failed with its typed business error.
//   - *RawHandlerError: the method failed with an error that did not match E.
//   - *ParseError: the result did not match R, or the response id did not
//     match the request.
//
// Clients carry their authentication state in their type. Admin methods
// (sandbox_patch_state, adv_*) are sent with CallAdmin, which only accepts a
// Client[Authenticated].
//
// Basic usage:
//
//	client := rpc.Connect("https://rpc.testnet.near.org")
//	status, err := rpc.Call(ctx, client, rpc.Status())
//	if err != nil {
//	    return err
//	}
//
//	outcome, err := rpc.Call(ctx, client, rpc.Tx(rpc.TxByHash(hash, "alice.testnet")))
//	if txErr, ok := rpc.AsHandlerError[rpc.TransactionError](err); ok {
//	    fmt.Println(txErr.Name)
//	}
//
// Authenticated usage:
//
//	authed := rpc.Authenticate(client, rpc.APIKey(key))
//	_, err = rpc.CallAdmin(ctx, authed, rpc.AdvProduceBlocks(10, true))
package rpc
