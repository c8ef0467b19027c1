// Package qgate is an approval-gated gateway between an untrusted sandboxed
// app and the wallet host. The app sends action messages; every action that
// discloses data or spends funds is confirmed by the operator before the
// host signs anything.
//
//	srv, err := qgate.New(ctx, qgate.WithConfig(cfg))
//	if err != nil {
//		return err
//	}
//	defer srv.Shutdown(ctx)
//	return srv.Serve(ctx)
//
// The app connects over a websocket at /app; operators decide pending
// approvals on the console or through the HTTP API.
package qgate
