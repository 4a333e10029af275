// Package netatmo provides a Go client library for the Netatmo smart home
// cloud API.
//
// The library covers the OAuth2 token lifecycle, the home topology and
// device status catalog, the static device capability model, and state
// change commands for switches, dimmers, shutters, cameras and thermostats.
//
// # Authentication
//
// Authentication runs through an AuthSession, which owns the tokens and
// refreshes them transparently:
//
//	session, err := netatmo.NewAuthSession(netatmo.Credentials{
//	    ClientID:     "your-client-id",
//	    ClientSecret: "your-client-secret",
//	    Username:     "user@example.com",
//	    Password:     "secret",
//	    Scopes:       netatmo.DefaultScopes(),
//	}, netatmo.WithTokenStore(netatmo.NewFileTokenStore("/path/to/tokens.json")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.Authenticate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Any number of goroutines may call methods on a client backed by the same
// session; when the access token expires, exactly one refresh runs and all
// callers share its result.
//
// # Basic Usage
//
// Build a client and load the account's device catalog:
//
//	client, err := netatmo.NewClient(session)
//	account := netatmo.NewAccount(client)
//	snap, err := account.UpdateAll(ctx)
//	for _, home := range snap.Homes {
//	    for _, mod := range home.ModulesInOrder() {
//	        fmt.Printf("%s (%s): %v\n", mod.Name, mod.Type, mod.Capabilities)
//	    }
//	}
//
// Read measurements through typed accessors, which distinguish a value the
// device never reported from a reported zero:
//
//	if temp, ok := mod.Temperature(); ok {
//	    fmt.Printf("%.1f C\n", temp)
//	}
//
// Change device state:
//
//	req, err := snap.SetShutterPosition(moduleID, netatmo.ShutterOpen)
//	if err != nil {
//	    log.Fatal(err) // e.g. ErrUnsupportedCapability
//	}
//	err = client.SetState(ctx, req)
//
// # Error Handling
//
// Errors are inspectable with errors.Is and the Is* helpers:
//
//	if netatmo.IsInvalidCredentials(err) {
//	    // re-prompt the user
//	}
//	if netatmo.IsRetryable(err) {
//	    // back off and try again
//	}
package netatmo
