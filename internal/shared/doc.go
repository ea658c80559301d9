// Package shared holds helpers used by more than one package. It contains no
// business logic.
//
// The testutil subpackage provides the buffered slog handler with log
// assertions and the sales CSV fixture used by the loader, service, handler
// and command tests:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    dir := testutil.WriteSalesFixture(t)
//	    // ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "raw data loaded")
//	}
package shared
