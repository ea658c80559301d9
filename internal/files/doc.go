// Package files inspects the data directory holding the source CSV exports.
//
// Discovery lists the CSV files present and builds an Inventory against the
// expected file names, which the health endpoint reports so an operator can
// see which export is missing before a refresh fails.
//
//	inv, err := files.NewDiscovery(dataDir).Inventory(domain.RequiredFiles, domain.OptionalFiles)
//	if err == nil && !inv.Complete() {
//	    // inv.MissingRequired names the absent files
//	}
package files
