package hostblock

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/hostsfile"
)

// emptyStorage is a [hostsfile.Storage] that contains no records.
type emptyStorage [0]hostsfile.Record

// type check
var _ hostsfile.Storage = emptyStorage{}

// ByAddr implements the [hostsfile.Storage] interface for [emptyStorage].
func (emptyStorage) ByAddr(_ netip.Addr) (names []string) {
	return nil
}

// ByName implements the [hostsfile.Storage] interface for [emptyStorage].
func (emptyStorage) ByName(_ string) (addrs []netip.Addr) {
	return nil
}

// ReadHosts reads the hosts files from the file system and returns a storage
// with parsed records.  strg is always usable even if an error occurred.
func ReadHosts(paths []string) (strg hostsfile.Storage, err error) {
	// Don't check the error since it may only appear when any readers used.
	defaultStrg, _ := hostsfile.NewDefaultStorage()

	var errs []error
	for _, path := range paths {
		err = readHostsFile(defaultStrg, path)
		if err != nil {
			// Don't wrap the error since it's informative enough as is.
			errs = append(errs, err)
		}
	}

	isEmpty := true
	defaultStrg.RangeAddrs(func(_ string, _ []netip.Addr) (cont bool) {
		isEmpty = false

		return false
	})

	if isEmpty {
		return emptyStorage{}, errors.Join(errs...)
	}

	return defaultStrg, errors.Join(errs...)
}

// readHostsFile reads the hosts file at path and parses it into strg.
func readHostsFile(strg *hostsfile.DefaultStorage, path string) (err error) {
	// #nosec G304 -- Trust the file path from the configuration.
	f, err := os.Open(path)
	if err != nil {
		// Don't wrap the error since it's informative enough as is.
		return err
	}

	defer func() { err = errors.WithDeferred(err, f.Close()) }()

	err = hostsfile.Parse(strg, f, nil)
	if err != nil {
		return fmt.Errorf("parsing hosts file %q: %w", path, err)
	}

	return nil
}
