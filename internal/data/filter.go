package data

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// AddressFilter holds the connection blacklist and the whitelist of
// addresses granted elevated rights on first login. Populated once at
// bootstrap, read-only afterwards, so it is safe to consult from any
// goroutine.
type AddressFilter struct {
	allow map[string]struct{}
	deny  map[string]struct{}
}

type filterFile struct {
	Whitelist []string `yaml:"whitelist"`
	Blacklist []string `yaml:"blacklist"`
}

// LoadAddressFilter parses the filter file. A missing file yields an empty
// filter rather than an error; a server with no whitelist is valid.
func LoadAddressFilter(path string) (*AddressFilter, error) {
	f := &AddressFilter{
		allow: make(map[string]struct{}),
		deny:  make(map[string]struct{}),
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read address filter: %w", err)
	}
	var file filterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse address filter: %w", err)
	}
	for _, addr := range file.Whitelist {
		f.allow[addr] = struct{}{}
	}
	for _, addr := range file.Blacklist {
		f.deny[addr] = struct{}{}
	}
	return f, nil
}

// Allowlisted reports whether an address earns elevated first-login rights.
func (f *AddressFilter) Allowlisted(addr string) bool {
	_, ok := f.allow[hostOnly(addr)]
	return ok
}

// Blocked reports whether an address is refused at the accept boundary.
func (f *AddressFilter) Blocked(addr string) bool {
	_, ok := f.deny[hostOnly(addr)]
	return ok
}

// Counts returns (whitelist, blacklist) sizes for the startup report.
func (f *AddressFilter) Counts() (int, int) {
	return len(f.allow), len(f.deny)
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
