package engine

import "github.com/pelletier/go-toml"

// Options are the two recognized runtime knobs: whether to write a peer
// bookmark on every accepted op, and the advisory log-size threshold at
// which the Host may want to request a snapshot.
type Options struct {
	Bookmarking bool `toml:"bookmarking"`
	MaxLogSize  int  `toml:"max_log_size"`
}

// DefaultOptions matches the documented defaults: bookmarking off,
// advisory log-size threshold 10. The engine itself does not count ops
// against MaxLogSize.
func DefaultOptions() Options {
	return Options{Bookmarking: false, MaxLogSize: 10}
}

// LoadOptions reads Options from a TOML file, falling back to
// DefaultOptions for any field the file omits.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	tree, err := toml.LoadFile(path)
	if err != nil {
		return Options{}, err
	}
	if err := tree.Unmarshal(&opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
