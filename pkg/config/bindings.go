package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/fr3shw3b/varsync/pkg/engine"
)

// Bindings is the binding declaration file:
//
//	[[bind]]
//	channel = "lobby"
//	[bind.vars]
//	name = "%name"
//	log = "#log"
type Bindings struct {
	Bind []ChannelBinding `toml:"bind"`
}

type ChannelBinding struct {
	Channel string            `toml:"channel"`
	Vars    map[string]string `toml:"vars"`
}

func (b ChannelBinding) Declarations() []engine.Declaration {
	return engine.Declarations(b.Vars)
}

func LoadBindings(path string) (*Bindings, error) {
	bindings := &Bindings{}
	if _, err := toml.DecodeFile(path, bindings); err != nil {
		return nil, fmt.Errorf("bindings load failed (%s): %w", path, err)
	}
	if err := bindings.check(); err != nil {
		return nil, fmt.Errorf("bindings invalid (%s): %w", path, err)
	}
	return bindings, nil
}

func ParseBindings(data string) (*Bindings, error) {
	bindings := &Bindings{}
	if _, err := toml.Decode(data, bindings); err != nil {
		return nil, err
	}
	if err := bindings.check(); err != nil {
		return nil, err
	}
	return bindings, nil
}

func (b *Bindings) check() error {
	for i, bind := range b.Bind {
		if bind.Channel == "" {
			return fmt.Errorf("[[bind]] #%d: no channel set", i+1)
		}
		if len(bind.Vars) == 0 {
			return fmt.Errorf("[[bind]] %s: no vars declared", bind.Channel)
		}
	}
	return nil
}
