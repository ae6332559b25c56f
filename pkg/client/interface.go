package client

import (
	"context"

	"github.com/fr3shw3b/varsync/pkg/engine"
)

type Client interface {
	Connect() error
	// Bind keeps the declared slots of scope in sync with channel until
	// ctx is done or the client is closed.
	Bind(ctx context.Context, channel string, scope engine.Scope, decls []engine.Declaration) *engine.Attachment
	Get(channel string, names ...string)
	Set(channel string, values map[string]interface{})
	Engine() *engine.Engine
	Close() error
}
