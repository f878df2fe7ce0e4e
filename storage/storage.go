// Package storage provides durable backends for the namespaced state blobs
// written by a shopstate.Session. Each backend keys a blob by profile id and
// namespace and treats its content as opaque bytes.
package storage

import (
	"github.com/CreativeUnicorns/shopstate"
)

var (
	_ shopstate.Storage = (*MemoryStorage)(nil)
	_ shopstate.Storage = (*SQLiteStorage)(nil)
	_ shopstate.Storage = (*PostgresStorage)(nil)
)
