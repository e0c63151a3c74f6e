package handlers

import "github.com/luno/spawnpick/server/ops"

type Deps interface {
	Tables() *ops.Tables
}
