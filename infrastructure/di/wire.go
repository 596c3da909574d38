//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
)

// InitializeContainer wires the full application graph
func InitializeContainer(path ConfigPath) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
