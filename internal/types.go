package internal

import "context"

// Configurer is implemented by anything that can be configured from
// a map of environment variables
type Configurer interface {
	Configure(envs map[string]string) error
}

type Opener interface {
	Open(ctx context.Context) error
	Closer
}

type Closer interface {
	Close(ctx context.Context) error
}

type Clearer interface {
	Clear(ctx context.Context) error
}

// Addresser returns the address something is reachable at once opened
type Addresser interface {
	Address() string
}
