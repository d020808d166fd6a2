package data

import (
	"github.com/evergreen-ci/clasp"
)

// EnvConnector implements Connector on top of an environment's queue and
// result cache.
type EnvConnector struct {
	env clasp.Environment
}

func CreateEnvConnector(env clasp.Environment) Connector {
	return &EnvConnector{
		env: env,
	}
}
