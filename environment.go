package clasp

import (
	"sync"

	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/queue"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

var globalEnv *envState

func init()                       { resetEnv() }
func GetEnvironment() Environment { return globalEnv }

func resetEnv() { globalEnv = &envState{name: "global"} }

// Environment objects provide access to shared configuration and
// state. Use NewEnvironment for one that is isolated from the global
// environment, as tests do.
type Environment interface {
	// Configure replaces the configuration, the queue and the result
	// cache.
	Configure(*Configuration) error

	// GetQueue retrieves the application's shared queue, which is cached
	// for easy access from within units or inside of requests or command
	// line operations.
	GetQueue() (amboy.Queue, error)

	GetConf() (*Configuration, error)

	// GetCache returns the cache holding segmentation results.
	GetCache() (EnvironmentCache, error)
}

// NewEnvironment returns a configured environment that is independent of
// the global one.
func NewEnvironment(name string, conf *Configuration) (Environment, error) {
	env := &envState{name: name}
	if err := env.Configure(conf); err != nil {
		return nil, errors.WithStack(err)
	}

	return env, nil
}

type envState struct {
	name  string
	queue amboy.Queue
	cache *envCache
	conf  *Configuration
	mutex sync.RWMutex
}

// Configure validates the configuration and creates the local queue and
// the result cache. The queue is not started.
func (c *envState) Configure(conf *Configuration) error {
	if err := conf.Validate(); err != nil {
		return errors.WithStack(err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.conf = conf
	c.cache = newEnvironmentCache(conf.MaxCachedResults)
	c.queue = queue.NewLocalLimitedSize(conf.NumWorkers, conf.QueueSize)

	grip.Info(message.Fields{
		"message":     "configured local queue",
		"environment": c.name,
		"workers":     conf.NumWorkers,
		"size":        conf.QueueSize,
		"cached":      conf.MaxCachedResults,
	})

	return nil
}

func (c *envState) GetQueue() (amboy.Queue, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.queue == nil {
		return nil, errors.New("no queue defined in the services cache")
	}

	return c.queue, nil
}

func (c *envState) GetCache() (EnvironmentCache, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.cache == nil {
		return nil, errors.New("no result cache defined")
	}

	return c.cache, nil
}

func (c *envState) GetConf() (*Configuration, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.conf == nil {
		return nil, errors.New("configuration is not set")
	}

	// copy the struct
	out := &Configuration{}
	*out = *c.conf

	return out, nil
}
