package grove_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/pkg/domain"
	"github.com/aretw0/grove/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuite_BuildErrorsAreFatal(t *testing.T) {
	ran := false
	suite := grove.New(grove.WithExternalNames("db"))
	suite.Set("db", "postgres://")
	suite.It("never runs", func(context.Context, domain.Resolver) error {
		ran = true
		return nil
	})

	report, err := suite.Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrBindingCollision)
	assert.Nil(t, report)
	assert.False(t, ran)
}

func TestSuite_Configure(t *testing.T) {
	suite := grove.New(grove.WithName("slow"))
	suite.It("blocks", func(ctx context.Context, _ domain.Resolver) error {
		<-ctx.Done()
		return ctx.Err()
	})

	suite.Configure(grove.WithTimeout(10*time.Millisecond), grove.WithSeed(5), grove.WithRandom(true))
	report, err := suite.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusTimedOut, report.Results[0].Status)
	assert.Equal(t, uint64(5), report.Seed)
	assert.True(t, report.Random)
}

func TestSuite_Hooks(t *testing.T) {
	var suiteEvents, runEvents int
	suite := grove.New(grove.WithLifecycleHooks(domain.LifecycleHooks{
		OnResult: func(context.Context, *domain.ResultEvent) { suiteEvents++ },
	}))
	suite.Describe("a", func(c *dsl.C) {
		c.It("b", dsl.Noop)
	})

	_, err := suite.RunWithHooks(context.Background(), domain.LifecycleHooks{
		OnResult: func(context.Context, *domain.ResultEvent) { runEvents++ },
	})
	require.NoError(t, err)
	_, err = suite.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, suiteEvents)
	assert.Equal(t, 1, runEvents)
}

func TestSuite_Lookup(t *testing.T) {
	suite := grove.New()
	suite.Describe("outer", func(c *dsl.C) {
		c.It("inner", dsl.Noop)
	})

	n, err := suite.Lookup(domain.Address{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "inner", n.Description)
	assert.Contains(t, n.Location.File, "grove_test.go")

	_, err = suite.Lookup(domain.Address{4})
	assert.ErrorIs(t, err, domain.ErrUnknownAddress)
}

func TestSuite_RunsAreSerialized(t *testing.T) {
	var mu sync.Mutex
	running, peak := 0, 0
	suite := grove.New()
	suite.It("tracks concurrency", func(context.Context, domain.Resolver) error {
		mu.Lock()
		running++
		peak = max(peak, running)
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		running--
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = suite.Run(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
}
