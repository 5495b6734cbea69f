package app

import (
	"sync/atomic"
	"testing"

	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

type countingEngine struct {
	httpclient.Engine
	inits atomic.Int32
}

func (e *countingEngine) Init() error {
	e.inits.Add(1)
	return e.Engine.Init()
}

func TestNewClientSharesOneEngine(t *testing.T) {
	var builds atomic.Int32
	var engine *countingEngine
	saved := processEngine
	processEngine = &engineCache{
		build: func(cfg httpclient.EngineConfig) httpclient.Engine {
			builds.Add(1)
			engine = &countingEngine{Engine: httpclient.NewRestyEngine(cfg)}
			return engine
		},
	}
	t.Cleanup(func() { processEngine = saved })

	cfg := testConfig(t)
	first, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer first.Close()
	second, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer second.Close()

	if got := builds.Load(); got != 1 {
		t.Fatalf("expected 1 engine, got %d", got)
	}
	if got := engine.inits.Load(); got != 1 {
		t.Fatalf("expected 1 init, got %d", got)
	}
	if SharedEngine(cfg, nil) != httpclient.Engine(engine) {
		t.Fatalf("shared engine differs from the clients' engine")
	}
}
