package app

import (
	"io"

	"github.com/specialistvlad/burstflow/internal/catalog"
	"github.com/specialistvlad/burstflow/internal/runner"
	"github.com/specialistvlad/burstflow/modules/http_request"
	"github.com/specialistvlad/burstflow/modules/print"
	"github.com/specialistvlad/burstflow/modules/socketio"
)

// coreModules is the definitive list of all modules that are compiled into
// the burstflow binary.
func coreModules(outW io.Writer) []runner.Module {
	return []runner.Module{
		&print.Module{Out: outW},
		&http_request.Module{},
		&socketio.Module{},
	}
}

// simulatedModule backs every catalog type that has no integration with the
// simulated runner. Types a module already registered are left alone.
type simulatedModule struct {
	cfg runner.SimulatedConfig
}

func (m simulatedModule) Register(r *runner.Registry) {
	sim := runner.NewSimulated(m.cfg)
	for _, key := range catalog.SimulatedKeys() {
		if _, taken := r.Lookup(key); taken {
			continue
		}
		r.Register(key, sim)
	}
}
