package cellmap

import (
	"context"
	"sync"

	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/obo"
)

// loadOntologies parses the BTO and CL ontology files concurrently. Either
// path may be empty, leaving the corresponding ontology nil. Ontologies
// share no state before the reconcile barrier, so each parse runs in its
// own goroutine.
func loadOntologies(ctx context.Context, btoPath, clPath string) (bto, cl *obo.Ontology, err error) {
	logger := logging.Ctx(ctx)

	targets := []struct {
		name string
		path string
		dst  **obo.Ontology
	}{
		{"bto", btoPath, &bto},
		{"cl", clPath, &cl},
	}

	var wg sync.WaitGroup
	var errs []error
	var errMutex sync.Mutex

	for _, t := range targets {
		if t.path == "" {
			continue
		}
		wg.Add(1)
		go func(name, path string, dst **obo.Ontology) {
			defer wg.Done()

			ont, parseErr := obo.ParseFile(path)
			if parseErr != nil {
				errMutex.Lock()
				errs = append(errs, parseErr)
				errMutex.Unlock()
				return
			}
			*dst = ont

			logger.Debug().
				Str("ontology", name).
				Str("path", path).
				Int("terms", ont.Len()).
				Msg("ontology loaded")
		}(t.name, t.path, t.dst)
	}

	// Wait for all goroutines to complete
	wg.Wait()

	// Return all errors joined together, or nil if no errors
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return bto, cl, nil
}
