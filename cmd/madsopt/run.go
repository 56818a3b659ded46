package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/algo"
	"github.com/rwcarlsen/mads/barrier"
	"github.com/rwcarlsen/mads/blackbox"
	"github.com/rwcarlsen/mads/param"
	"github.com/rwcarlsen/mads/persist"
	"github.com/rwcarlsen/mads/poll"
)

// buildDriver wires a parsed param.Params into an algo.Driver, the
// same assembly step Baaaaam-optim/cmd/eggholder.go's buildIter did
// for a pattern.Iterator.
func buildDriver(p param.Params, verbose bool) *algo.Driver {
	mads.Seed(p.Seed)

	bb := blackbox.NewBatch(p.BBExe)
	eval := blackbox.Single{Batch: bb}

	dirType := poll.Orthogonal2N
	if p.DirectionType == param.OrthoNp1 {
		dirType = poll.OrthogonalNp1
	}

	var cb *algo.Callbacks
	if verbose {
		cb = &algo.Callbacks{
			PostEval: func(pos mads.Point, out []float64, err error) {
				if err != nil {
					log.Printf("eval %v -> error: %v", pos.Values(), err)
					return
				}
				log.Printf("eval %v -> %v", pos.Values(), out)
			},
		}
	}

	prob := algo.Problem{
		Dim:         p.Dimension,
		X0:          p.X0,
		Lb:          p.LowerBound,
		Ub:          p.UpperBound,
		Granularity: p.Granularity,
		OutputTypes: p.BBOutputType,
	}

	return algo.New(prob, eval,
		algo.MaxBBEvalOpt(p.MaxBBEval),
		algo.MaxEvalOpt(p.MaxEval),
		algo.MaxTimeOpt(time.Duration(p.MaxTime)*time.Second),
		algo.WorkersOpt(p.NbThreads),
		algo.DirectionTypeOpt(dirType),
		algo.HmaxOpt(p.HMax0),
		algo.CallbacksOpt(cb),
	)
}

// printResult reports a finished run's stop reason and incumbents, in
// the same plain Printf style as eggholder.go's success/failure report.
func printResult(d *algo.Driver, reason algo.StopReason) {
	fmt.Printf("stop reason: %s\n", reason)
	fmt.Printf("mega-iterations: %d, bb evals: %d\n", d.Niter(), d.Neval())

	xStar, xZero := d.Best()
	if xStar != nil {
		fmt.Printf("best feasible:   f=%v  x=%v\n", xStar.F.Value(), xStar.Pos.Values())
	} else {
		fmt.Println("best feasible:   none found")
	}
	if xZero != nil {
		fmt.Printf("best infeasible: f=%v h=%v  x=%v\n", xZero.F.Value(), xZero.H, xZero.Pos.Values())
	}
}

// persistResult writes the cache and a hot-restart snapshot to
// cacheFile, if one is configured, so a later 'madsopt resume' can
// continue this run (spec 6(b)).
func persistResult(d *algo.Driver, cacheFile string, seed int64) error {
	if cacheFile == "" {
		return nil
	}
	store, err := persist.Open(cacheFile, d.Problem.Dim)
	if err != nil {
		return fmt.Errorf("madsopt: opening cache file: %w", err)
	}
	defer store.Close()

	if err := store.WriteCache(d.Cache); err != nil {
		return fmt.Errorf("madsopt: writing cache: %w", err)
	}
	xStar, xZero := d.Best()
	return store.WriteRestart(persist.RestartState{
		Niter:       d.Niter(),
		Seed:        seed,
		Hmax:        d.Barrier.Hmax(),
		MeshIndices: d.Mesh.Indices(),
		XStar:       xStar,
		XZero:       xZero,
	})
}

func cmdRun(name string, args []string) {
	fs := newFlagSet(name, "Run an optimization from a fresh parameter file.")
	paramFile := fs.String("param", "", "problem declaration file (required)")
	verbose := fs.Bool("v", false, "log every black-box evaluation")
	fs.Parse(args)

	if *paramFile == "" {
		fs.Usage()
		os.Exit(1)
	}
	f, err := os.Open(*paramFile)
	if err != nil {
		log.Fatalf("madsopt: %v", err)
	}
	p, err := param.Parse(f)
	f.Close()
	if err != nil {
		log.Fatalf("madsopt: %v", err)
	}

	d := buildDriver(p, *verbose)
	reason, err := d.Run(context.Background())
	if err != nil && reason.Fatal() {
		log.Fatalf("madsopt: %v", err)
	}
	printResult(d, reason)

	if err := persistResult(d, p.CacheFile, p.Seed); err != nil {
		log.Fatalf("madsopt: %v", err)
	}
}

func cmdResume(name string, args []string) {
	fs := newFlagSet(name, "Resume an optimization from a previously written cache file's hot-restart snapshot.")
	paramFile := fs.String("param", "", "problem declaration file (required; MAX_* options raise the budget)")
	verbose := fs.Bool("v", false, "log every black-box evaluation")
	fs.Parse(args)

	if *paramFile == "" {
		fs.Usage()
		os.Exit(1)
	}
	f, err := os.Open(*paramFile)
	if err != nil {
		log.Fatalf("madsopt: %v", err)
	}
	p, err := param.Parse(f)
	f.Close()
	if err != nil {
		log.Fatalf("madsopt: %v", err)
	}
	if p.CacheFile == "" {
		log.Fatal("madsopt: resume requires CACHE_FILE in the parameter file")
	}

	store, err := persist.Open(p.CacheFile, p.Dimension)
	if err != nil {
		log.Fatalf("madsopt: opening cache file: %v", err)
	}
	defer store.Close()

	cache, err := store.ReadCache()
	if err != nil {
		log.Fatalf("madsopt: reading cache: %v", err)
	}
	restart, ok, err := store.ReadRestart()
	if err != nil {
		log.Fatalf("madsopt: reading restart snapshot: %v", err)
	}
	if !ok {
		log.Fatal("madsopt: cache file has no hot-restart snapshot to resume from")
	}

	if restart.XStar != nil {
		p.X0 = restart.XStar.Pos.Values()
	} else if restart.XZero != nil {
		p.X0 = restart.XZero.Pos.Values()
	}

	d := buildDriver(p, *verbose)
	d.Cache = cache
	d.Barrier = barrier.New(restart.Hmax)
	if restart.XStar != nil {
		d.Barrier.Update(barrier.Candidate{Pos: restart.XStar.Pos, F: restart.XStar.F, H: restart.XStar.H})
	}
	if restart.XZero != nil {
		d.Barrier.Update(barrier.Candidate{Pos: restart.XZero.Pos, F: restart.XZero.F, H: restart.XZero.H})
	}
	d.Mesh.SetIndices(restart.MeshIndices)

	reason, err := d.Run(context.Background())
	if err != nil && reason.Fatal() {
		log.Fatalf("madsopt: %v", err)
	}
	printResult(d, reason)

	if err := persistResult(d, p.CacheFile, p.Seed); err != nil {
		log.Fatalf("madsopt: %v", err)
	}
}
