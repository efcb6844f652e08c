package process

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"addcss/classes"
	"addcss/pipeline"
	"addcss/state"
)

// item is a single piece of content waiting for processing.
type item struct {
	// name is slash separated path relative to processed root
	name string
	// origin is used in logs only
	origin string
	load   func() ([]byte, error)
	// out is where result goes, when inPlace is set it is the source itself
	out     string
	inPlace bool
	// verbatim items are copied to destination as they are
	verbatim bool
}

// pool runs content items on a bounded number of workers. Author mistakes in
// configuration stop everything when fail fast is requested, other failures
// are logged and collected.
type pool struct {
	g        *errgroup.Group
	sig      *pipeline.Signals
	env      *state.LocalEnv
	log      *zap.Logger
	failFast bool

	mu   sync.Mutex
	errs error

	found, changed, copied atomic.Int64
}

func newPool(ctx context.Context, sig *pipeline.Signals, log *zap.Logger) (*pool, context.Context) {
	env := state.EnvFromContext(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(env.WorkerCount())
	return &pool{
		g:        g,
		sig:      sig,
		env:      env,
		log:      log,
		failFast: env.Cfg.Processing.FailFast,
	}, gctx
}

// submit blocks when all workers are busy.
func (p *pool) submit(ctx context.Context, it item) {
	if !it.verbatim {
		p.found.Add(1)
	}
	p.g.Go(func() (rerr error) {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("Processing ended with panic",
					zap.String("source", it.origin), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				p.collect(fmt.Errorf("processing panic (%s): %v", it.origin, r))
				rerr = nil
			}
		}()

		if err := ctx.Err(); err != nil {
			return err
		}
		err := p.processItem(ctx, it)
		if err == nil {
			return nil
		}
		if p.failFast && isConfigError(err) {
			return err
		}
		p.log.Error("Unable to process content", zap.String("source", it.origin), zap.Error(err))
		p.collect(err)
		return nil
	})
}

func (p *pool) collect(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = multierr.Append(p.errs, err)
}

// wait returns error which stopped processing if any, otherwise combination
// of all collected failures.
func (p *pool) wait() error {
	err := p.g.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.errs
}

func isConfigError(err error) bool {
	return errors.Is(err, classes.ErrInvalidConfigurationShape) ||
		errors.Is(err, classes.ErrInvalidContentKind) ||
		errors.Is(err, classes.ErrMalformedSelector)
}
