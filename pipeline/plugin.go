package pipeline

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"addcss/classes"
	"addcss/config"
)

type classesOptions struct {
	rpt *config.Report
}

// WithReport makes plugin store effective replacement set and match
// statistics of every transformed item in the debug report.
func WithReport(rpt *config.Report) func(*classesOptions) {
	return func(opts *classesOptions) {
		opts.rpt = rpt
	}
}

// RegisterClasses connects class injection to content initialization. For
// every non static item replacement set effective for its kind is resolved
// from settings and applied to the body.
func RegisterClasses(sig *Signals, settings classes.Settings, log *zap.Logger, options ...func(*classesOptions)) {
	opts := &classesOptions{}
	for _, setOpt := range options {
		setOpt(opts)
	}
	log = log.Named("classes")

	sig.ConnectContentInitialized(func(ctx context.Context, c *Content) error {
		if c.Static {
			return nil
		}

		set, err := classes.Resolve(settings, c.Kind)
		if err != nil {
			return fmt.Errorf("unable to resolve classes for %s: %w", c.Source, err)
		}
		if set.Len() == 0 {
			log.Debug("No classes to add", zap.String("source", c.Source), zap.Stringer("kind", c.Kind))
			return nil
		}

		body, matches, err := classes.TransformWithStats(c.Body, set)
		if err != nil {
			return fmt.Errorf("unable to add classes to %s: %w", c.Source, err)
		}
		for _, m := range matches {
			if m.Count == 0 {
				log.Debug("Selector matched nothing", zap.String("source", c.Source), zap.String("selector", m.Selector))
			}
		}
		log.Debug("Classes added", zap.String("source", c.Source), zap.Stringer("kind", c.Kind), zap.Int("rules", len(matches)))

		if opts.rpt != nil {
			opts.rpt.StoreData(reportName(c), []byte(set.String()+classes.Report(matches)))
		}

		c.Body = body
		return nil
	})
}

func reportName(c *Content) string {
	return fmt.Sprintf("classes/%s-%s.txt", c.Kind, slug.Make(c.Source))
}
