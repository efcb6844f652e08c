package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"addcss/pipeline"
)

// processItem reads, classifies and transforms single content item. Only
// errors produced by the pipeline are returned, I/O problems are logged and
// the item is skipped.
func (p *pool) processItem(ctx context.Context, it item) error {
	log := p.log.With(zap.String("source", it.origin))

	data, err := it.load()
	if err != nil {
		log.Error("Unable to read content, skipping", zap.Error(err))
		return nil
	}
	if it.verbatim {
		p.copyThrough(it, data, log)
		return nil
	}

	cl := classify(&p.env.Cfg.Content, it.name, data)
	if !cl.static && !cl.html {
		log.Debug("Skipping file, not recognized as HTML")
		p.copyThrough(it, data, log)
		return nil
	}

	var enc encoding.Encoding
	c := &pipeline.Content{Source: it.name, Kind: cl.kind, Static: cl.static}
	if !c.Static {
		var body string
		if body, enc, err = decode(data, p.env.CodePage); err != nil {
			log.Error("Unable to decode content, skipping", zap.String("charset", encodingName(enc)), zap.Error(err))
			return nil
		}
		log.Debug("Content decoded", zap.String("charset", encodingName(enc)), zap.Stringer("kind", c.Kind))
		c.Body = body
	}
	original := c.Body

	if err := p.sig.ContentInitialized(ctx, c); err != nil {
		return err
	}
	if c.Static {
		log.Debug("Static content left untouched")
		p.copyThrough(it, data, log)
		return nil
	}
	if it.inPlace && c.Body == original {
		log.Debug("Content unchanged")
		return nil
	}
	p.changed.Add(1)

	if p.env.DryRun {
		log.Info("Dry run, result is not written", zap.String("to", it.out), zap.Int("size", len(c.Body)))
		return nil
	}
	out, err := encode(c.Body, enc)
	if err != nil {
		log.Error("Unable to encode result, skipping", zap.String("charset", encodingName(enc)), zap.Error(err))
		return nil
	}
	if err := writeOutput(it.out, out, it.inPlace, p.env.Overwrite, log); err != nil {
		log.Error("Unable to write result", zap.String("to", it.out), zap.Error(err))
		return nil
	}
	log.Debug("Result written", zap.String("to", it.out))
	return nil
}

// copyThrough puts item into destination unchanged when the whole site is
// requested there.
func (p *pool) copyThrough(it item, data []byte, log *zap.Logger) {
	if it.inPlace || !p.env.CopyAll {
		return
	}
	if p.env.DryRun {
		log.Debug("Dry run, copy is not written", zap.String("to", it.out))
		return
	}
	if err := writeOutput(it.out, data, false, p.env.Overwrite, log); err != nil {
		log.Error("Unable to copy", zap.String("to", it.out), zap.Error(err))
		return
	}
	p.copied.Add(1)
}

func writeOutput(fname string, body []byte, inPlace, overwrite bool, log *zap.Logger) error {
	if inPlace {
		return os.WriteFile(fname, body, fileMode(fname))
	}

	if _, err := os.Stat(fname); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", fname)
		}
		log.Warn("Overwriting existing file", zap.String("file", fname))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return os.WriteFile(fname, body, 0644)
}
