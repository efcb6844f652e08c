// Package process implements apply command: it finds site content and runs
// it through the processing pipeline.
package process

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"addcss/archive"
	"addcss/pipeline"
	"addcss/state"
)

// maxItemSize limits single content item read from archive.
const maxItemSize = 64 << 20

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	// run id ties together console, file log and report entries of a single run
	log := env.Log.Named("apply").With(zap.Stringer("run", uuid.New()))

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite, env.DryRun = cmd.Bool("overwrite"), cmd.Bool("dry-run")
	env.CopyAll = cmd.Bool("copy-all")
	if env.CopyAll && len(dst) == 0 {
		log.Warn("Nothing to copy when changing content in place, ignoring --copy-all")
		env.CopyAll = false
	}
	env.Workers = int(cmd.Int("workers"))

	// Old sites may use archaic code pages without declaring them
	cp := cmd.String("force-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully decoding all content and non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	sig := &pipeline.Signals{}
	pipeline.RegisterClasses(sig, &env.Cfg.Classes, log, pipeline.WithReport(env.Rpt))

	where := dst
	if len(where) == 0 {
		where = "in place"
	}
	log.Info("Processing starting", zap.String("source", src), zap.String("destination", where),
		zap.Int("workers", env.WorkerCount()), zap.Bool("dry_run", env.DryRun))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, sig, src, dst, log)
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly. Empty dst means changing files in place.
func process(ctx context.Context, sig *pipeline.Signals, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, sig, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, sig, head, filepath.ToSlash(tail), dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		if err := processFile(ctx, sig, head, dst, log); err != nil {
			return fmt.Errorf("unable to process file: %w", err)
		}
		break
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree and submits every candidate file.
func processDir(ctx context.Context, sig *pipeline.Signals, dir, dst string, log *zap.Logger) error {
	if len(dst) > 0 {
		if rel, err := filepath.Rel(dir, dst); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("destination (%s) must be outside of source directory (%s)", dst, dir)
		}
	}

	p, gctx := newPool(ctx, sig, log)
	cfg := &p.env.Cfg.Content

	walkErr := filepath.Walk(dir, func(fname string, info os.FileInfo, err error) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", fname), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, fname)
		if err != nil {
			log.Warn("Skipping path", zap.String("path", fname), zap.Error(err))
			return nil
		}
		name := filepath.ToSlash(rel)
		if !isCandidate(cfg, name) {
			if len(dst) > 0 && p.env.CopyAll {
				p.submit(gctx, item{
					name:     name,
					origin:   fname,
					load:     func() ([]byte, error) { return os.ReadFile(fname) },
					out:      filepath.Join(dst, rel),
					verbatim: true,
				})
				return nil
			}
			log.Debug("Skipping file", zap.String("file", name))
			return nil
		}

		it := item{
			name:    name,
			origin:  fname,
			load:    func() ([]byte, error) { return os.ReadFile(fname) },
			out:     fname,
			inPlace: true,
		}
		if len(dst) > 0 {
			it.out, it.inPlace = filepath.Join(dst, rel), false
		}
		p.submit(gctx, it)
		return nil
	})
	return finish(p, walkErr, log, zap.String("dir", dir))
}

// processArchive walks all files inside archive under "pathIn" and submits
// every candidate. Archives are never changed so destination is required.
func processArchive(ctx context.Context, sig *pipeline.Signals, arc, pathIn, dst string, log *zap.Logger) error {
	if len(dst) == 0 {
		return errors.New("destination is required when processing archive")
	}

	p, gctx := newPool(ctx, sig, log)
	cfg := &p.env.Cfg.Content
	pathIn = strings.Trim(pathIn, "/")

	walkErr := archive.Walk(arc, pathIn, func(arc string, f *zip.File) error {
		if err := gctx.Err(); err != nil {
			return err
		}

		pathInArchive := f.FileHeader.Name
		if cp := p.env.CodePage; cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}

		name := relativeInArchive(pathInArchive, pathIn)
		verbatim := !isCandidate(cfg, name)
		if verbatim && !p.env.CopyAll {
			log.Debug("Skipping file in archive", zap.String("archive", arc), zap.String("file", pathInArchive))
			return nil
		}

		// archive is closed when walk ends, read now
		data, err := archive.ReadFile(f, maxItemSize)
		if err != nil {
			log.Error("Unable to read file in archive",
				zap.String("archive", arc), zap.String("file", pathInArchive), zap.Error(err))
			return nil
		}

		p.submit(gctx, item{
			name:     name,
			origin:   arc + ":" + pathInArchive,
			load:     func() ([]byte, error) { return data, nil },
			out:      filepath.Join(dst, filepath.FromSlash(name)),
			verbatim: verbatim,
		})
		return nil
	})
	return finish(p, walkErr, log, zap.String("archive", arc))
}

// processFile handles single file given on command line.
func processFile(ctx context.Context, sig *pipeline.Signals, fname, dst string, log *zap.Logger) error {
	p, gctx := newPool(ctx, sig, log)

	name := filepath.Base(fname)
	if !hasExtension(&p.env.Cfg.Content, name) {
		return fmt.Errorf("input was not recognized as HTML content (%s)", fname)
	}

	it := item{
		name:    name,
		origin:  fname,
		load:    func() ([]byte, error) { return os.ReadFile(fname) },
		out:     fname,
		inPlace: true,
	}
	if len(dst) > 0 {
		it.out, it.inPlace = filepath.Join(dst, name), false
	}
	p.submit(gctx, it)
	return finish(p, nil, log, zap.String("file", fname))
}

func finish(p *pool, walkErr error, log *zap.Logger, where zap.Field) error {
	// when workers stopped processing walk error is just a consequence
	err := p.wait()
	if err == nil {
		err = walkErr
	}
	found, changed, copied := p.found.Load(), p.changed.Load(), p.copied.Load()
	if found == 0 {
		log.Debug("Nothing to process", where)
	} else {
		log.Info("Content processed", where, zap.Int64("found", found), zap.Int64("changed", changed))
	}
	if copied > 0 {
		log.Info("Files copied unchanged", where, zap.Int64("copied", copied))
	}
	return err
}

// relativeInArchive makes entry name relative to requested path in archive,
// single file keeps its base name.
func relativeInArchive(name, pathIn string) string {
	switch {
	case len(pathIn) == 0:
		return name
	case name == pathIn:
		return path.Base(name)
	default:
		return strings.TrimPrefix(name, pathIn+"/")
	}
}
