package process

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"addcss/archive"
	"addcss/classes"
	"addcss/config"
	"addcss/css"
	"addcss/state"
)

// ErrUndefinedClasses is returned by strict check when some configured
// classes are not defined by site stylesheets.
var ErrUndefinedClasses = errors.New("configured classes are not defined by site stylesheets")

// Check reads site stylesheets and reports configured classes none of them
// defines. Unknown class is not an error unless strict mode is requested.
func Check(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("check")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	inv, sheets, err := collectStylesheets(ctx, &env.Cfg.Content, src, log)
	if err != nil {
		return err
	}
	if sheets == 0 {
		log.Warn("No stylesheets found", zap.String("source", src), zap.Strings("patterns", env.Cfg.Content.Stylesheets))
	}
	env.Rpt.StoreData("check/inventory.txt", []byte(inv.String()))

	missing := undefinedClasses(&env.Cfg.Classes, inv, log)
	log.Info("Check completed", zap.String("source", src), zap.Int("stylesheets", sheets),
		zap.Int("classes", len(inv)), zap.Int("undefined", missing))

	if missing > 0 && cmd.Bool("strict") {
		return fmt.Errorf("%w: %d undefined", ErrUndefinedClasses, missing)
	}
	return nil
}

// undefinedClasses logs every configured class missing from inventory and
// returns their number.
func undefinedClasses(cfg *config.ClassesConfig, inv css.Inventory, log *zap.Logger) int {
	var missing int
	for _, set := range []struct {
		key string
		rs  classes.ReplacementSet
	}{
		{classes.BaseKey, cfg.Base},
		{classes.PageKey, cfg.Page},
		{classes.ArticleKey, cfg.Article},
	} {
		for _, e := range set.rs {
			for _, c := range inv.Missing(e.Classes) {
				log.Warn("Class is not defined by any stylesheet",
					zap.String("set", set.key), zap.String("selector", e.Selector), zap.String("class", c))
				missing++
			}
		}
	}
	return missing
}

// collectStylesheets parses all stylesheets under source directory or
// archive path and returns inventory of their classes.
func collectStylesheets(ctx context.Context, cfg *config.ContentConfig, src string, log *zap.Logger) (css.Inventory, int, error) {
	var (
		inv    = css.Inventory{}
		parser = css.NewParser(log)
		sheets int
	)
	add := func(name string, data []byte) {
		sheet := parser.Parse(data, name)
		log.Debug("Stylesheet parsed", zap.String("file", name),
			zap.Int("classes", len(sheet.Classes())), zap.Strings("imports", sheet.Imports))
		inv.Add(sheet)
		sheets++
	}

	if fi, err := os.Stat(src); err == nil && fi.IsDir() {
		err := filepath.Walk(src, func(fname string, info os.FileInfo, err error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err != nil {
				log.Warn("Skipping path", zap.String("path", fname), zap.Error(err))
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(src, fname)
			if err != nil {
				return nil
			}
			name := filepath.ToSlash(rel)
			if !matchAny(cfg.Stylesheets, name) {
				return nil
			}
			data, err := os.ReadFile(fname)
			if err != nil {
				log.Warn("Unable to read stylesheet", zap.String("file", fname), zap.Error(err))
				return nil
			}
			add(name, data)
			return nil
		})
		return inv, sheets, err
	}

	arc, pathIn, err := splitArchivePath(src)
	if err != nil {
		return nil, 0, err
	}
	err = archive.Walk(arc, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := relativeInArchive(f.Name, pathIn)
		if !matchAny(cfg.Stylesheets, name) {
			return nil
		}
		data, err := archive.ReadFile(f, maxItemSize)
		if err != nil {
			log.Warn("Unable to read stylesheet in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		add(name, data)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("unable to process archive: %w", err)
	}
	return inv, sheets, nil
}

// splitArchivePath finds archive file on the path and returns it with the
// remaining path inside archive.
func splitArchivePath(src string) (string, string, error) {
	for head := src; ; {
		if fi, err := os.Stat(head); err == nil {
			if fi.Mode().IsRegular() {
				ok, err := isArchiveFile(head)
				if err != nil {
					return "", "", fmt.Errorf("unable to check archive type: %w", err)
				}
				if ok {
					pathIn := strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
					return head, strings.Trim(filepath.ToSlash(pathIn), "/"), nil
				}
			}
			return "", "", fmt.Errorf("source must be a directory or an archive (%s)", src)
		}
		parent := filepath.Dir(head)
		if parent == head {
			return "", "", fmt.Errorf("input source was not found (%s)", src)
		}
		head = parent
	}
}
