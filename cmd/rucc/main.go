// Command rucc is the outer driver around the preprocessor: it reads a
// source file, resolves its directives and macro references, and writes the
// expanded stream the parser consumes. Code generation from the parsed tree
// is exposed as the mipsgen package and invoked by the frontend that owns
// the parser; this driver covers the stage that runs before it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/IsabelCoolIn/RuC/internal/config"
	"github.com/IsabelCoolIn/RuC/internal/linker"
	"github.com/IsabelCoolIn/RuC/internal/preproc"
	"github.com/IsabelCoolIn/RuC/internal/rlog"
)

// run begins reading source code and executes the preprocessing stage.
// Behaviour is defined by the Options structure and the loaded defaults.
func run(opt Options) error {
	cfgPath := opt.ConfigPath
	if cfgPath == "" {
		cfgPath = config.GetConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if opt.Verbose {
		rlog.InitVerbose()
	} else {
		rlog.Init(logConfig(cfg))
	}

	src, err := os.ReadFile(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read source code: %w", err)
	}
	rlog.Debug("read source", "file", opt.Src, "bytes", len(src))

	systemDirs := append(append([]string{}, cfg.Preprocessor.SystemIncludeDirs...), opt.IncludeDirs...)
	p := preproc.New(linker.NewFSResolver(filepath.Dir(opt.Src), systemDirs))
	p.Limits = preproc.Limits{
		MaxIncludeDepth: cfg.Preprocessor.MaxIncludeDepth,
		MaxCallDepth:    cfg.Preprocessor.MaxCallDepth,
	}
	for _, def := range append(append([]string{}, cfg.Preprocessor.Defines...), opt.Defines...) {
		name, body, _ := strings.Cut(def, "=")
		p.Store.Set(name, nil, body)
	}

	out, errs := p.Process(opt.Src, string(src))

	nerr := 0
	for _, e := range errs {
		if e.Kind.IsWarning() {
			rlog.Warn(e.Error())
			continue
		}
		nerr++
		fmt.Fprintln(os.Stderr, e.Error())
	}
	if nerr > 0 {
		return fmt.Errorf("preprocessing failed with %d error(s)", nerr)
	}

	if opt.Out == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	if err := os.WriteFile(opt.Out, []byte(out), 0o644); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	rlog.Debug("wrote output", "file", opt.Out, "bytes", len(out))
	return nil
}

// logConfig maps the loaded diagnostics settings onto an rlog.Config.
func logConfig(cfg *config.Config) rlog.Config {
	lc := rlog.DefaultConfig()
	switch cfg.Diagnostics.LogLevel {
	case "debug":
		lc.Level = rlog.LevelDebug
	case "warn":
		lc.Level = rlog.LevelWarn
	case "error":
		lc.Level = rlog.LevelError
	}
	lc.Format = cfg.Diagnostics.LogFormat
	return lc
}

func main() {
	opt, err := ParseArgs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(opt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
