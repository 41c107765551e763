// Command bridgesim drives a bridge through attach and detach cycles against
// a simulated host and prints the resolved symbol table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	jnibridge "github.com/wippyai/jni-bridge"
	"github.com/wippyai/jni-bridge/host"
	"github.com/wippyai/jni-bridge/hostsim"
	"github.com/wippyai/jni-bridge/symbols"
)

type options struct {
	config    string
	manifest  string
	universe  string
	version   string
	logLevel  string
	failClass string
	cycles    int
	threads   int
	quiet     bool
}

func main() {
	var opts options
	fs := pflag.NewFlagSet("bridgesim", pflag.ContinueOnError)
	fs.StringVarP(&opts.config, "config", "c", "", "bridge config file (YAML)")
	fs.StringVarP(&opts.manifest, "manifest", "m", "", "symbol manifest, overrides the config")
	fs.StringVarP(&opts.universe, "universe", "u", "", "simulated class universe (YAML); default is the Android set")
	fs.StringVar(&opts.version, "version", "", "contract version to request, e.g. 1.6 or 21")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.failClass, "fail-class", "", "make FindClass fail for this internal class name")
	fs.IntVarP(&opts.cycles, "cycles", "n", 1, "attach/detach cycles to run")
	fs.IntVarP(&opts.threads, "threads", "t", 4, "host threads that read symbols while attached")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the symbol table")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := jnibridge.DefaultConfig()
	if opts.config != "" {
		loaded, err := jnibridge.LoadConfig(opts.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.manifest != "" {
		m, err := symbols.LoadManifest(opts.manifest)
		if err != nil {
			return err
		}
		cfg.Manifest = m
	}
	if opts.version != "" {
		v, err := host.ParseVersion(opts.version)
		if err != nil {
			return err
		}
		cfg.Version = v
	}
	if opts.logLevel != "" {
		lvl, err := zapcore.ParseLevel(opts.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = lvl
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	universe := hostsim.AndroidUniverse()
	if opts.universe != "" {
		if universe, err = hostsim.LoadUniverse(opts.universe); err != nil {
			return err
		}
	}
	var vmOpts []hostsim.Option
	if opts.failClass != "" {
		vmOpts = append(vmOpts, hostsim.FailFindClass(opts.failClass))
	}
	vm := hostsim.New(universe, vmOpts...)

	b, err := jnibridge.New(cfg, jnibridge.WithLogger(log))
	if err != nil {
		return err
	}

	for cycle := 1; cycle <= opts.cycles; cycle++ {
		clog := log.With(zap.Int("cycle", cycle))

		var status int32
		if err := vm.RunThread(func(host.Env) { status = b.OnLoad(vm, nil) }); err != nil {
			return err
		}
		if status == host.OnLoadFailed {
			return fmt.Errorf("cycle %d: attach failed (global refs %d, local refs %d)",
				cycle, vm.GlobalRefs(), vm.LocalRefs())
		}
		clog.Info("attached", zap.Int32("status", status), zap.Int("global_refs", vm.GlobalRefs()))

		if err := readConcurrently(vm, b, opts.threads); err != nil {
			return err
		}
		if !opts.quiet && cycle == opts.cycles {
			fmt.Println(renderSlots(b.Symbols().Slots(), vm.Describe, useColor()))
		}

		if err := vm.RunThread(func(host.Env) { b.OnUnload(vm, nil) }); err != nil {
			return err
		}
		clog.Info("detached", zap.Int("global_refs", vm.GlobalRefs()), zap.Int("violations", vm.Violations()))
	}

	if n := vm.GlobalRefs(); n != 0 {
		return fmt.Errorf("%d global references leaked", n)
	}
	if n := vm.Violations(); n != 0 {
		return fmt.Errorf("%d context misuses recorded", n)
	}
	return nil
}

// readConcurrently has n host threads derive their own context and read every
// slot while the bridge is attached.
func readConcurrently(vm *hostsim.VM, b *jnibridge.Bridge, n int) error {
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			var err error
			rerr := vm.RunThread(func(own host.Env) {
				if env := b.Env(); env != own {
					err = fmt.Errorf("thread got context %v, want %v", env, own)
					return
				}
				for _, s := range b.Symbols().Slots() {
					if s.Ref.IsZero() {
						err = fmt.Errorf("slot %s absent while attached", s.Name)
						return
					}
				}
			})
			if rerr != nil {
				return rerr
			}
			return err
		})
	}
	return g.Wait()
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	var cfg zap.Config
	if term.IsTerminal(int(os.Stderr.Fd())) {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func useColor() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
