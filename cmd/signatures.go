package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"gamemode/internal/input"
	"gamemode/internal/logging"
	"gamemode/internal/notify"
	"gamemode/internal/session"
	"gamemode/internal/signature"

	"github.com/rs/zerolog"
)

var errNoSignaturesFile = errors.New("no signatures_file configured in settings")

// SignaturesCmd groups the signature subcommands.
type SignaturesCmd struct {
	List   SignaturesListCmd   `cmd:"" default:"1" help:"List known signatures."`
	Learn  SignaturesLearnCmd  `cmd:"" help:"Capture new buttons until interrupted and save them."`
	Export SignaturesExportCmd `cmd:"" help:"Write learned signatures to a file."`
	Import SignaturesImportCmd `cmd:"" help:"Add signatures from a file to the signatures file."`
}

// SignaturesListCmd prints the catalog the service would start with.
type SignaturesListCmd struct{}

func (c *SignaturesListCmd) Run(g *Globals, logger *zerolog.Logger) error {
	catalog, _, err := g.catalog(logger)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tMESSAGE\tPAYLOAD/MASK\tEXTRA/MASK")
	for _, s := range catalog.Signatures() {
		fmt.Fprintf(w, "%s\t%s\t0x%04X\t0x%08X/0x%08X\t0x%X/0x%X\n",
			s.Name, s.Kind, s.Message, s.Payload, s.PayloadMask, s.ExtraInfo, s.ExtraInfoMask)
	}
	return w.Flush()
}

// SignaturesLearnCmd runs a learning session without remapping.
type SignaturesLearnCmd struct {
	Duration time.Duration `help:"Stop after this long; zero runs until interrupted." default:"0s"`
}

func (c *SignaturesLearnCmd) Run(g *Globals, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}

	catalog, path, err := g.catalog(logger)
	if err != nil {
		return err
	}

	bus := notify.NewBus(notifyQueueSize, logging.Sub(logger, "notify"))
	bus.Subscribe(notify.Funcs{ButtonDetected: func(n notify.ButtonDetected) {
		fmt.Printf("learned %s (%s)\n", n.Signature.Name, n.Event)
	}})
	go func() { _ = bus.Run(ctx) }()

	queue := input.NewQueue(input.NewPresser(), logging.Sub(logger, "inject"))
	defer queue.Close()
	sess, err := session.New(session.Options{
		Source:   input.NewSource(logging.Sub(logger, "input")),
		Injector: queue,
		Catalog:  catalog,
		Notifier: bus,
		Logger:   logging.Sub(logger, "session"),
	})
	if err != nil {
		return err
	}
	sess.ArmLearning(true)
	if err := sess.Install(); err != nil {
		return err
	}
	logger.Info().Msg("press the buttons to learn; Ctrl+C to finish")
	<-ctx.Done()
	sess.Uninstall()

	fmt.Printf("%d new signature(s)\n", len(sess.Detections()))
	if path == "" {
		for _, s := range catalog.Learned() {
			fmt.Println(s)
		}
		return errNoSignaturesFile
	}
	saveLearned(path, catalog, logger)
	return nil
}

// SignaturesExportCmd writes learned signatures to a file or stdout.
type SignaturesExportCmd struct {
	Output string `arg:"" optional:"" default:"-" help:"Destination file, or - for stdout."`
	Format string `help:"Output format; defaults to the file extension." enum:",json,yaml,toml" default:""`
}

func (c *SignaturesExportCmd) Run(g *Globals, logger *zerolog.Logger) error {
	catalog, _, err := g.catalog(logger)
	if err != nil {
		return err
	}
	learned := catalog.Learned()

	if c.Output == "-" {
		f := signature.FormatJSON
		if c.Format != "" {
			if f, err = signature.ParseFormat(c.Format); err != nil {
				return err
			}
		}
		data, err := signature.Marshal(learned, f)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if c.Format != "" {
		f, err := signature.ParseFormat(c.Format)
		if err != nil {
			return err
		}
		data, err := signature.Marshal(learned, f)
		if err != nil {
			return err
		}
		return os.WriteFile(c.Output, data, 0644)
	}
	if err := signature.Save(c.Output, learned); err != nil {
		return err
	}
	logger.Info().Str("path", c.Output).Int("count", len(learned)).Msg("signatures exported")
	return nil
}

// SignaturesImportCmd merges a signature file into the configured one.
type SignaturesImportCmd struct {
	Input string `arg:"" type:"existingfile" help:"File to import (.json, .yaml or .toml)."`
}

func (c *SignaturesImportCmd) Run(g *Globals, logger *zerolog.Logger) error {
	catalog, path, err := g.catalog(logger)
	if err != nil {
		return err
	}
	if path == "" {
		return errNoSignaturesFile
	}
	sigs, err := signature.Load(c.Input)
	if err != nil {
		return err
	}
	n, err := catalog.Merge(sigs)
	if err != nil {
		return err
	}
	if err := signature.Save(path, catalog.Learned()); err != nil {
		return err
	}
	logger.Info().Str("from", c.Input).Str("to", path).Int("added", n).Int("skipped", len(sigs)-n).Msg("signatures imported")
	return nil
}

// catalog builds the catalog the service would use and returns the
// configured signatures file.
func (g *Globals) catalog(logger *zerolog.Logger) (*signature.Catalog, string, error) {
	mgr, err := g.settingsManager(logger)
	if err != nil {
		return nil, "", err
	}
	s := mgr.Get()
	catalog, err := buildCatalog(s, logger)
	return catalog, s.SignaturesFile, err
}
